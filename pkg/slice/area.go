/*
Copyright 2024 The chitu2nanodlp Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package slice

// Per-layer connected-component area statistics (§4.3, "area
// analysis"). Flood fill is iterative with an explicit stack: a
// 12K/16K layer is tens of millions of pixels, well past what the
// default goroutine stack can absorb recursively.
const solidThreshold = 1

// computeLayerArea walks an 8-bit greyscale layer buffer (width*height
// bytes) and returns island count plus solid-area statistics, in mm^2,
// using 8-connected flood fill.
func computeLayerArea(pix []byte, width, height int, pixelPitchXMM, pixelPitchYMM float64) LayerAreaInfo {
	visited := make([]bool, len(pix))
	pixelAreaMM2 := pixelPitchXMM * pixelPitchYMM

	info := EmptyLayerAreaInfo
	info.MinX, info.MinY = width, height
	info.MaxX, info.MaxY = -1, -1

	var stack []int

	for start := 0; start < len(pix); start++ {
		if visited[start] || pix[start] < solidThreshold {
			continue
		}
		islandPixels := 0
		stack = append(stack[:0], start)
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			islandPixels++

			x := idx % width
			y := idx / width
			if x < info.MinX {
				info.MinX = x
			}
			if x > info.MaxX {
				info.MaxX = x
			}
			if y < info.MinY {
				info.MinY = y
			}
			if y > info.MaxY {
				info.MaxY = y
			}

			for _, n := range neighbors8(x, y, width, height) {
				if !visited[n] && pix[n] >= solidThreshold {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		islandAreaMM2 := float64(islandPixels) * pixelAreaMM2
		info.TotalSolidAreaMM2 += islandAreaMM2
		if info.IslandCount == 0 || islandAreaMM2 > info.LargestIslandMM2 {
			info.LargestIslandMM2 = islandAreaMM2
		}
		if info.IslandCount == 0 || islandAreaMM2 < info.SmallestIslandMM2 {
			info.SmallestIslandMM2 = islandAreaMM2
		}
		info.IslandCount++
	}

	if info.IslandCount == 0 {
		return EmptyLayerAreaInfo
	}
	return info
}

// neighbors8 returns the linear indices of the 8-connected neighbors
// of (x, y) that fall inside the width x height bounds.
func neighbors8(x, y, width, height int) []int {
	out := make([]int, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			out = append(out, ny*width+nx)
		}
	}
	return out
}
