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

// Subpixel remapping (§4.3, "subpixel remap"): a source greyscale
// layer is reinterpreted as a sequence of subpixels and regrouped into
// the target board's native pixel format. Remapped rows are centered
// within the target width with zero padding on both sides when the
// source's subpixel count does not evenly divide the target width.

// remapRGB8Bit groups three consecutive source subpixels into one RGB
// output pixel, producing an image outWidth wide.
func remapRGB8Bit(src []byte, srcWidth, height, outWidth int) []byte {
	groupWidth := srcWidth / 3
	pad := (outWidth - groupWidth) / 2
	out := make([]byte, outWidth*height*3)

	for y := 0; y < height; y++ {
		srcRow := src[y*srcWidth : (y+1)*srcWidth]
		outRow := out[y*outWidth*3 : (y+1)*outWidth*3]
		for gx := 0; gx < groupWidth; gx++ {
			ox := gx + pad
			if ox < 0 || ox >= outWidth {
				continue
			}
			o := ox * 3
			s := gx * 3
			outRow[o] = srcRow[s]
			outRow[o+1] = srcRow[s+1]
			outRow[o+2] = srcRow[s+2]
		}
	}
	return out
}

// remapTwoSubpixelGreyscale averages two consecutive source subpixels
// into one greyscale output pixel, producing an image outWidth wide.
func remapTwoSubpixelGreyscale(src []byte, srcWidth, height, outWidth int) []byte {
	groupWidth := srcWidth / 2
	pad := (outWidth - groupWidth) / 2
	out := make([]byte, outWidth*height)

	for y := 0; y < height; y++ {
		srcRow := src[y*srcWidth : (y+1)*srcWidth]
		outRow := out[y*outWidth : (y+1)*outWidth]
		for gx := 0; gx < groupWidth; gx++ {
			ox := gx + pad
			if ox < 0 || ox >= outWidth {
				continue
			}
			s := gx * 2
			outRow[ox] = byte((int(srcRow[s]) + int(srcRow[s+1])) / 2)
		}
	}
	return out
}

// remapForBoard dispatches to the board-appropriate remap function.
func remapForBoard(board BoardType, src []byte, srcWidth, height, outWidth int) []byte {
	switch board {
	case BoardRGB8Bit:
		return remapRGB8Bit(src, srcWidth, height, outWidth)
	default:
		return remapTwoSubpixelGreyscale(src, srcWidth, height, outWidth)
	}
}
