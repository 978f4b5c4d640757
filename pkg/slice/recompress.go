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

import "github.com/mechiko/chitu2nanodlp/pkg/log"

// Adaptive recompression (§4.4, §4.5). Most resin-print layers are
// either mostly empty or mostly saturated, so a lightweight sampling
// pass decides whether the default zlib compression level is worth
// upgrading to best-compression before committing to the full-size
// deflate pass on every layer.

const (
	sampleStride       = 64
	highDensityPercent = 35
	bestCompression    = 9
)

// recompressGrey and recompressRGB encode a layer at level, except
// under RecompressAdaptive where a dense layer (past highDensityPercent)
// is worth the extra CPU of best-compression: deflate's ratio on a
// mostly-solid scanline improves much more than on a mostly-empty one,
// so the adaptive policy only pays that cost where it buys something.
func recompressGrey(pix []byte, width, height, level int, mode RecompressMode) ([]byte, error) {
	return encodeGreyPNGLevel(pix, width, height, resolveLevel(pix, level, mode))
}

func recompressRGB(pix []byte, width, height, level int, mode RecompressMode) ([]byte, error) {
	return encodeRGBPNGLevel(pix, width, height, resolveLevel(pix, level, mode))
}

func resolveLevel(pix []byte, level int, mode RecompressMode) int {
	switch mode {
	case RecompressOff:
		return level
	case RecompressOn:
		return bestCompression
	default: // RecompressAdaptive
		if isHighDensityLayer(pix) {
			return bestCompression
		}
		log.Debug.Printf("recompress: skipping, sampled density below threshold")
		return level
	}
}

// sampleDensity estimates the fraction (0-100) of non-zero samples in
// pix by walking every sampleStride'th byte, used to decide whether a
// layer's single encode uses best compression.
func sampleDensity(pix []byte) int {
	if len(pix) == 0 {
		return 0
	}
	nonZero, sampled := 0, 0
	for i := 0; i < len(pix); i += sampleStride {
		sampled++
		if pix[i] != 0 {
			nonZero++
		}
	}
	if sampled == 0 {
		return 0
	}
	return nonZero * 100 / sampled
}

// isHighDensityLayer reports whether pix looks dense enough that the
// adaptive policy encodes it at bestCompression.
func isHighDensityLayer(pix []byte) bool {
	return sampleDensity(pix) >= highDensityPercent
}
