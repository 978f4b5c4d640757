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

// Hand-rolled PNG encoding (§4.4): scanline assembly, the Up filter,
// and manual chunk framing. This bypasses image/png entirely, matching
// the rest of the pipeline's policy of never materializing a
// general-purpose image.Image for what is, at every stage, a flat
// greyscale or RGB byte buffer.

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const (
	colorTypeGrey = 0
	colorTypeRGB  = 2
	bitDepth8     = 8
)

// encodeGreyPNG encodes a single-channel 8-bit buffer (row-major,
// width*height bytes) as a greyscale PNG at the default zlib level.
func encodeGreyPNG(pix []byte, width, height int) ([]byte, error) {
	return encodePNG(pix, width, height, 1, colorTypeGrey, zlib.DefaultCompression)
}

// encodeRGBPNG encodes a 3-channel 8-bit buffer (row-major,
// width*height*3 bytes) as an RGB PNG at the default zlib level.
func encodeRGBPNG(pix []byte, width, height int) ([]byte, error) {
	return encodePNG(pix, width, height, 3, colorTypeRGB, zlib.DefaultCompression)
}

// encodeGreyPNGLevel and encodeRGBPNGLevel are the level-parameterized
// variants the pipeline calls with the configured `process_png_level`.
func encodeGreyPNGLevel(pix []byte, width, height, level int) ([]byte, error) {
	return encodePNG(pix, width, height, 1, colorTypeGrey, level)
}

func encodeRGBPNGLevel(pix []byte, width, height, level int) ([]byte, error) {
	return encodePNG(pix, width, height, 3, colorTypeRGB, level)
}

func encodePNG(pix []byte, width, height, channels int, colorType byte, level int) ([]byte, error) {
	stride := width * channels
	filtered := applyUpFilter(pix, width, height, channels)

	idat, err := deflateLevel(filtered, level)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(pngSignature)
	writeChunk(&buf, "IHDR", encodeIHDR(width, height, colorType))
	writeChunk(&buf, "IDAT", idat)
	writeChunk(&buf, "IEND", nil)

	_ = stride
	return buf.Bytes(), nil
}

func encodeIHDR(width, height int, colorType byte) []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint32(b[0:4], uint32(width))
	binary.BigEndian.PutUint32(b[4:8], uint32(height))
	b[8] = bitDepth8
	b[9] = colorType
	b[10] = 0 // compression method
	b[11] = 0 // filter method
	b[12] = 0 // interlace method
	return b
}

// applyUpFilter prepends a filter-type byte (always 2, "Up") to each
// scanline and subtracts the pixel directly above it, modulo 256. The
// first row is filtered against an implicit all-zero row.
func applyUpFilter(pix []byte, width, height, channels int) []byte {
	stride := width * channels
	out := make([]byte, height*(stride+1))
	prev := make([]byte, stride)
	for y := 0; y < height; y++ {
		row := pix[y*stride : (y+1)*stride]
		o := y * (stride + 1)
		out[o] = 2 // filter type Up
		for i := 0; i < stride; i++ {
			out[o+1+i] = row[i] - prev[i]
		}
		prev = row
	}
	return out
}

func deflateLevel(raw []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, clampZlibLevel(level))
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clampZlibLevel(level int) int {
	if level == zlib.DefaultCompression {
		return level
	}
	if level < zlib.NoCompression {
		return zlib.NoCompression
	}
	if level > zlib.BestCompression {
		return zlib.BestCompression
	}
	return level
}

func writeChunk(buf *bytes.Buffer, typ string, data []byte) {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf.Write(length)

	body := append([]byte(typ), data...)
	buf.Write(body)

	crc := crc32.ChecksumIEEE(body)
	crcBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBytes, crc)
	buf.Write(crcBytes)
}
