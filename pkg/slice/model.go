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

// Package slice implements the conversion engine that turns ChiTuBox
// family slice archives (CBDDLP, CTB v2/v3, CTB v4, CTB v4E) into
// NanoDLP plate archives.
package slice

import "time"

// Format identifies the container variant detected from the file's
// leading magic number.
type Format int

// The four supported container variants.
const (
	FormatUnknown Format = iota
	FormatCBDDLP
	FormatCTBv2v3
	FormatCTBv4
	FormatCTBv4E
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatCBDDLP:
		return "CBDDLP"
	case FormatCTBv2v3:
		return "CTB v2/v3"
	case FormatCTBv4:
		return "CTB v4"
	case FormatCTBv4E:
		return "CTB v4E"
	default:
		return "unknown"
	}
}

// BoardType is the target driver's subpixel interpretation.
type BoardType int

const (
	// BoardRGB8Bit packs three source subpixels into one RGB-8 output pixel.
	BoardRGB8Bit BoardType = iota
	// BoardTwoSubpixelGreyscale averages two source subpixels into one grey-8 output pixel.
	BoardTwoSubpixelGreyscale
)

// SliceInfo is an immutable record describing the parsed source file.
// It is produced exclusively by the parser and never mutated afterward.
type SliceInfo struct {
	SourcePath        string
	Format            Format
	ResolutionX       int
	ResolutionY       int
	DisplayWidthMM    float64
	DisplayHeightMM   float64
	MaxZMM            float64
	LayerHeightMM     float64
	LayerCount        int
	BottomLayerCount  int
	ExposureBottomSec float64
	ExposureNormalSec float64
	LiftHeightMM      float64
	LiftSpeed         float64
	RetractSpeed      float64
	MachineName       string
	PreviewPNG        []byte
	EncryptionKey     uint32
}

// LayerDef locates and describes one layer's data inside the source file.
// Produced exclusively by the parser; never mutated.
type LayerDef struct {
	DataOffset  uint32
	DataLength  uint32
	PositionZ   float32
	ExposureSec float32
	LightOffSec float32
}

// LayerAreaInfo carries the connected-component statistics computed for
// one decoded layer.
type LayerAreaInfo struct {
	TotalSolidAreaMM2 float64
	LargestIslandMM2  float64
	SmallestIslandMM2 float64
	MinX, MinY        int
	MaxX, MaxY        int
	IslandCount       int
}

// EmptyLayerAreaInfo is the canonical zero-value used for blank layers.
var EmptyLayerAreaInfo = LayerAreaInfo{}

// IsEmpty reports whether a is the degenerate, no-solid-pixels case.
func (a LayerAreaInfo) IsEmpty() bool {
	return a.IslandCount == 0
}

// Profile describes one target (or source) printer's panel geometry.
type Profile struct {
	Name            string
	Manufacturer    string
	BoardType       BoardType
	ResolutionX     int
	ResolutionY     int
	DisplayMMX      float64
	DisplayMMY      float64
	MaxZMM          float64
	PNGOutputWidth  int
	ResolutionClass string // "12K" or "16K"
}

// PlateMetadata aggregates everything needed to produce the JSON
// descriptors for one conversion.
type PlateMetadata struct {
	Source        SliceInfo
	Target        Profile
	PixelPitchXMM float64
	PixelPitchYMM float64
	OutputLayers  int
	ThumbnailPNG  []byte
	Area          []LayerAreaInfo // len == OutputLayers; entries are EMPTY when area analysis is disabled
}

// ConversionResult is the terminal record returned to the caller.
type ConversionResult struct {
	Success         bool
	OutputPath      string
	SourceInfo      SliceInfo
	TargetProfile   Profile
	LayerCount      int
	OutputSizeBytes int64
	Duration        time.Duration
	ErrorMessage    string
}
