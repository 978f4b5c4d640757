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

// Functions dealing with parsing the versioned, offset-driven
// ChiTuBox-family binary container header (§4.2).
//
// Grounded on deepteams/webp's internal/container package: a small
// set of package-level magic/size constants, a header struct parsed
// out of a fixed byte window, and a dispatch on the leading tag before
// any chunk-specific parsing happens (ParseRIFFHeader / FourCC
// dispatch there maps to formatOf / Format dispatch here).

import (
	"fmt"
)

// Container magic numbers (§4.2 table).
const (
	magicCBDDLP   uint32 = 0x12FD0066
	magicCTBv2v3  uint32 = 0x12FD0086
	magicCTBv4    uint32 = 0x12FD0106
	magicCTBv4E   uint32 = 0x12FD0107
	headerSize96         = 96
	headerSize48         = 48
	v4ESettingsSize      = 288
	maxLayerCount        = 100000
)

func formatOf(magic uint32) Format {
	switch magic {
	case magicCBDDLP:
		return FormatCBDDLP
	case magicCTBv2v3:
		return FormatCTBv2v3
	case magicCTBv4:
		return FormatCTBv4
	case magicCTBv4E:
		return FormatCTBv4E
	default:
		return FormatUnknown
	}
}

// Parser holds the state accumulated while walking a container's
// header, layer table, and previews. Its exported fields are the
// immutable SliceInfo plus the parser-private layer table consulted
// by the pipeline orchestrator.
type Parser struct {
	r      *byteReader
	Info   SliceInfo
	Layers []LayerDef
}

// Open reads and validates path's header, dispatching on its magic
// number, and returns a ready-to-use Parser. No layer bytes are read
// yet (those are read lazily/preloaded by the orchestrator per §4.5).
func Open(path string) (*Parser, error) {
	r, err := openByteReader(path)
	if err != nil {
		return nil, err
	}

	head, err := r.readAt(0, 4)
	if err != nil {
		r.close()
		return nil, err
	}
	magic := readU32(head)
	format := formatOf(magic)
	if format == FormatUnknown {
		r.close()
		return nil, &FormatError{Path: path, Msg: fmt.Sprintf("unrecognized magic 0x%08X", magic)}
	}

	p := &Parser{r: r}
	p.Info.SourcePath = path
	p.Info.Format = format

	var err2 error
	switch format {
	case FormatCTBv4E:
		err2 = p.parseV4E()
	default:
		err2 = p.parseUnencrypted(format)
	}
	if err2 != nil {
		r.close()
		return nil, err2
	}

	if err2 = Validate(p.Info.ResolutionX, p.Info.ResolutionY); err2 != nil {
		r.close()
		return nil, err2
	}

	return p, nil
}

// Close releases the underlying file handle.
func (p *Parser) Close() error { return p.r.close() }

// ReadLayerBytes reads the raw, still-encrypted/encoded payload for
// layer i as described by its LayerDef. The returned slice is owned by
// the caller and is released after the worker consumes it (§4, "Raw
// layer payload").
func (p *Parser) ReadLayerBytes(i int) ([]byte, error) {
	if i < 0 || i >= len(p.Layers) {
		return nil, &FormatError{Path: p.Info.SourcePath, Msg: "layer index out of range"}
	}
	ld := p.Layers[i]
	return p.r.readAt(int64(ld.DataOffset), int(ld.DataLength))
}

func validateLayerTable(path string, layerCount int, layerTableOffset int64) error {
	if layerCount > maxLayerCount {
		return &FormatError{Path: path, Msg: fmt.Sprintf("layer count %d exceeds maximum %d", layerCount, maxLayerCount)}
	}
	if layerCount > 0 && layerTableOffset <= 0 {
		return &FormatError{Path: path, Msg: "invalid layer table offset"}
	}
	return nil
}
