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

package api

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mechiko/chitu2nanodlp/pkg/slice"
)

func putU32(b []byte, off int, v uint32)  { binary.LittleEndian.PutUint32(b[off:off+4], v) }
func putF32(b []byte, off int, v float32) { putU32(b, off, math.Float32bits(v)) }

// buildCBDDLPFixture hand-assembles a minimal valid CBDDLP file, using
// the container header/layer-table layout documented for the format
// (§4.2): a 96-byte header followed by a flat 36-byte-per-entry legacy
// layer table and single 4-byte layer payloads.
func buildCBDDLPFixture(t *testing.T, layerCount int) string {
	t.Helper()

	const (
		magicCBDDLP          = 0x12FD0066
		headerLen            = 96
		legacyLayerEntrySize = 36
		offDisplayWidthMM    = 8
		offDisplayHeightMM   = 12
		offLayerHeightMM     = 16
		offExposureNormal    = 20
		offBottomExposure    = 28
		offResolutionX       = 52
		offResolutionY       = 56
		offLayerTableOffset  = 64
		offLayerCount        = 68
		legacyOffPositionZ   = 0
		legacyOffExposureSec = 4
		legacyOffDataOffset  = 12
		legacyOffDataLength  = 16
	)

	layerTableOffset := headerLen
	dataOffset := layerTableOffset + layerCount*legacyLayerEntrySize

	buf := make([]byte, dataOffset+layerCount*4)
	putU32(buf, 0, magicCBDDLP)
	putF32(buf, offDisplayWidthMM, 218.88)
	putF32(buf, offDisplayHeightMM, 122.88)
	putF32(buf, offLayerHeightMM, 0.05)
	putF32(buf, offExposureNormal, 2.5)
	putF32(buf, offBottomExposure, 30)
	putU32(buf, offResolutionX, 11520)
	putU32(buf, offResolutionY, 5120)
	putU32(buf, offLayerTableOffset, uint32(layerTableOffset))
	putU32(buf, offLayerCount, uint32(layerCount))

	for i := 0; i < layerCount; i++ {
		e := buf[layerTableOffset+i*legacyLayerEntrySize:]
		putF32(e, legacyOffPositionZ, float32(i)*0.05)
		putF32(e, legacyOffExposureSec, 2.5)
		putU32(e, legacyOffDataOffset, uint32(dataOffset+i*4))
		putU32(e, legacyOffDataLength, 4)
	}

	path := filepath.Join(t.TempDir(), "model.cbddlp")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write test fixture: %v", err)
	}
	return path
}

func TestConvertFileSucceedsOnValidArchive(t *testing.T) {
	srcPath := buildCBDDLPFixture(t, 3)
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	result, err := ConvertFile(srcPath, outPath, nil)
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if !result.Success {
		t.Fatalf("result.Success = false, ErrorMessage = %q", result.ErrorMessage)
	}
}

func TestConvertReturnsUserFacingErrorMessageOnValidationFailure(t *testing.T) {
	srcPath := buildCBDDLPFixture(t, 20000) // print height grossly exceeds any profile's max Z
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	result, err := Convert(context.Background(), srcPath, outPath, nil)
	if err == nil {
		t.Fatal("expected an error for an over-tall print")
	}
	if result.Success {
		t.Fatal("result.Success should be false on failure")
	}
	if !strings.Contains(result.ErrorMessage, "exceeds") {
		t.Fatalf("ErrorMessage = %q, want it to contain %q", result.ErrorMessage, "exceeds")
	}
}

func TestConvertUsesDefaultOptionsWhenNil(t *testing.T) {
	srcPath := buildCBDDLPFixture(t, 2)
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	result, err := Convert(context.Background(), srcPath, outPath, nil)
	if err != nil {
		t.Fatalf("Convert with nil opts: %v", err)
	}
	if result.LayerCount != 2 {
		t.Fatalf("LayerCount = %d, want 2", result.LayerCount)
	}
}

func TestConvertPropagatesExplicitOptions(t *testing.T) {
	srcPath := buildCBDDLPFixture(t, 2)
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	opts := slice.NewDefaultOptions()
	opts.FastMode = true
	result, err := Convert(context.Background(), srcPath, outPath, opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success under FastMode")
	}
}
