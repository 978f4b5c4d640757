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

import (
	"archive/zip"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunEndToEndProducesArchive(t *testing.T) {
	const layerCount = 4
	srcPath := buildCBDDLP(t, layerCount)
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	result, err := Run(context.Background(), srcPath, outPath, NewDefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Success {
		t.Fatal("result.Success = false")
	}
	if result.LayerCount != layerCount {
		t.Fatalf("LayerCount = %d, want %d", result.LayerCount, layerCount)
	}

	zr, err := zip.OpenReader(outPath)
	if err != nil {
		t.Fatalf("open written archive: %v", err)
	}
	defer zr.Close()

	pngCount := 0
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".png") && f.Name != "3d.png" {
			pngCount++
		}
	}
	if pngCount != layerCount {
		t.Fatalf("layer PNG count = %d, want %d", pngCount, layerCount)
	}
}

func TestRunRejectsPrintHeightExceedingMaxZ(t *testing.T) {
	// 20000 layers * 0.05mm/layer = 1000mm, far past any profile's max Z.
	srcPath := buildCBDDLP(t, 20000)
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	_, err := Run(context.Background(), srcPath, outPath, NewDefaultOptions())
	if err == nil {
		t.Fatal("expected an error for a print height exceeding max Z")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("got %T, want *ValidationError", err)
	}
	msg := ve.Error()
	if !strings.Contains(msg, "exceeds") {
		t.Fatalf("error message %q does not contain %q", msg, "exceeds")
	}
}

func TestRunHonorsMaxZOverride(t *testing.T) {
	srcPath := buildCBDDLP(t, 4)
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	opts := NewDefaultOptions()
	opts.MaxZOverrideMM = 0.01 // far below 4 layers * 0.05mm
	_, err := Run(context.Background(), srcPath, outPath, opts)
	if err == nil {
		t.Fatal("expected MaxZOverrideMM to trigger a validation error")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("got %T, want *ValidationError", err)
	}
}

func TestRunRejectsUnknownTargetProfileName(t *testing.T) {
	srcPath := buildCBDDLP(t, 2)
	outPath := filepath.Join(t.TempDir(), "plate.nanodlp")

	opts := NewDefaultOptions()
	opts.TargetProfileName = "does-not-exist"
	_, err := Run(context.Background(), srcPath, outPath, opts)
	if err == nil {
		t.Fatal("expected an error for an unknown target profile name")
	}
}
