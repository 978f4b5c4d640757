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
	"context"
	"testing"
)

func TestConvertLayersBlankFastPathForAllLayers(t *testing.T) {
	const layerCount = 5
	path := buildCBDDLP(t, layerCount) // every layer payload here is 4 bytes, under blankLayerMax
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	opts := NewDefaultOptions()
	target := targetProfiles[0]

	results, err := convertLayers(context.Background(), p, target, opts, nil)
	if err != nil {
		t.Fatalf("convertLayers: %v", err)
	}
	if len(results) != layerCount {
		t.Fatalf("len(results) = %d, want %d", len(results), layerCount)
	}
	for i, r := range results {
		if r.err != nil {
			t.Fatalf("result[%d].err = %v", i, r.err)
		}
		if r.index != i {
			t.Fatalf("result[%d].index = %d, want %d (results must be sorted by index)", i, r.index, i)
		}
		if len(r.png) != len(getBlankLayerPNG()) {
			t.Fatalf("result[%d] png length = %d, want the cached blank-layer PNG length", i, len(r.png))
		}
		if !r.area.IsEmpty() {
			t.Fatalf("result[%d].area should be EMPTY for a blank layer", i)
		}
	}
}

func TestConvertLayersHonorsProgressFunc(t *testing.T) {
	path := buildCBDDLP(t, 3)
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	opts := NewDefaultOptions()
	var lastCompleted, lastTotal int
	calls := 0
	opts.ProgressFunc = func(completed, total int) {
		calls++
		lastCompleted, lastTotal = completed, total
	}

	if _, err := convertLayers(context.Background(), p, targetProfiles[0], opts, nil); err != nil {
		t.Fatalf("convertLayers: %v", err)
	}
	if calls == 0 {
		t.Fatal("expected ProgressFunc to be invoked at least once")
	}
	if lastCompleted != 3 || lastTotal != 3 {
		t.Fatalf("final progress report = %d/%d, want 3/3", lastCompleted, lastTotal)
	}
}

func TestConvertLayersReturnsCancelledErrorOnContextCancel(t *testing.T) {
	path := buildCBDDLP(t, 50)
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled before the first worker claims any layer

	opts := NewDefaultOptions()
	_, err = convertLayers(ctx, p, targetProfiles[0], opts, nil)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
	if _, ok := err.(*CancelledError); !ok {
		t.Fatalf("got %T, want *CancelledError", err)
	}
}

func TestConvertLayersEmptyLayerSet(t *testing.T) {
	p := &Parser{}
	opts := NewDefaultOptions()
	results, err := convertLayers(context.Background(), p, targetProfiles[0], opts, nil)
	if err != nil {
		t.Fatalf("convertLayers with zero layers: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("len(results) = %d, want 0", len(results))
	}
}
