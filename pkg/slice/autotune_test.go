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

import "testing"

func TestCandidateWorkerCountsIncludesFallbackAndDouble(t *testing.T) {
	got := candidateWorkerCounts(4)
	want := map[int]bool{1: true, 2: true, 4: true, 8: true}
	seen := map[int]bool{}
	for _, n := range got {
		seen[n] = true
	}
	for n := range want {
		if !seen[n] {
			t.Fatalf("candidateWorkerCounts(4) = %v, missing %d", got, n)
		}
	}
}

func TestSyntheticLayerScalesDownAndNeverEmpty(t *testing.T) {
	buf := syntheticLayer(11520, 5120)
	wantW, wantH := 11520/4, 5120/4
	if len(buf) != wantW*wantH {
		t.Fatalf("len(buf) = %d, want %d", len(buf), wantW*wantH)
	}

	tiny := syntheticLayer(1, 1)
	if len(tiny) != 1 {
		t.Fatalf("syntheticLayer(1,1) len = %d, want 1", len(tiny))
	}
}

func TestAutoTuneWorkerCountCachesResult(t *testing.T) {
	target := targetProfiles[0]

	autoTuneMu.Lock()
	delete(autoTuneCache, ResolutionClass(target.ResolutionClass))
	autoTuneMu.Unlock()

	first := autoTuneWorkerCount(target, 2)
	if first < 1 {
		t.Fatalf("autoTuneWorkerCount = %d, want at least 1", first)
	}

	autoTuneMu.Lock()
	entry, ok := autoTuneCache[ResolutionClass(target.ResolutionClass)]
	autoTuneMu.Unlock()
	if !ok {
		t.Fatal("expected the winning worker count to be cached")
	}
	if entry.workers != first {
		t.Fatalf("cached workers = %d, want %d", entry.workers, first)
	}

	second := autoTuneWorkerCount(target, 99)
	if second != first {
		t.Fatalf("second call = %d, want cached value %d (fallback should be ignored on cache hit)", second, first)
	}
}
