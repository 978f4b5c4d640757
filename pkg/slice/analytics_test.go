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
	"testing"
	"time"
)

func TestNilCollectorMethodsAreNoops(t *testing.T) {
	var c *Collector
	// None of these should panic on a nil receiver (analytics is opt-in).
	c.RecordDecode(time.Millisecond)
	c.RecordRemap(time.Millisecond)
	c.RecordEncode(time.Millisecond)
	c.Finish(10, 2)
}

func TestStageTimingAverageAndMax(t *testing.T) {
	s := newStageTiming("decode")
	s.record(10 * time.Millisecond)
	s.record(30 * time.Millisecond)
	s.record(20 * time.Millisecond)

	if got := s.average(); got != 20*time.Millisecond {
		t.Fatalf("average() = %v, want 20ms", got)
	}
	if s.Max != 30*time.Millisecond {
		t.Fatalf("Max = %v, want 30ms", s.Max)
	}
	if s.Count != 3 {
		t.Fatalf("Count = %d, want 3", s.Count)
	}
}

func TestStageTimingAverageWithNoSamples(t *testing.T) {
	s := newStageTiming("remap")
	if got := s.average(); got != 0 {
		t.Fatalf("average() on empty timing = %v, want 0", got)
	}
}

func TestCollectorDiagnoseOversubscription(t *testing.T) {
	c := &Collector{decode: newStageTiming("decode"), remap: newStageTiming("remap"), encode: newStageTiming("encode")}
	findings := c.diagnose(4, 16, time.Second)
	if len(findings) == 0 {
		t.Fatal("expected an oversubscription finding when workerCount > layerCount")
	}
}

func TestCollectorDiagnoseNoFindingsUnderBalancedLoad(t *testing.T) {
	c := &Collector{decode: newStageTiming("decode"), remap: newStageTiming("remap"), encode: newStageTiming("encode")}
	for i := 0; i < 5; i++ {
		c.decode.record(10 * time.Millisecond)
		c.encode.record(8 * time.Millisecond)
	}
	findings := c.diagnose(10, 4, time.Second)
	if len(findings) != 0 {
		t.Fatalf("expected no findings under balanced load, got %v", findings)
	}
}

func TestCollectorDiagnoseDecodeDominatesEncode(t *testing.T) {
	c := &Collector{decode: newStageTiming("decode"), remap: newStageTiming("remap"), encode: newStageTiming("encode")}
	for i := 0; i < 3; i++ {
		c.decode.record(100 * time.Millisecond)
		c.encode.record(10 * time.Millisecond)
	}
	findings := c.diagnose(3, 2, time.Second)
	found := false
	for _, f := range findings {
		if f == "decode stage dominates encode stage; likely I/O bound" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an I/O-bound finding, got %v", findings)
	}
}
