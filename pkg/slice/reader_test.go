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
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestReadU32AndReadF32AtRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	putU32(buf, 0, 0xDEADBEEF)
	putF32(buf, 4, 3.5)

	if got := readU32At(buf, 0); got != 0xDEADBEEF {
		t.Fatalf("readU32At = 0x%X, want 0xDEADBEEF", got)
	}
	if got := readF32At(buf, 4); got != 3.5 {
		t.Fatalf("readF32At = %v, want 3.5", got)
	}
	if got := readI32At(buf, 0); got != int32(0xDEADBEEF) {
		t.Fatalf("readI32At = %d, want %d", got, int32(0xDEADBEEF))
	}
}

func TestReadU16AtAndReadU16Agree(t *testing.T) {
	buf := []byte{0x34, 0x12}
	if got := readU16At(buf, 0); got != 0x1234 {
		t.Fatalf("readU16At = 0x%X, want 0x1234", got)
	}
	if got := readU16(buf); got != 0x1234 {
		t.Fatalf("readU16 = 0x%X, want 0x1234", got)
	}
}

func TestReadF32NegativeValue(t *testing.T) {
	buf := make([]byte, 4)
	putF32(buf, 0, -12.25)
	got := readF32(buf)
	if math.Abs(float64(got+12.25)) > 1e-6 {
		t.Fatalf("readF32 = %v, want -12.25", got)
	}
}

func TestByteReaderReadAtOutOfRangeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	r, err := openByteReader(path)
	if err != nil {
		t.Fatalf("openByteReader: %v", err)
	}
	defer r.close()

	if _, err := r.readAt(0, 100); err == nil {
		t.Fatal("expected an error reading past end of file")
	}
	if _, err := r.readAt(-1, 1); err == nil {
		t.Fatal("expected an error for a negative offset")
	}
}

func TestByteReaderReadAtReturnsExactBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	want := []byte{10, 20, 30, 40, 50}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	r, err := openByteReader(path)
	if err != nil {
		t.Fatalf("openByteReader: %v", err)
	}
	defer r.close()

	got, err := r.readAt(1, 3)
	if err != nil {
		t.Fatalf("readAt: %v", err)
	}
	for i, b := range []byte{20, 30, 40} {
		if got[i] != b {
			t.Fatalf("readAt(1,3)[%d] = %d, want %d", i, got[i], b)
		}
	}
	if r.len() != int64(len(want)) {
		t.Fatalf("len() = %d, want %d", r.len(), len(want))
	}
}

func TestByteReaderSeekOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	r, err := openByteReader(path)
	if err != nil {
		t.Fatalf("openByteReader: %v", err)
	}
	defer r.close()

	if err := r.seek(-1); err == nil {
		t.Fatal("expected an error seeking to a negative offset")
	}
	if err := r.seek(1000); err == nil {
		t.Fatal("expected an error seeking past end of file")
	}
	if err := r.seek(2); err != nil {
		t.Fatalf("seek within range: %v", err)
	}
}

func TestOpenByteReaderMissingFile(t *testing.T) {
	if _, err := openByteReader(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatal("expected an error opening a nonexistent file")
	}
}
