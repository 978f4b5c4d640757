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
	"encoding/binary"
	"io"
	"math"
	"os"
)

// byteReader is a seekable, short-read-tolerant reader over a slice
// archive, with typed little-endian primitive accessors. It never
// mutates its position outside of the exported operations, mirroring
// the RIFF chunk reader idiom (io.ReadFull + binary.LittleEndian).
type byteReader struct {
	f    *os.File
	size int64
	path string
}

// openByteReader opens path for random-access reading.
func openByteReader(path string) (*byteReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	return &byteReader{f: f, size: fi.Size(), path: path}, nil
}

func (r *byteReader) close() error { return r.f.Close() }

func (r *byteReader) len() int64 { return r.size }

// seek moves the read position to an absolute file offset.
func (r *byteReader) seek(absolute int64) error {
	if absolute < 0 || absolute > r.size {
		return &FormatError{Path: r.path, Msg: "seek out of range"}
	}
	_, err := r.f.Seek(absolute, io.SeekStart)
	if err != nil {
		return &IOError{Op: "seek", Path: r.path, Err: err}
	}
	return nil
}

// readExact reads exactly n bytes, looping over short reads. An EOF
// reached before n bytes have been read is a format error, not an I/O
// error: it means the container lied about its own layout.
func (r *byteReader) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := r.f.Read(buf[read:])
		read += m
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, &IOError{Op: "read", Path: r.path, Err: err}
		}
	}
	if read < n {
		return nil, &FormatError{Path: r.path, Msg: "truncated read"}
	}
	return buf, nil
}

// readAt reads exactly n bytes at absolute offset off without
// disturbing the reader's implicit position for subsequent sequential
// reads elsewhere in the parser.
func (r *byteReader) readAt(off int64, n int) ([]byte, error) {
	if off < 0 || off+int64(n) > r.size {
		return nil, &FormatError{Path: r.path, Msg: "layer range outside file"}
	}
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := r.f.ReadAt(buf[read:], off+int64(read))
		read += m
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, &IOError{Op: "readAt", Path: r.path, Err: err}
		}
	}
	if read < n {
		return nil, &FormatError{Path: r.path, Msg: "truncated read"}
	}
	return buf, nil
}

func readU16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func readU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func readI32(b []byte) int32  { return int32(binary.LittleEndian.Uint32(b)) }
func readF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// readU32At reads a little-endian uint32 from within the already
// fully-read settings/header byte slice b at offset off. These
// accessors are used throughout the header parsers (§4.2) where the
// whole fixed-size header has already been buffered.
func readU32At(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off : off+4]) }
func readI32At(b []byte, off int) int32  { return int32(binary.LittleEndian.Uint32(b[off : off+4])) }
func readF32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
}
func readU16At(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off : off+2]) }
