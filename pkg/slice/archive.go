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

// NanoDLP plate archive packaging (§4.6). Entries are stored, not
// deflated: every PNG is already compressed, and storing rather than
// re-deflating avoids a second, wasted compression pass over the bulk
// of the archive's bytes. The archive is built in a temp file next to
// the destination and renamed into place, so a failed or interrupted
// run never leaves a truncated plate archive at the final path.

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// WriteArchive assembles the NanoDLP plate ZIP at outputPath from the
// converted per-layer PNGs (ordered by layer index) and the plate
// metadata's JSON descriptors.
func WriteArchive(outputPath string, layers [][]byte, meta PlateMetadata) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".chitu2nanodlp-*.zip.tmp")
	if err != nil {
		return &IOError{Op: "create temp archive", Path: outputPath, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeArchiveEntries(tmp, layers, meta); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close temp archive", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return &IOError{Op: "rename archive", Path: outputPath, Err: err}
	}
	return nil
}

// writeArchiveEntries writes, in order: plate.json, profile.json,
// info.json (only when per-layer area info is available), options.json,
// 3d.png (the thumbnail, only when non-empty), then 1.png .. N.png
// (§4.6).
func writeArchiveEntries(f *os.File, layers [][]byte, meta PlateMetadata) error {
	zw := zip.NewWriter(f)

	plateJSON, err := buildPlateJSON(meta)
	if err != nil {
		zw.Close()
		return errors.Wrap(err, "chitu2nanodlp: build plate.json")
	}
	profileJSON, err := buildProfileJSON(meta)
	if err != nil {
		zw.Close()
		return errors.Wrap(err, "chitu2nanodlp: build profile.json")
	}
	optionsJSON, err := buildOptionsJSON(meta)
	if err != nil {
		zw.Close()
		return errors.Wrap(err, "chitu2nanodlp: build options.json")
	}

	if err := writeStoredEntry(zw, "plate.json", plateJSON); err != nil {
		zw.Close()
		return errors.Wrap(err, "chitu2nanodlp: write plate.json")
	}
	if err := writeStoredEntry(zw, "profile.json", profileJSON); err != nil {
		zw.Close()
		return errors.Wrap(err, "chitu2nanodlp: write profile.json")
	}

	if hasAreaInfo(meta.Area) {
		infoJSON, err := buildInfoJSON(meta)
		if err != nil {
			zw.Close()
			return errors.Wrap(err, "chitu2nanodlp: build info.json")
		}
		if err := writeStoredEntry(zw, "info.json", infoJSON); err != nil {
			zw.Close()
			return errors.Wrap(err, "chitu2nanodlp: write info.json")
		}
	}

	if err := writeStoredEntry(zw, "options.json", optionsJSON); err != nil {
		zw.Close()
		return errors.Wrap(err, "chitu2nanodlp: write options.json")
	}

	if len(meta.ThumbnailPNG) > 0 {
		if err := writeStoredEntry(zw, "3d.png", meta.ThumbnailPNG); err != nil {
			zw.Close()
			return errors.Wrap(err, "chitu2nanodlp: write 3d.png")
		}
	}

	for i, png := range layers {
		name := strconv.Itoa(i+1) + ".png"
		if err := writeStoredEntry(zw, name, png); err != nil {
			zw.Close()
			return errors.Wrapf(err, "chitu2nanodlp: write layer %d", i)
		}
	}

	return zw.Close()
}

func hasAreaInfo(area []LayerAreaInfo) bool {
	for _, a := range area {
		if !a.IsEmpty() {
			return true
		}
	}
	return false
}

// archiveSize reports the final on-disk size of the written archive.
func archiveSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func writeStoredEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
