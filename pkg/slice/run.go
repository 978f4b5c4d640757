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

// Run ties the parser, pipeline, and archive writer together into the
// single top-level conversion operation the api package exposes.

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Run parses inputPath, converts every layer, and writes the NanoDLP
// plate archive to outputPath.
func Run(ctx context.Context, inputPath, outputPath string, opts *Options) (*ConversionResult, error) {
	start := time.Now()
	if opts == nil {
		opts = NewDefaultOptions()
	}

	p, err := Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	target, err := resolveTargetProfile(p.Info, opts)
	if err != nil {
		return nil, err
	}

	maxZ := target.MaxZMM
	if opts.MaxZOverrideMM > 0 {
		maxZ = opts.MaxZOverrideMM
	}
	printHeight := float64(p.Info.LayerCount) * p.Info.LayerHeightMM
	if printHeight > maxZ {
		return nil, &ValidationError{Msg: fmt.Sprintf("print height %.4fmm exceeds profile max Z %.4fmm", printHeight, maxZ)}
	}

	var collector *Collector
	if opts.EnableAnalytics {
		collector, err = NewCollector()
		if err != nil {
			return nil, errors.Wrap(err, "chitu2nanodlp: start analytics collector")
		}
	}

	results, err := convertLayers(ctx, p, target, opts, collector)
	if err != nil {
		return nil, err
	}

	layers := make([][]byte, len(results))
	areas := make([]LayerAreaInfo, len(results))
	for i, r := range results {
		layers[i] = r.png
		areas[i] = r.area
	}

	meta := PlateMetadata{
		Source:        p.Info,
		Target:        target,
		PixelPitchXMM: target.DisplayMMX / float64(target.ResolutionX),
		PixelPitchYMM: target.DisplayMMY / float64(target.ResolutionY),
		OutputLayers:  len(layers),
		ThumbnailPNG:  p.Info.PreviewPNG,
		Area:          areas,
	}

	if err := WriteArchive(outputPath, layers, meta); err != nil {
		return nil, err
	}

	size, err := archiveSize(outputPath)
	if err != nil {
		size = 0
	}

	return &ConversionResult{
		Success:         true,
		OutputPath:      outputPath,
		SourceInfo:      p.Info,
		TargetProfile:   target,
		LayerCount:      len(layers),
		OutputSizeBytes: size,
		Duration:        time.Since(start),
	}, nil
}

func resolveTargetProfile(info SliceInfo, opts *Options) (Profile, error) {
	if opts.TargetProfileName != "" {
		if p, ok := findProfile(targetProfiles, opts.TargetProfileName); ok {
			return p, nil
		}
		return Profile{}, &ValidationError{Msg: "unknown target profile: " + opts.TargetProfileName}
	}
	target, ok := DetectTarget(info.ResolutionX, info.ResolutionY)
	if !ok {
		return Profile{}, &ValidationError{Msg: fmt.Sprintf("Unsupported resolution %dx%d: no matching target profile", info.ResolutionX, info.ResolutionY)}
	}
	return target, nil
}
