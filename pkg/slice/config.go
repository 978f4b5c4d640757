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
	"path/filepath"
	"runtime"
	"strings"
)

// Mode selects how source layer bytes are staged before decoding.
type Mode int

const (
	// ModeStream reads each layer's bytes from disk as its worker claims it.
	ModeStream Mode = iota
	// ModePreload reads every layer's bytes up front, trading memory for I/O latency.
	ModePreload
)

// RecompressMode selects the zlib level each layer's single PNG encode
// uses (§4.4, §6): Off keeps ProcessPNGLevel, On uses best compression,
// Adaptive uses best compression only for layers whose sampled density
// reaches highDensityPercent. No layer is re-encoded after its first
// encode.
type RecompressMode int

const (
	RecompressAdaptive RecompressMode = iota
	RecompressOn
	RecompressOff
)

// Options configures one conversion run (§5, §6). The zero value is
// not valid; use NewDefaultOptions.
type Options struct {
	// Concurrency is the number of layer workers. Zero means auto
	// (runtime.GOMAXPROCS(0)). Overridden by CPUHostWorkers when set.
	Concurrency int
	// CPUHostWorkers, GPUHostWorkers override the adaptive worker
	// count directly (`cpu_host_workers`, `gpu_host_workers`). This
	// pipeline has no GPU path, so GPUHostWorkers is stored but not
	// read by the pipeline or analytics; the worker pool always runs
	// on CPUHostWorkers.
	CPUHostWorkers int
	GPUHostWorkers int
	Mode           Mode
	// TargetProfileName overrides automatic target-profile detection
	// (`target_profile`).
	TargetProfileName string
	// OutputDir and OutputName override the destination archive's
	// directory and base name (`output_directory`, `output_name`).
	// Both default to the source file's directory and stem.
	OutputDir  string
	OutputName string
	// MaxZOverrideMM overrides the target profile's declared max Z
	// (`max_z_override`). Zero means "use the profile's value".
	MaxZOverrideMM float64
	// ProcessPNGLevel is the zlib compression level (0-9) used for the
	// initial per-layer PNG encode (`process_png_level`).
	ProcessPNGLevel int
	// RecompressMode picks the zlib level of each layer's single encode
	// (`recompress_mode`); see the RecompressMode type.
	RecompressMode RecompressMode
	// FastMode forces ProcessPNGLevel to 0 and RecompressMode to Off
	// regardless of their configured values (`fast_mode`).
	FastMode bool
	// EnableAreaAnalysis turns on per-layer connected-component
	// statistics (§4.3, §8). Disabled by default: it roughly doubles
	// per-layer CPU cost. Its results feed plate.json's solid area and
	// bounding box and decide whether info.json is written.
	EnableAreaAnalysis bool
	// EnableAutoTune benchmarks candidate CPU worker counts before
	// conversion begins and uses the fastest (`autotune`, §5).
	EnableAutoTune bool
	// EnableAnalytics turns on the zap-backed per-stage timing
	// collector and its end-of-run diagnosis summary (`analytics`, §8).
	EnableAnalytics bool
	// ProgressFunc, when set, is invoked at roughly 250ms intervals
	// with the number of layers completed so far and the total.
	ProgressFunc func(completed, total int)
}

// NewDefaultOptions returns the baseline configuration: auto
// concurrency, streaming mode, automatic target detection, zlib level
// 6, adaptive recompression, area analysis and auto-tune both off.
func NewDefaultOptions() *Options {
	return &Options{
		Concurrency:     0,
		Mode:            ModeStream,
		ProcessPNGLevel: 6,
		RecompressMode:  RecompressAdaptive,
	}
}

// effectivePNGLevel and effectiveRecompressMode fold FastMode's
// override in at the point of use rather than mutating the caller's
// Options (`fast_mode` defaults to process PNG level 0 and recompress
// mode "off", §6).
func (o *Options) effectivePNGLevel() int {
	if o.FastMode {
		return 0
	}
	return o.ProcessPNGLevel
}

func (o *Options) effectiveRecompressMode() RecompressMode {
	if o.FastMode {
		return RecompressOff
	}
	return o.RecompressMode
}

// DeriveOutputPath builds the destination archive path from inputPath
// and the configured OutputDir/OutputName, following the
// "<basename>.nanodlp" naming rule (§4.6) when OutputName is unset.
func (o *Options) DeriveOutputPath(inputPath string) string {
	dir := o.OutputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	name := o.OutputName
	if name == "" {
		base := filepath.Base(inputPath)
		name = strings.TrimSuffix(base, filepath.Ext(base)) + ".nanodlp"
	}
	return filepath.Join(dir, name)
}

func (o *Options) workerCount(layerCount int) int {
	n := o.Concurrency
	if o.CPUHostWorkers > 0 {
		n = o.CPUHostWorkers
	}
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > layerCount {
		n = layerCount
	}
	if n < 1 {
		n = 1
	}
	return n
}
