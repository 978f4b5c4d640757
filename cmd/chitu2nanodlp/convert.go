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

package main

import (
	"fmt"
	"os"

	"github.com/mechiko/chitu2nanodlp/pkg/api"
	"github.com/mechiko/chitu2nanodlp/pkg/slice"
	"github.com/spf13/cobra"
)

// convertOptions mirrors the options table in the external interfaces
// section: one struct per invocation, translated into a *slice.Options
// right before the run starts.
type convertOptions struct {
	file            string
	targetProfile   string
	maxZOverride    float64
	outputDirectory string
	outputName      string
	fastMode        bool
	processPNGLevel int
	recompressMode  string
	preloadLayers   bool
	analytics       bool
	cpuHostWorkers  int
	gpuHostWorkers  int
	autotune        bool
	areaAnalysis    bool
}

var convOpts convertOptions

// registerConvertFlags attaches the conversion flags directly to
// rootCmd: the required CLI surface is "-h/--help, -f/--file <path>
// (or positional file path)"; everything else is the options table
// exposed for parity with the library's *slice.Options.
func registerConvertFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&convOpts.file, "file", "f", "", "source slice archive")
	cmd.Flags().StringVar(&convOpts.targetProfile, "target-profile", "", "override auto-detected target profile")
	cmd.Flags().Float64Var(&convOpts.maxZOverride, "max-z-override", 0, "override the target profile's max Z (mm)")
	cmd.Flags().StringVar(&convOpts.outputDirectory, "output-directory", "", "destination directory (default: source's directory)")
	cmd.Flags().StringVar(&convOpts.outputName, "output-name", "", "destination file name (default: <basename>.nanodlp)")
	cmd.Flags().BoolVar(&convOpts.fastMode, "fast-mode", false, "process PNG level 0, recompress mode off")
	cmd.Flags().IntVar(&convOpts.processPNGLevel, "process-png-level", 6, "deflate level (0-9) for the initial per-layer PNGs")
	cmd.Flags().StringVar(&convOpts.recompressMode, "recompress-mode", "adaptive", "recompression policy: adaptive|on|off")
	cmd.Flags().BoolVar(&convOpts.preloadLayers, "preload-layers", false, "pre-read every raw layer before converting")
	cmd.Flags().BoolVar(&convOpts.analytics, "analytics", false, "emit per-stage/per-worker timing analytics")
	cmd.Flags().IntVar(&convOpts.cpuHostWorkers, "cpu-host-workers", 0, "override the adaptive worker count")
	cmd.Flags().IntVar(&convOpts.gpuHostWorkers, "gpu-host-workers", 0, "informational only: this pipeline has no GPU path")
	cmd.Flags().BoolVar(&convOpts.autotune, "autotune", false, "benchmark candidate worker counts before converting")
	cmd.Flags().BoolVar(&convOpts.areaAnalysis, "area-analysis", false, "compute per-layer connected-component area statistics")

	cmd.Args = cobra.MaximumNArgs(1)
	cmd.RunE = runConvert
}

func runConvert(cmd *cobra.Command, args []string) error {
	inFile := convOpts.file
	if inFile == "" && len(args) == 1 {
		inFile = args[0]
	}
	if inFile == "" {
		return cmd.Help()
	}

	mode, err := parseRecompressMode(convOpts.recompressMode)
	if err != nil {
		return err
	}

	opts := slice.NewDefaultOptions()
	opts.TargetProfileName = convOpts.targetProfile
	opts.MaxZOverrideMM = convOpts.maxZOverride
	opts.OutputDir = convOpts.outputDirectory
	opts.OutputName = convOpts.outputName
	opts.FastMode = convOpts.fastMode
	opts.ProcessPNGLevel = convOpts.processPNGLevel
	opts.RecompressMode = mode
	opts.EnableAnalytics = convOpts.analytics
	opts.CPUHostWorkers = convOpts.cpuHostWorkers
	opts.GPUHostWorkers = convOpts.gpuHostWorkers
	opts.EnableAutoTune = convOpts.autotune
	opts.EnableAreaAnalysis = convOpts.areaAnalysis
	if convOpts.preloadLayers {
		opts.Mode = slice.ModePreload
	}
	opts.ProgressFunc = reportProgress

	outFile := opts.DeriveOutputPath(inFile)

	result, err := api.ConvertFile(inFile, outFile, opts)
	if err != nil && result == nil {
		return err
	}

	if !result.Success {
		fmt.Fprintf(os.Stderr, "%s\n", result.ErrorMessage)
		os.Exit(1)
	}

	fmt.Printf("%s: %d layers, %d bytes, %s\n", result.OutputPath, result.LayerCount, result.OutputSizeBytes, result.Duration)
	return nil
}

func parseRecompressMode(s string) (slice.RecompressMode, error) {
	switch s {
	case "", "adaptive":
		return slice.RecompressAdaptive, nil
	case "on":
		return slice.RecompressOn, nil
	case "off":
		return slice.RecompressOff, nil
	default:
		return 0, fmt.Errorf("unknown recompress mode %q: want adaptive, on or off", s)
	}
}

func reportProgress(completed, total int) {
	fmt.Fprintf(os.Stderr, "\r%d/%d layers", completed, total)
	if completed == total {
		fmt.Fprintln(os.Stderr)
	}
}
