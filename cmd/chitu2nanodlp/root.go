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
	"github.com/mechiko/chitu2nanodlp/pkg/log"
	"github.com/spf13/cobra"
)

var (
	verbose, veryVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chitu2nanodlp",
	Short: "Converts ChiTuBox slice archives into NanoDLP plate archives",
	Long: `chitu2nanodlp reads a CBDDLP/CTB slice archive (legacy, v2/v3, v4 or
the encrypted v4E variant) and writes a NanoDLP plate ZIP: one PNG per
layer plus the plate/profile/options/info JSON descriptors NanoDLP
expects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "turn on logging")
	rootCmd.PersistentFlags().BoolVar(&veryVerbose, "vv", false, "verbose logging; also installs the trace logger, which discards its output, so the output matches --verbose")

	registerConvertFlags(rootCmd)
}

func initLogging() {
	if verbose || veryVerbose {
		log.SetDefaultDebugLogger()
		log.SetDefaultInfoLogger()
		log.SetDefaultStatsLogger()
	}
	if veryVerbose {
		log.SetDefaultTraceLogger()
	}
	log.SetDefaultErrorLogger()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
