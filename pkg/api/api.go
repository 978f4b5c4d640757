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

// Package api lets you integrate chitu2nanodlp's conversion into your
// own Go backend.
//
// There is one operation, Convert, with two entry points:
//
//	func ConvertFile(inFile, outFile string, opts *slice.Options) (*slice.ConversionResult, error)
//	func Convert(ctx context.Context, inFile, outFile string, opts *slice.Options) (*slice.ConversionResult, error)
//
// ConvertFile always calls Convert; it exists so callers who don't
// need cancellation don't have to thread a context.Context through.
package api

import (
	"context"
	"time"

	"github.com/mechiko/chitu2nanodlp/pkg/log"
	"github.com/mechiko/chitu2nanodlp/pkg/slice"
	"github.com/pkg/errors"
)

// ConvertFile converts the slice archive at inFile into a NanoDLP
// plate archive at outFile, using context.Background() (no
// cancellation).
func ConvertFile(inFile, outFile string, opts *slice.Options) (*slice.ConversionResult, error) {
	return Convert(context.Background(), inFile, outFile, opts)
}

// Convert runs the full pipeline: parse inFile's header and layer
// table, detect (or apply the configured) target profile, convert
// every layer, and write outFile.
func Convert(ctx context.Context, inFile, outFile string, opts *slice.Options) (*slice.ConversionResult, error) {
	if opts == nil {
		opts = slice.NewDefaultOptions()
	}
	start := time.Now()

	result, err := slice.Run(ctx, inFile, outFile, opts)
	if err != nil {
		log.Error.Printf("%s: %v", inFile, err)
		return &slice.ConversionResult{
			Success:      false,
			OutputPath:   outFile,
			ErrorMessage: userErrorMessage(err),
			Duration:     time.Since(start),
		}, errors.Wrap(err, "chitu2nanodlp: convert")
	}
	return result, nil
}

// userErrorMessage extracts the message a caller-facing report should
// show: a bare "cancelled", the validation failure text with no
// internal prefix (so "Unsupported resolution ..." matches verbatim),
// or the full wrapped error string for anything else.
func userErrorMessage(err error) string {
	var ve *slice.ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	var ce *slice.CancelledError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}
