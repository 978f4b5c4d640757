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

// Concurrent per-layer conversion pipeline (§5). Workers claim layer
// indices off a shared atomic counter rather than being handed a
// pre-sliced chunk each, the same work-claiming idiom the webp encoder
// uses to keep row workers fed without a channel per row. Each layer's
// working buffers are independent, so no cross-worker row
// synchronization is needed here.

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// blankLayerPNG is the fixed 1x1 black greyscale PNG every blank-layer
// fast path (§4.3) emits in place of a full decode+remap+encode. Built
// once since every blank layer, regardless of target resolution,
// produces this exact 67 bytes.
var (
	blankLayerPNGOnce sync.Once
	blankLayerPNG     []byte
)

func getBlankLayerPNG() []byte {
	blankLayerPNGOnce.Do(func() {
		// The IDAT zlib stream is written by hand: one fixed-Huffman
		// block holding the Up-filtered scanline {2, 0} plus its
		// Adler-32. compress/zlib emits a longer stream for the same data.
		var buf bytes.Buffer
		buf.Write(pngSignature)
		writeChunk(&buf, "IHDR", encodeIHDR(1, 1, colorTypeGrey))
		writeChunk(&buf, "IDAT", []byte{0x78, 0x01, 0x63, 0x62, 0x00, 0x00, 0x00, 0x06, 0x00, 0x03})
		writeChunk(&buf, "IEND", nil)
		blankLayerPNG = buf.Bytes()
	})
	return blankLayerPNG
}

// layerResult holds one converted layer's outputs, keyed by its
// original index so the archive writer can restore ordering after
// out-of-order completion.
type layerResult struct {
	index int
	png   []byte
	area  LayerAreaInfo
	err   error
}

// progressDebounceInterval matches the teacher's cadence for surfacing
// incremental status without flooding ProgressFunc.
const progressDebounceInterval = 250 * time.Millisecond

// convertLayers runs every layer in p through decode/remap/encode and
// returns results sorted by layer index. ctx cancellation stops
// dispatching new layers and causes in-flight workers to drain rather
// than abort mid-buffer.
func convertLayers(ctx context.Context, p *Parser, target Profile, opts *Options, collector *Collector) ([]layerResult, error) {
	total := len(p.Layers)
	results := make([]layerResult, total)
	if total == 0 {
		return results, nil
	}

	var rawLayers [][]byte
	if opts.Mode == ModePreload {
		rawLayers = make([][]byte, total)
		for i := 0; i < total; i++ {
			b, err := p.ReadLayerBytes(i)
			if err != nil {
				return nil, errors.Wrapf(err, "chitu2nanodlp: preload layer %d", i)
			}
			rawLayers[i] = b
		}
	}

	numWorkers := opts.workerCount(total)
	if opts.EnableAutoTune {
		numWorkers = autoTuneWorkerCount(target, numWorkers)
	}
	var next atomic.Int64
	var completed atomic.Int64
	var wg sync.WaitGroup
	var cancelled atomic.Bool

	lastReport := time.Now()
	var reportMu sync.Mutex
	reportProgress := func() {
		if opts.ProgressFunc == nil {
			return
		}
		reportMu.Lock()
		defer reportMu.Unlock()
		now := time.Now()
		if now.Sub(lastReport) < progressDebounceInterval {
			return
		}
		lastReport = now
		opts.ProgressFunc(int(completed.Load()), total)
	}

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					cancelled.Store(true)
					return
				default:
				}

				i := int(next.Add(1) - 1)
				if i >= total {
					return
				}

				var raw []byte
				var err error
				if opts.Mode == ModePreload {
					raw = rawLayers[i]
				} else {
					raw, err = p.ReadLayerBytes(i)
				}
				if err != nil {
					results[i] = layerResult{index: i, err: err}
					completed.Add(1)
					reportProgress()
					continue
				}

				res := convertOneLayer(i, raw, p.Info, target, opts, collector)
				results[i] = res
				completed.Add(1)
				reportProgress()
			}
		}()
	}
	wg.Wait()

	if opts.ProgressFunc != nil {
		opts.ProgressFunc(int(completed.Load()), total)
	}

	if cancelled.Load() {
		return nil, &CancelledError{}
	}

	for i := range results {
		if results[i].err != nil {
			return nil, errors.Wrapf(results[i].err, "chitu2nanodlp: layer %d", i)
		}
	}
	collector.Finish(total, numWorkers)
	return results, nil
}

// convertOneLayer runs the full per-layer transform: keystream
// decryption, RLE decode, optional area analysis, subpixel remap, PNG
// encode.
func convertOneLayer(index int, raw []byte, info SliceInfo, target Profile, opts *Options, collector *Collector) layerResult {
	if len(raw) < blankLayerMax {
		return layerResult{index: index, png: getBlankLayerPNG(), area: EmptyLayerAreaInfo}
	}

	decryptLayerXOR(raw, info.EncryptionKey, index)

	decodeStart := time.Now()
	grey, err := decodeRLE(raw, info.ResolutionX, info.ResolutionY)
	collector.RecordDecode(time.Since(decodeStart))
	if err != nil {
		return layerResult{index: index, err: err}
	}

	var area LayerAreaInfo
	if opts.EnableAreaAnalysis {
		pitchX := target.DisplayMMX / float64(target.ResolutionX)
		pitchY := target.DisplayMMY / float64(target.ResolutionY)
		area = computeLayerArea(grey, info.ResolutionX, info.ResolutionY, pitchX, pitchY)
	}

	remapStart := time.Now()
	remapped := remapForBoard(target.BoardType, grey, info.ResolutionX, info.ResolutionY, target.PNGOutputWidth)
	collector.RecordRemap(time.Since(remapStart))

	encodeStart := time.Now()
	level := opts.effectivePNGLevel()
	mode := opts.effectiveRecompressMode()
	var png []byte
	if target.BoardType == BoardRGB8Bit {
		png, err = recompressRGB(remapped, target.PNGOutputWidth, info.ResolutionY, level, mode)
	} else {
		png, err = recompressGrey(remapped, target.PNGOutputWidth, info.ResolutionY, level, mode)
	}
	collector.RecordEncode(time.Since(encodeStart))
	if err != nil {
		return layerResult{index: index, err: err}
	}

	return layerResult{index: index, png: png, area: area}
}
