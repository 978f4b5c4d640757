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

// Conversion analytics (§8): per-stage and per-worker timing
// aggregation plus a handful of heuristic diagnoses, logged through
// zap's structured sugared logger rather than pkg/log's line-oriented
// one, since analytics output is consumed by dashboards rather than
// read by a human at the terminal.

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// StageTiming accumulates the time spent by every worker in one named
// pipeline stage (decode, remap, encode).
type StageTiming struct {
	mu     sync.Mutex
	Name   string
	Total  time.Duration
	Count  int
	Max    time.Duration
}

func newStageTiming(name string) *StageTiming {
	return &StageTiming{Name: name}
}

func (s *StageTiming) record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Total += d
	s.Count++
	if d > s.Max {
		s.Max = d
	}
}

func (s *StageTiming) average() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Collector aggregates timings across an entire conversion run and
// emits a structured summary plus heuristic diagnoses through a zap
// logger.
type Collector struct {
	log    *zap.SugaredLogger
	decode *StageTiming
	remap  *StageTiming
	encode *StageTiming
	start  time.Time
}

// NewCollector builds a Collector backed by a production zap config.
// Callers that don't want analytics output at all should simply not
// construct one; every collector method is nil-receiver-safe.
func NewCollector() (*Collector, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Collector{
		log:    logger.Sugar(),
		decode: newStageTiming("decode"),
		remap:  newStageTiming("remap"),
		encode: newStageTiming("encode"),
		start:  time.Now(),
	}, nil
}

func (c *Collector) RecordDecode(d time.Duration) {
	if c == nil {
		return
	}
	c.decode.record(d)
}

func (c *Collector) RecordRemap(d time.Duration) {
	if c == nil {
		return
	}
	c.remap.record(d)
}

func (c *Collector) RecordEncode(d time.Duration) {
	if c == nil {
		return
	}
	c.encode.record(d)
}

// Finish logs the aggregated per-stage summary and any heuristic
// diagnoses, then flushes and closes the underlying logger.
func (c *Collector) Finish(layerCount, workerCount int) {
	if c == nil {
		return
	}
	elapsed := time.Since(c.start)

	c.log.Infow("conversion complete",
		"layers", layerCount,
		"workers", workerCount,
		"elapsed", elapsed,
		"decode_avg", c.decode.average(),
		"remap_avg", c.remap.average(),
		"encode_avg", c.encode.average(),
	)

	for _, d := range c.diagnose(layerCount, workerCount, elapsed) {
		c.log.Warnw("diagnosis", "finding", d)
	}

	_ = c.log.Sync()
}

// diagnose applies a handful of heuristics over the collected timings:
// oversubscription (more workers than layers), load imbalance (worst
// stage far above its own average), and an I/O-bound signal (decode
// dominating encode).
func (c *Collector) diagnose(layerCount, workerCount int, elapsed time.Duration) []string {
	var findings []string

	if workerCount > layerCount && layerCount > 0 {
		findings = append(findings, "worker count exceeds layer count; oversubscribed")
	}

	if c.decode.Max > 4*c.decode.average() && c.decode.Count > 1 {
		findings = append(findings, "decode stage shows high variance across layers; load imbalance suspected")
	}

	if c.decode.average() > 2*c.encode.average() && c.encode.Count > 0 {
		findings = append(findings, "decode stage dominates encode stage; likely I/O bound")
	}

	return findings
}
