//
// record.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package results implements benchmark result records and their
// destinations.
package results

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/p2p"
)

// Phase is the duration of one protocol phase.
type Phase struct {
	Label    string        `json:"label"`
	Duration time.Duration `json:"duration_ns"`
	Xfer     uint64        `json:"xfer"`
}

// Record is the result of one benchmark run of one party.
type Record struct {
	ID        string        `json:"id"`
	Created   time.Time     `json:"created"`
	Role      string        `json:"role"`
	Domain    string        `json:"domain"`
	Depth     int           `json:"depth"`
	Lanes     int           `json:"lanes"`
	Bits      int           `json:"bits"`
	Precision int           `json:"precision,omitempty"`
	X         string        `json:"x"`
	Y         string        `json:"y"`
	Results   []string      `json:"results"`
	Verified  bool          `json:"verified"`
	Gates     int           `json:"gates"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Sent      uint64        `json:"sent"`
	Received  uint64        `json:"received"`
	Phases    []Phase       `json:"phases"`
}

// NewRecord creates a new record with a unique run ID.
func NewRecord() *Record {
	return &Record{
		ID:      uuid.NewString(),
		Created: time.Now(),
	}
}

// SetTiming sets the phase durations and transfer sizes of the
// record.
func (r *Record) SetTiming(t *circuit.Timing, stats p2p.IOStats) {
	r.Phases = nil
	for _, sample := range t.Samples {
		r.Phases = append(r.Phases, Phase{
			Label:    sample.Label,
			Duration: sample.Duration(),
			Xfer:     sample.Xfer,
		})
	}
	r.Elapsed = t.Total()
	r.Sent = stats.Sent.Load()
	r.Received = stats.Recvd.Load()
}

// Sink stores result records.
type Sink interface {
	Publish(ctx context.Context, r *Record) error
	Close() error
}

// Sinks publishes records to all of its sinks.
type Sinks []Sink

// Publish implements Sink.Publish. All sinks are tried even if some
// of them fail.
func (sinks Sinks) Publish(ctx context.Context, r *Record) error {
	var result error
	for _, sink := range sinks {
		result = errors.CombineErrors(result, sink.Publish(ctx, r))
	}
	return result
}

// Close implements Sink.Close.
func (sinks Sinks) Close() error {
	var result error
	for _, sink := range sinks {
		result = errors.CombineErrors(result, sink.Close())
	}
	return result
}
