//
// results_test.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package results

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markkurossi/mpcbench/circuit"
	"github.com/markkurossi/mpcbench/p2p"
	"github.com/stretchr/testify/require"
)

func testRecord() *Record {
	r := NewRecord()
	r.Role = "SERVER"
	r.Domain = "fixed"
	r.Depth = 2
	r.Lanes = 1
	r.Bits = 64
	r.X = "2"
	r.Y = "3"
	r.Results = []string{"54"}
	r.Verified = true
	r.Phases = []Phase{
		{Label: "Init", Duration: 2 * time.Millisecond},
		{Label: "Eval", Duration: 5 * time.Millisecond},
	}
	return r
}

func TestNewRecord(t *testing.T) {
	a := NewRecord()
	b := NewRecord()
	require.NotEqual(t, a.ID, b.ID)

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	require.False(t, a.Created.IsZero())
}

func TestSetTiming(t *testing.T) {
	timing := circuit.NewTiming()
	timing.Sample("Init", nil)
	timing.Sample("Eval", nil)

	stats := p2p.NewIOStats()
	stats.Sent.Store(100)
	stats.Recvd.Store(40)

	r := NewRecord()
	r.SetTiming(timing, stats)
	require.Len(t, r.Phases, 2)
	require.Equal(t, "Init", r.Phases[0].Label)
	require.Equal(t, "Eval", r.Phases[1].Label)
	require.Equal(t, uint64(100), r.Sent)
	require.Equal(t, uint64(40), r.Received)
	require.Equal(t, r.Phases[0].Duration+r.Phases[1].Duration, r.Elapsed)
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	r := testRecord()
	require.NoError(t, sink.Publish(context.Background(), r))
	require.NoError(t, sink.Publish(context.Background(), r))
	require.NoError(t, sink.Close())

	dec := json.NewDecoder(&buf)
	for i := 0; i < 2; i++ {
		var got Record
		require.NoError(t, dec.Decode(&got))
		require.Equal(t, r.ID, got.ID)
		require.Equal(t, r.Results, got.Results)
		require.Equal(t, r.Phases, got.Phases)
	}
}

func TestHTTPSink(t *testing.T) {
	var received Record
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if err := json.NewDecoder(req.Body).Decode(&received); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusCreated)
		}))
	defer server.Close()

	sink := NewHTTPSink(server.URL)
	r := testRecord()
	require.NoError(t, sink.Publish(context.Background(), r))
	require.Equal(t, r.ID, received.ID)
	require.Equal(t, r.Domain, received.Domain)
	require.NoError(t, sink.Close())
}

func TestHTTPSinkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
	defer server.Close()

	sink := NewHTTPSink(server.URL)
	require.Error(t, sink.Publish(context.Background(), testRecord()))
}

func TestRedisSinkURL(t *testing.T) {
	_, err := NewRedisSink("http://localhost:6379")
	require.Error(t, err)
}

func TestSQLSinkDSN(t *testing.T) {
	_, err := NewSQLSink("no-database-name")
	require.Error(t, err)
}

func TestInsertArgs(t *testing.T) {
	r := testRecord()
	r.Results = []string{"1", "2"}
	args := insertArgs(r)

	require.Len(t, args, bytes.Count([]byte(insertSQL), []byte("?")))
	require.Equal(t, r.ID, args[0])
	require.Equal(t, "1,2", args[9])
	require.Equal(t, true, args[10])
}

type failSink struct {
	err error
}

func (s *failSink) Publish(ctx context.Context, r *Record) error {
	return s.err
}

func (s *failSink) Close() error {
	return nil
}

func TestSinks(t *testing.T) {
	var buf bytes.Buffer
	failed := &failSink{err: context.Canceled}

	sinks := Sinks{failed, NewWriterSink(&buf)}
	err := sinks.Publish(context.Background(), testRecord())
	require.ErrorIs(t, err, context.Canceled)
	require.NotZero(t, buf.Len())
	require.NoError(t, sinks.Close())
}

func TestRenderChart(t *testing.T) {
	a := testRecord()
	b := testRecord()
	b.Role = "CLIENT"
	b.Phases = append(b.Phases, Phase{Label: "Result", Duration: time.Millisecond})

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, a, b))
	html := buf.String()
	require.Contains(t, html, "mulbench fixed depth 2")
	require.Contains(t, html, "Result")
	require.Contains(t, html, "CLIENT")

	require.Error(t, RenderChart(&buf))
}
