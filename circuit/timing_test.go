//
// timing_test.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/markkurossi/mpcbench/p2p"
)

func TestFileSize(t *testing.T) {
	tests := []struct {
		size     FileSize
		expected string
	}{
		{0, "0B"},
		{1000, "1000B"},
		{1001, "1kB"},
		{2500000, "2MB"},
		{3000000001, "3GB"},
	}
	for _, test := range tests {
		if got := test.size.String(); got != test.expected {
			t.Errorf("FileSize(%d)=%s, expected %s", test.size, got,
				test.expected)
		}
	}
}

func TestTimingXfer(t *testing.T) {
	stats := p2p.NewIOStats()
	stats.Sent.Store(10)

	timing := NewTiming()
	timing.Track(stats)

	stats.Sent.Add(100)
	stats.Recvd.Add(20)
	s := timing.Sample("Init", []string{"42 gates"})
	if s.Xfer != 120 {
		t.Errorf("Init xfer %d, expected 120", s.Xfer)
	}
	s = timing.Sample("Eval", nil)
	if s.Xfer != 0 {
		t.Errorf("Eval xfer %d, expected 0", s.Xfer)
	}
	if timing.Total() < s.Duration() {
		t.Errorf("total %v < phase %v", timing.Total(), s.Duration())
	}

	var buf bytes.Buffer
	timing.Print(&buf)
	for _, str := range []string{"Init", "Eval", "42 gates", "Total"} {
		if !strings.Contains(buf.String(), str) {
			t.Errorf("report does not contain %q:\n%s", str, buf.String())
		}
	}
}

func TestTimingUntracked(t *testing.T) {
	timing := NewTiming()

	var buf bytes.Buffer
	timing.Print(&buf)
	if buf.Len() != 0 {
		t.Errorf("empty timing printed report")
	}
	timing.Sample("Build", nil)
	timing.Print(&buf)
	if !strings.Contains(buf.String(), "Build") {
		t.Errorf("report does not contain phase:\n%s", buf.String())
	}
}
