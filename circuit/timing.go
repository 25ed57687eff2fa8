//
// timing.go
//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/markkurossi/mpcbench/p2p"
	"github.com/markkurossi/tabulate"
)

// FileSize is a byte count printed with a decimal unit suffix.
type FileSize uint64

func (s FileSize) String() string {
	switch {
	case s > 1000*1000*1000*1000:
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	case s > 1000*1000*1000:
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	case s > 1000*1000:
		return fmt.Sprintf("%dMB", s/(1000*1000))
	case s > 1000:
		return fmt.Sprintf("%dkB", s/1000)
	default:
		return fmt.Sprintf("%dB", s)
	}
}

// Timing records the phases of a protocol run. If the timing tracks
// a connection, each phase also records the bytes transferred during
// it.
type Timing struct {
	Start   time.Time
	Samples []*Sample

	stats p2p.IOStats
	xfer  uint64
}

// Sample is one protocol phase.
type Sample struct {
	Label string
	Start time.Time
	End   time.Time
	Xfer  uint64
	Cols  []string
}

// Duration returns the duration of the phase.
func (s *Sample) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// NewTiming creates a new Timing instance.
func NewTiming() *Timing {
	return &Timing{
		Start: time.Now(),
	}
}

// Track sets the connection statistics the phases are measured
// from.
func (t *Timing) Track(stats p2p.IOStats) {
	t.stats = stats
	t.xfer = stats.Sum()
}

func (t *Timing) tracking() bool {
	return t.stats.Sent != nil
}

// Sample ends the current phase and names it label. The cols
// annotate the phase in the report.
func (t *Timing) Sample(label string, cols []string) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	sample := &Sample{
		Label: label,
		Start: start,
		End:   time.Now(),
		Cols:  cols,
	}
	if t.tracking() {
		sum := t.stats.Sum()
		sample.Xfer = sum - t.xfer
		t.xfer = sum
	}
	t.Samples = append(t.Samples, sample)
	return sample
}

// Total returns the time from start to the end of the last phase.
func (t *Timing) Total() time.Duration {
	if len(t.Samples) == 0 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].End.Sub(t.Start)
}

func percent(a, b float64) string {
	if b == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f%%", a/b*100)
}

// Print prints the profiling report to w.
func (t *Timing) Print(w io.Writer) {
	if len(t.Samples) == 0 {
		return
	}
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)
	tab.Header("Info").SetAlign(tabulate.ML)

	total := t.Total()
	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.Label)
		row.Column(sample.Duration().String())
		row.Column(percent(float64(sample.Duration()), float64(total)))
		if t.tracking() {
			row.Column(FileSize(sample.Xfer).String())
		} else {
			row.Column("")
		}
		row.Column(strings.Join(sample.Cols, ", "))
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("")
	if !t.tracking() {
		row.Column("")
		row.Column("")
		tab.Print(w)
		return
	}
	sent := t.stats.Sent.Load()
	received := t.stats.Recvd.Load()
	sum := float64(sent + received)

	row.Column(FileSize(sent + received).String()).SetFormat(tabulate.FmtBold)
	row.Column("")

	for _, r := range []struct {
		label string
		value uint64
	}{
		{"\u251C\u2574Sent", sent},
		{"\u2570\u2574Rcvd", received},
	} {
		row = tab.Row()
		row.Column(r.label).SetFormat(tabulate.FmtItalic)
		row.Column("")
		row.Column(percent(float64(r.value), sum)).SetFormat(tabulate.FmtItalic)
		row.Column(FileSize(r.value).String()).SetFormat(tabulate.FmtItalic)
		row.Column("")
	}
	row = tab.Row()
	row.Column("Flushes").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column("")
	row.Column(fmt.Sprintf("%v", t.stats.Flushed.Load())).
		SetFormat(tabulate.FmtItalic)
	row.Column("")

	tab.Print(w)
}
