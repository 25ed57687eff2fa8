//
// chart.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package results

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart renders the phase durations of the records as an HTML
// bar chart. Each record is one series; the phases are on the x-axis
// in the order they first appear.
func RenderChart(w io.Writer, records ...*Record) error {
	if len(records) == 0 {
		return errors.New("no records")
	}
	var labels []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, p := range r.Phases {
			if !seen[p.Label] {
				seen[p.Label] = true
				labels = append(labels, p.Label)
			}
		}
	}

	first := records[0]
	title := fmt.Sprintf("mulbench %s depth %d", first.Domain, first.Depth)
	subtitle := fmt.Sprintf("lanes=%d, bits=%d", first.Lanes, first.Bits)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	bar.SetXAxis(labels)

	for _, r := range records {
		durations := make(map[string]float64)
		for _, p := range r.Phases {
			durations[p.Label] += float64(p.Duration.Microseconds()) / 1000
		}
		items := make([]opts.BarData, len(labels))
		for i, label := range labels {
			items[i] = opts.BarData{Value: durations[label]}
		}
		bar.AddSeries(fmt.Sprintf("%s %s", r.Role, shortID(r.ID)), items)
	}
	return bar.Render(w)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
