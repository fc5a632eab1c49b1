package perf

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText writes a human readable analysis of c to w.
func (c *Comparison) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := func(format string, args ...any) {
		fmt.Fprintf(tw, format, args...)
	}
	p("=== Image Processing Performance Analysis ===\n\n")
	p("Image Size:\t%dx%d pixels\n", c.Width, c.Height)
	p("Total Frames:\t%d\n", c.Frames)
	p("Workers:\t%d\n", c.Workers)
	p("Chain:\t%s\n\n", c.Overall.Chain)

	p("=== Individual Filter Performance ===\n")
	p("Filter\tSequential (ms)\tParallel (ms)\tSpeedup\n")
	for _, r := range c.PerFilter {
		p("%s\t%d\t%d\t%s\n", r.Chain, r.Sequential.TotalMillis(), r.Parallel.TotalMillis(), FormatSpeedup(r.Speedup()))
	}

	p("\n=== Overall Performance (All Filters) ===\n")
	p("Mode\tTotal (ms)\tAvg (ms)\tFPS\n")
	for _, m := range []Metrics{c.Overall.Sequential, c.Overall.Parallel} {
		p("%s\t%d\t%.2f\t%.2f\n", m.Mode, m.TotalMillis(), m.MeanMillis(), m.FPS())
	}

	p("\n=== Performance Comparison ===\n")
	p("Overall Speedup:\t%s\n", FormatSpeedup(c.Overall.Speedup()))
	p("Time Saved:\t%s\n", timeSaved(c.Overall))
	return tw.Flush()
}

// timeSaved returns the parallel time saving as a percentage of sequential time.
func timeSaved(r Result) string {
	seq := r.Sequential.TotalMillis()
	if seq == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", float64(seq-r.Parallel.TotalMillis())*100/float64(seq))
}
