// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package benchmark

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/AleutianFanout/pkg/ux"
)

// Reporter formats benchmark output.
type Reporter interface {
	// Report writes the per-strategy results.
	Report(report *Report) error

	// ReportComparison writes the ranking.
	ReportComparison(cmp *Comparison) error

	// ReportAll writes both.
	ReportAll(report *Report, cmp *Comparison) error
}

// -----------------------------------------------------------------------------
// Console
// -----------------------------------------------------------------------------

// ConsoleReporter writes the human-readable summary.
//
// Output is styled only when the writer is a terminal.
type ConsoleReporter struct {
	w       io.Writer
	verbose bool
	painter ux.Painter
}

// NewConsoleReporter creates a console reporter writing to w.
//
// Inputs:
//   - w: Destination. nil means os.Stdout.
//   - verbose: Include per-strategy latency statistics.
func NewConsoleReporter(w io.Writer, verbose bool) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleReporter{
		w:       w,
		verbose: verbose,
		painter: ux.NewPainter(w),
	}
}

func (c *ConsoleReporter) render(style lipgloss.Style, s string) string {
	return c.painter.Paint(style, s)
}

// Report writes the header followed by one line per strategy.
//
// Example output:
//
//	Create 1000000 object
//	ForLoopParallel executed in 412 ms (1000000 items)
//	ParallelFor failed: work unit faulted at index 7: boom
func (c *ConsoleReporter) Report(report *Report) error {
	if report == nil {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(c.render(ux.Styles.Title, fmt.Sprintf("Create %d object", report.Items)))
	sb.WriteString("\n")

	for _, res := range report.Results {
		name := c.render(ux.Styles.Bold, res.Strategy)
		if !res.OK() {
			sb.WriteString(fmt.Sprintf("%s %s\n", name,
				c.render(ux.Styles.Error, "failed: "+res.Err.Error())))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s executed in %s (%d items)\n", name,
			c.render(ux.Styles.Success, formatMillis(res.Elapsed)), res.Items))

		if c.verbose && len(res.Samples) > 0 {
			l := res.Latency
			sb.WriteString(c.render(ux.Styles.Muted, fmt.Sprintf(
				"  rounds=%d min=%s median=%s p95=%s max=%s stddev=%s",
				len(res.Samples),
				formatMillis(l.Min), formatMillis(l.Median), formatMillis(l.P95),
				formatMillis(l.Max), formatMillis(l.StdDev),
			)))
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(c.w, sb.String())
	return err
}

// ReportComparison writes the ranking and speedup.
func (c *ConsoleReporter) ReportComparison(cmp *Comparison) error {
	if cmp == nil {
		return nil
	}

	var sb strings.Builder
	if len(cmp.Ranking) > 0 {
		sb.WriteString("\n")
		sb.WriteString(c.render(ux.Styles.Title, "Ranking"))
		sb.WriteString("\n")

		width := 0
		for _, r := range cmp.Ranking {
			if len(r.Strategy) > width {
				width = len(r.Strategy)
			}
		}
		for _, r := range cmp.Ranking {
			sb.WriteString(fmt.Sprintf("  %d. %-*s %10s  (%.2fx)\n",
				r.Rank, width, r.Strategy, formatMillis(r.Mean), r.Relative))
		}
		if cmp.Speedup > 0 {
			sb.WriteString(fmt.Sprintf("Speedup: %.2fx (%s vs %s)\n",
				cmp.Speedup, cmp.Fastest, cmp.Slowest))
		}
	}
	if len(cmp.Failed) > 0 {
		sb.WriteString(c.render(ux.Styles.Error,
			fmt.Sprintf("Failed: %s", strings.Join(cmp.Failed, ", "))))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(c.w, sb.String())
	return err
}

// ReportAll writes the results followed by the ranking.
func (c *ConsoleReporter) ReportAll(report *Report, cmp *Comparison) error {
	if err := c.Report(report); err != nil {
		return err
	}
	return c.ReportComparison(cmp)
}

// formatMillis renders d as whole milliseconds, the harness's unit.
func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%d ms", d.Milliseconds())
}

// -----------------------------------------------------------------------------
// JSON
// -----------------------------------------------------------------------------

// JSONReporter writes machine-readable output.
type JSONReporter struct {
	w      io.Writer
	pretty bool
}

// NewJSONReporter creates a JSON reporter writing to w.
//
// Inputs:
//   - w: Destination. nil means os.Stdout.
//   - pretty: Indent the output.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONReporter{w: w, pretty: pretty}
}

type jsonLatency struct {
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	StdDevMs float64 `json:"stddev_ms"`
	P90Ms    float64 `json:"p90_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

type jsonResult struct {
	Strategy    string       `json:"strategy"`
	Enumeration string       `json:"enumeration"`
	Scheduling  string       `json:"scheduling"`
	Items       int          `json:"items"`
	Started     time.Time    `json:"started"`
	ElapsedMs   float64      `json:"elapsed_ms"`
	SamplesMs   []float64    `json:"samples_ms,omitempty"`
	Latency     *jsonLatency `json:"latency,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type jsonReport struct {
	RunID      string       `json:"run_id"`
	Items      int          `json:"items"`
	Rounds     int          `json:"rounds"`
	Isolated   bool         `json:"isolated"`
	Started    time.Time    `json:"started"`
	DurationMs float64      `json:"duration_ms"`
	Failed     int          `json:"failed"`
	Results    []jsonResult `json:"results"`
}

type jsonRanked struct {
	Rank     int     `json:"rank"`
	Strategy string  `json:"strategy"`
	MeanMs   float64 `json:"mean_ms"`
	Relative float64 `json:"relative"`
}

type jsonComparison struct {
	Ranking []jsonRanked `json:"ranking"`
	Fastest string       `json:"fastest,omitempty"`
	Slowest string       `json:"slowest,omitempty"`
	Speedup float64      `json:"speedup"`
	Failed  []string     `json:"failed,omitempty"`
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func toJSONReport(report *Report) jsonReport {
	out := jsonReport{
		RunID:      report.RunID,
		Items:      report.Items,
		Rounds:     report.Rounds,
		Isolated:   report.Isolated,
		Started:    report.Started,
		DurationMs: ms(report.Duration),
		Failed:     report.Failed(),
		Results:    make([]jsonResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		jr := jsonResult{
			Strategy:    res.Strategy,
			Enumeration: res.Enumeration,
			Scheduling:  res.Scheduling,
			Items:       res.Items,
			Started:     res.Started,
		}
		if !res.OK() {
			jr.Error = res.Err.Error()
		} else {
			jr.ElapsedMs = ms(res.Elapsed)
			for _, s := range res.Samples {
				jr.SamplesMs = append(jr.SamplesMs, ms(s))
			}
			l := res.Latency
			jr.Latency = &jsonLatency{
				MinMs: ms(l.Min), MaxMs: ms(l.Max), MeanMs: ms(l.Mean),
				MedianMs: ms(l.Median), StdDevMs: ms(l.StdDev),
				P90Ms: ms(l.P90), P95Ms: ms(l.P95), P99Ms: ms(l.P99),
			}
		}
		out.Results = append(out.Results, jr)
	}
	return out
}

func toJSONComparison(cmp *Comparison) jsonComparison {
	out := jsonComparison{
		Ranking: make([]jsonRanked, 0, len(cmp.Ranking)),
		Fastest: cmp.Fastest,
		Slowest: cmp.Slowest,
		Speedup: cmp.Speedup,
		Failed:  cmp.Failed,
	}
	for _, r := range cmp.Ranking {
		out.Ranking = append(out.Ranking, jsonRanked{
			Rank: r.Rank, Strategy: r.Strategy, MeanMs: ms(r.Mean), Relative: r.Relative,
		})
	}
	return out
}

func (j *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(j.w)
	if j.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Report writes report as one JSON document.
func (j *JSONReporter) Report(report *Report) error {
	if report == nil {
		return nil
	}
	return j.encode(toJSONReport(report))
}

// ReportComparison writes cmp as one JSON document.
func (j *JSONReporter) ReportComparison(cmp *Comparison) error {
	if cmp == nil {
		return nil
	}
	return j.encode(toJSONComparison(cmp))
}

// ReportAll writes a single document holding both the report and the ranking.
func (j *JSONReporter) ReportAll(report *Report, cmp *Comparison) error {
	if report == nil {
		return nil
	}
	if cmp == nil {
		cmp = Compare(report)
	}
	return j.encode(struct {
		Report     jsonReport     `json:"report"`
		Comparison jsonComparison `json:"comparison"`
	}{toJSONReport(report), toJSONComparison(cmp)})
}

var (
	_ Reporter = (*ConsoleReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
)
