// Package cliformat renders decision and streaming results for the
// amorsize CLI in the formats --format accepts: text (colorized,
// human-facing), json, yaml, table, and markdown.
package cliformat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/amorsize/amorsize/internal/decision"
	"github.com/amorsize/amorsize/internal/streaming"
)

// Format identifies a rendering mode.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, FormatJSON, FormatYAML, FormatTable, FormatMarkdown:
		return Format(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text, json, yaml, table, or markdown)", s)
	}
}

var (
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow, color.Bold)
	colorCyan   = color.New(color.FgCyan)
	colorDim    = color.New(color.Faint)
)

// Decision renders a decision.OptimizationResult in the requested format.
func Decision(result decision.OptimizationResult, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		return string(data), err
	case FormatYAML:
		data, err := yaml.Marshal(result)
		return string(data), err
	case FormatTable:
		return decisionTable(result), nil
	case FormatMarkdown:
		return decisionMarkdown(result), nil
	default:
		return decisionText(result), nil
	}
}

// Streaming renders a streaming.OptimizationResult in the requested
// format.
func Streaming(result streaming.OptimizationResult, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		return string(data), err
	case FormatYAML:
		data, err := yaml.Marshal(result)
		return string(data), err
	case FormatTable:
		return streamingTable(result), nil
	case FormatMarkdown:
		return streamingMarkdown(result), nil
	default:
		return streamingText(result), nil
	}
}

func decisionText(r decision.OptimizationResult) string {
	var sb strings.Builder
	if r.NumWorkers > 1 {
		colorGreen.Fprintf(&sb, "PARALLELIZE")
	} else {
		colorYellow.Fprintf(&sb, "SERIAL")
	}
	fmt.Fprintf(&sb, "  workers=%d chunk_size=%d speedup=%.2fx\n", r.NumWorkers, r.ChunkSize, r.EstimatedSpeedup)
	colorDim.Fprintf(&sb, "reason: %s\n", r.Reason)
	if r.CacheHit {
		colorCyan.Fprintf(&sb, "(served from cache)\n")
	}
	for _, w := range r.Warnings {
		colorYellow.Fprintf(&sb, "warning: %s\n", w)
	}
	return sb.String()
}

func streamingText(r streaming.OptimizationResult) string {
	var sb strings.Builder
	if r.NumWorkers > 1 {
		colorGreen.Fprintf(&sb, "PARALLELIZE")
	} else {
		colorYellow.Fprintf(&sb, "SERIAL")
	}
	order := "unordered"
	if r.UseOrdered {
		order = "ordered"
	}
	fmt.Fprintf(&sb, "  workers=%d chunk_size=%d buffer_size=%d delivery=%s speedup=%.2fx\n",
		r.NumWorkers, r.ChunkSize, r.BufferSize, order, r.EstimatedSpeedup)
	colorDim.Fprintf(&sb, "reason: %s\n", r.Reason)
	for _, w := range r.Warnings {
		colorYellow.Fprintf(&sb, "warning: %s\n", w)
	}
	return sb.String()
}

func decisionTable(r decision.OptimizationResult) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"field", "value"})
	t.AppendRow(table.Row{"workers", r.NumWorkers})
	t.AppendRow(table.Row{"chunk_size", r.ChunkSize})
	t.AppendRow(table.Row{"estimated_speedup", fmt.Sprintf("%.2fx", r.EstimatedSpeedup)})
	t.AppendRow(table.Row{"reason", r.Reason})
	t.AppendRow(table.Row{"cache_hit", r.CacheHit})
	t.AppendRow(table.Row{"warnings", strconv.Itoa(len(r.Warnings))})
	return t.Render()
}

func streamingTable(r streaming.OptimizationResult) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"field", "value"})
	t.AppendRow(table.Row{"workers", r.NumWorkers})
	t.AppendRow(table.Row{"chunk_size", r.ChunkSize})
	t.AppendRow(table.Row{"buffer_size", r.BufferSize})
	t.AppendRow(table.Row{"ordered", r.UseOrdered})
	t.AppendRow(table.Row{"estimated_speedup", fmt.Sprintf("%.2fx", r.EstimatedSpeedup)})
	t.AppendRow(table.Row{"reason", r.Reason})
	t.AppendRow(table.Row{"adaptive_chunking", r.AdaptiveChunkingEnabled})
	return t.Render()
}

func decisionMarkdown(r decision.OptimizationResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "| field | value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| workers | %d |\n", r.NumWorkers)
	fmt.Fprintf(&sb, "| chunk_size | %d |\n", r.ChunkSize)
	fmt.Fprintf(&sb, "| estimated_speedup | %.2fx |\n", r.EstimatedSpeedup)
	fmt.Fprintf(&sb, "| reason | %s |\n", r.Reason)
	fmt.Fprintf(&sb, "| cache_hit | %v |\n", r.CacheHit)
	return sb.String()
}

func streamingMarkdown(r streaming.OptimizationResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "| field | value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| workers | %d |\n", r.NumWorkers)
	fmt.Fprintf(&sb, "| chunk_size | %d |\n", r.ChunkSize)
	fmt.Fprintf(&sb, "| buffer_size | %d |\n", r.BufferSize)
	fmt.Fprintf(&sb, "| ordered | %v |\n", r.UseOrdered)
	fmt.Fprintf(&sb, "| estimated_speedup | %.2fx |\n", r.EstimatedSpeedup)
	fmt.Fprintf(&sb, "| reason | %s |\n", r.Reason)
	return sb.String()
}
