package cliformat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amorsize/amorsize/internal/decision"
	"github.com/amorsize/amorsize/internal/streaming"
)

func TestParseFormat_AcceptsKnownValues(t *testing.T) {
	for _, in := range []string{"text", "JSON", "yaml", "Table", "markdown"} {
		f, err := ParseFormat(in)
		require.NoError(t, err)
		assert.NotEmpty(t, f)
	}
}

func TestParseFormat_RejectsUnknownValue(t *testing.T) {
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDecision_JSONOmitsRemainingData(t *testing.T) {
	result := decision.OptimizationResult{
		NumWorkers:       4,
		ChunkSize:        10,
		Reason:           "parallelization beneficial",
		EstimatedSpeedup: 2.5,
		Remaining:        []interface{}{1, 2, 3},
	}
	out, err := Decision(result, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, out, "\"num_workers\": 4")
	assert.NotContains(t, out, "Remaining")
}

func TestDecision_TextHighlightsParallelizeVsSerial(t *testing.T) {
	parallel := decision.OptimizationResult{NumWorkers: 4, Reason: "fast"}
	serial := decision.OptimizationResult{NumWorkers: 1, Reason: "too fast"}

	parallelOut, err := Decision(parallel, FormatText)
	require.NoError(t, err)
	serialOut, err := Decision(serial, FormatText)
	require.NoError(t, err)

	assert.True(t, strings.Contains(parallelOut, "PARALLELIZE"))
	assert.True(t, strings.Contains(serialOut, "SERIAL"))
}

func TestDecision_TableRendersAllFields(t *testing.T) {
	result := decision.OptimizationResult{NumWorkers: 2, ChunkSize: 5, EstimatedSpeedup: 1.5, Reason: "ok"}
	out, err := Decision(result, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "workers")
	assert.Contains(t, out, "chunk_size")
}

func TestStreaming_MarkdownRendersDeliveryOrder(t *testing.T) {
	result := streaming.OptimizationResult{NumWorkers: 3, UseOrdered: false, Reason: "unordered faster"}
	out, err := Streaming(result, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, out, "| workers | 3 |")
	assert.Contains(t, out, "| ordered | false |")
}

func TestStreaming_YAMLRoundTripsWorkerCount(t *testing.T) {
	result := streaming.OptimizationResult{NumWorkers: 6, ChunkSize: 7, Reason: "fine"}
	out, err := Streaming(result, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "num_workers: 6")
}
