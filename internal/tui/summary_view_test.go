package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jekabs-s/urlookup/internal/engine"
	"github.com/jekabs-s/urlookup/internal/engine/batch"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{18248, "18,248"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(engine.Summary{
		Names: 12345, Matched: 12000, NoRecords: 40, Exhausted: 300, Rejected: 45, Records: 15000,
	}, 1500*time.Millisecond, "entity_ur_data.xlsx")

	for _, want := range []string{
		"LOOKUP SUMMARY", "12,345", "12,000", "40 without records", "300", "45", "15,000", "1.5s",
		"Written to entity_ur_data.xlsx",
	} {
		assert.Contains(t, out, want)
	}

	noOutput := RenderSummary(engine.Summary{}, 0, "")
	assert.NotContains(t, noOutput, "Written to")
}

func TestRenderFailures(t *testing.T) {
	assert.Empty(t, RenderFailures(nil, 0))

	failures := []engine.NameResult{
		{Name: "Down Ltd", Outcome: engine.OutcomeExhausted, Reason: "connection reset"},
		{Name: "Gone SIA", Outcome: engine.OutcomeRejected, Reason: "unexpected status: 503"},
		{Name: "Third", Outcome: engine.OutcomeExhausted},
	}

	out := RenderFailures(failures, 0)
	assert.Contains(t, out, "FAILED LOOKUPS")
	assert.Contains(t, out, "exhausted")
	assert.Contains(t, out, "Down Ltd - connection reset")
	assert.Contains(t, out, "rejected")
	assert.Contains(t, out, "Third")

	limited := RenderFailures(failures, 2)
	assert.NotContains(t, limited, "Third")
	assert.Contains(t, limited, "... and 1 more")
	assert.Len(t, strings.Split(limited, "\n"), 4)
}

func TestRenderProgress(t *testing.T) {
	out := RenderProgress(batch.ProgressSnapshot{
		TotalItems: 2000, ProcessedItems: 1000, TotalShards: 8, ProcessedShards: 4,
		PercentComplete: 50, ElapsedTime: 3 * time.Second, Remaining: 3 * time.Second,
	})
	assert.Equal(t, "shard 4/8 done, 1,000/2,000 names (50.0%), 3s elapsed, ~3s left", out)

	done := RenderProgress(batch.ProgressSnapshot{
		TotalItems: 2000, ProcessedItems: 2000, TotalShards: 8, ProcessedShards: 8,
		PercentComplete: 100, ElapsedTime: 6 * time.Second,
	})
	assert.Equal(t, "shard 8/8 done, 2,000/2,000 names (100.0%), 6s elapsed", done)
}
