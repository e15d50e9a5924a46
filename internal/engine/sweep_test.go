package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aitp-mods/answerbot/internal/config"
	"github.com/aitp-mods/answerbot/internal/store"
)

func TestSweepRecord(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.Defaults()
	cfg.RemovalDelay = 10 * time.Minute
	cfg.PruneAge = 24 * time.Hour

	tests := []struct {
		name   string
		age    time.Duration
		record store.PostRecord
		want   SweepDecision
	}{
		{
			name: "young record untouched",
			age:  5 * time.Minute,
			want: SweepDecision{},
		},
		{
			name: "removal exactly at the delay",
			age:  10 * time.Minute,
			want: SweepDecision{Remove: true},
		},
		{
			name:   "already removed is not removed again",
			age:    20 * time.Minute,
			record: store.PostRecord{Removed: true},
			want:   SweepDecision{},
		},
		{
			name: "prune at the age bound",
			age:  24 * time.Hour,
			want: SweepDecision{Remove: true, Prune: true},
		},
		{
			name:   "prune regardless of flags",
			age:    25 * time.Hour,
			record: store.PostRecord{Prompted: true, Removed: true, Replied: true},
			want:   SweepDecision{Prune: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.record
			rec.CreatedAt = now.Add(-tt.age)

			assert.Equal(t, tt.want, SweepRecord(rec, cfg, now))
		})
	}
}

// The shipped zero removal delay removes on the first sweep after
// admission.
func TestSweepRecord_ZeroDelay(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := store.PostRecord{CreatedAt: now}

	d := SweepRecord(rec, config.Defaults(), now)

	assert.True(t, d.Remove)
	assert.False(t, d.Prune)
}
