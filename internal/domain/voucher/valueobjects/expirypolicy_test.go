package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveExpiry(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		want   time.Duration
	}{
		{"", "24h", 24 * time.Hour},
		{"bogus", "24h", 24 * time.Hour},
		{"15m", "15m", 15 * time.Minute},
		{"1h", "1h", time.Hour},
		{"7d", "7d", 7 * 24 * time.Hour},
		{"6mo", "6mo", 180 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := ResolveExpiry(tt.in)
			assert.Equal(t, tt.wantID, p.ID)
			assert.Equal(t, tt.want, p.Duration)
			assert.Equal(t, int64(tt.want/time.Second), p.Seconds)
		})
	}
}

func TestResolveExpiryWithDefault(t *testing.T) {
	assert.Equal(t, "7d", ResolveExpiryWithDefault("", "7d").ID)
	assert.Equal(t, "72h", ResolveExpiryWithDefault("72h", "7d").ID)
	assert.Equal(t, DefaultExpiryID, ResolveExpiryWithDefault("", "nope").ID)
}

func TestVisiblePresets(t *testing.T) {
	visible := VisiblePresets()
	assert.Len(t, visible, len(ExpiryPresets())-2)
	for _, p := range visible {
		assert.False(t, p.Legacy, p.ID)
	}
	assert.Equal(t, "24h", visible[0].ID)
	assert.Equal(t, "6mo", visible[len(visible)-1].ID)
}

func TestExpiryPresets_ReturnsCopy(t *testing.T) {
	all := ExpiryPresets()
	all[0].ID = "mutated"
	assert.Equal(t, "15m", ExpiryPresets()[0].ID)
}
