package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	cancelled := now.Add(-time.Minute)

	tests := []struct {
		name        string
		claimed     bool
		cancelledAt *time.Time
		expiresAt   time.Time
		want        Status
	}{
		{"fresh", false, nil, future, StatusActive},
		{"at exact expiry still active", false, nil, now, StatusActive},
		{"past expiry", false, nil, past, StatusExpired},
		{"claimed wins over expiry", true, nil, past, StatusClaimed},
		{"claimed wins over cancel", true, &cancelled, future, StatusClaimed},
		{"cancelled wins over expiry", false, &cancelled, past, StatusCancelled},
		{"cancelled before expiry", false, &cancelled, future, StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.claimed, tt.cancelledAt, tt.expiresAt, now)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusActive.IsRedeemable())
	assert.False(t, StatusClaimed.IsRedeemable())
	assert.False(t, StatusClaimed.IsFinal())
	assert.True(t, StatusCancelled.IsFinal())
	assert.True(t, StatusExpired.IsFinal())
	assert.False(t, Status("PENDING").IsValid())
}
