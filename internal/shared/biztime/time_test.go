package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	c := NewFakeClock(start)

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, c.Now().Equal(start))

	c.Advance(90 * time.Second)
	assert.True(t, c.Now().Equal(start.Add(90*time.Second)))

	c.Set(start)
	assert.True(t, c.Now().Equal(start))
}

func TestSystemClock_UTC(t *testing.T) {
	assert.Equal(t, time.UTC, SystemClock().Now().Location())
}

func TestToUTC(t *testing.T) {
	assert.Nil(t, ToUTC(nil))

	local := time.Date(2025, 3, 1, 8, 0, 0, 0, time.FixedZone("X", 2*3600))
	got := ToUTC(&local)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local))
}
