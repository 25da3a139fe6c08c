package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheIgnoresEmptyBatches(t *testing.T) {
	c := NewCache()
	if _, ok := c.Latest(); ok {
		t.Fatalf("expected empty cache")
	}

	now := time.Date(2019, 12, 12, 6, 0, 0, 0, time.UTC)
	good := Batch{Samples: []Sample{{Temperature: -3, Timestamp: now}}, FetchedAt: now}
	assert.True(t, c.Update(good))
	assert.False(t, c.Update(Batch{FetchedAt: now.Add(time.Minute)}))

	got, ok := c.Latest()
	assert.True(t, ok)
	assert.Equal(t, good, got)
}
