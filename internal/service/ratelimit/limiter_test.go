package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowIsPerKey(t *testing.T) {
	l := New(time.Hour, 2)

	assert.True(t, l.Allow("fred"))
	assert.True(t, l.Allow("fred"))
	assert.False(t, l.Allow("fred"))
	assert.True(t, l.Allow("yahoo"))
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(time.Hour, 1)
	assert.NoError(t, l.Wait(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "k"))
}

func TestUnlimited(t *testing.T) {
	l := PerSecond(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("k"))
	}
}
