package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLoginThrottle_EvictsIdleEmails(t *testing.T) {
	th := newLoginThrottleTTL(rate.Every(time.Hour), 1, 20*time.Millisecond)

	require.True(t, th.allow("idle@demo.com"))
	require.False(t, th.allow("IDLE@demo.com"))
	assert.Len(t, th.limiters.Items(), 1)

	assert.Eventually(t, func() bool {
		return len(th.limiters.Items()) == 0
	}, time.Second, 10*time.Millisecond)

	// an evicted address starts again with a full bucket
	assert.True(t, th.allow("idle@demo.com"))
}

func TestLoginThrottle_BoundedByActivity(t *testing.T) {
	th := newLoginThrottleTTL(rate.Limit(1), 5, 20*time.Millisecond)

	for i := 0; i < 1000; i++ {
		th.allow(fmt.Sprintf("user%d@demo.com", i))
	}
	assert.Eventually(t, func() bool {
		th.limiters.DeleteExpired()
		return th.limiters.ItemCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestLoginThrottle_ActiveEmailIsKept(t *testing.T) {
	th := newLoginThrottleTTL(rate.Every(time.Hour), 2, 50*time.Millisecond)

	require.True(t, th.allow("busy@demo.com"))
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		th.allow("busy@demo.com")
	}
	// attempts keep refreshing the entry, so the spent bucket is not reset
	assert.False(t, th.allow("busy@demo.com"))
}

func TestIdleTTL(t *testing.T) {
	assert.InDelta(t, (15 * time.Minute).Seconds(), idleTTL(rate.Every(time.Minute), 5).Seconds(), 0.001)
	assert.Equal(t, minIdleTTL, idleTTL(rate.Limit(1000), 1))
	assert.Equal(t, minIdleTTL, idleTTL(rate.Inf, 1))
	assert.Equal(t, minIdleTTL, idleTTL(0, 1))
}
