package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator{}.NewID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestSequenceGenerator(t *testing.T) {
	g := &SequenceGenerator{}
	assert.Equal(t, "1", g.NewID())
	assert.Equal(t, "2", g.NewID())
	assert.Equal(t, "3", g.NewID())
}

func TestTimestampGenerator_StrictlyIncreasingWithinSameMillisecond(t *testing.T) {
	frozen := time.UnixMilli(1756375200000)
	g := NewTimestampGenerator(func() time.Time { return frozen })

	assert.Equal(t, "1756375200000", g.NewID())
	assert.Equal(t, "1756375200001", g.NewID())
	assert.Equal(t, "1756375200002", g.NewID())
}

func TestTimestampGenerator_ClockGoingBackwards(t *testing.T) {
	ticks := []int64{2000, 1000, 3000}
	i := 0
	g := NewTimestampGenerator(func() time.Time {
		ms := ticks[i]
		i++
		return time.UnixMilli(ms)
	})

	assert.Equal(t, "2000", g.NewID())
	assert.Equal(t, "2001", g.NewID())
	assert.Equal(t, "3000", g.NewID())
}

func TestNewIDGenerator(t *testing.T) {
	for _, strategy := range []string{"", IDStrategyUUID, IDStrategySequence, IDStrategyTimestamp} {
		gen, err := NewIDGenerator(strategy)
		require.NoError(t, err, strategy)
		assert.NotEmpty(t, gen.NewID(), strategy)
	}

	_, err := NewIDGenerator("snowflake")
	assert.Error(t, err)
}
