package memory

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Id strategies accepted by NewIDGenerator.
const (
	IDStrategyUUID      = "uuid"
	IDStrategySequence  = "sequence"
	IDStrategyTimestamp = "timestamp"
)

// IDGenerator produces candidate ids. The store still rejects any id it has
// already handed out, so a generator only needs to be unlikely to repeat.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator returns random v4 uuids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator returns "1", "2", "3", ... and is safe for concurrent use.
type SequenceGenerator struct {
	last atomic.Uint64
}

func (g *SequenceGenerator) NewID() string {
	return strconv.FormatUint(g.last.Add(1), 10)
}

// TimestampGenerator returns the wall clock in milliseconds as a decimal
// string, bumped by one whenever the clock has not advanced since the last
// id so that two calls in the same millisecond still differ.
type TimestampGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewTimestampGenerator uses now as its clock, or time.Now when nil.
func NewTimestampGenerator(now func() time.Time) *TimestampGenerator {
	if now == nil {
		now = time.Now
	}
	return &TimestampGenerator{now: now}
}

func (g *TimestampGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// NewIDGenerator maps a configured strategy name to a generator.
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case "", IDStrategyUUID:
		return UUIDGenerator{}, nil
	case IDStrategySequence:
		return &SequenceGenerator{}, nil
	case IDStrategyTimestamp:
		return NewTimestampGenerator(nil), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
