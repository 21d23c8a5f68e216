package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
)

// ID identifies a KeyedElement for the lifetime of the model that created it.
// IDs are never reused.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses the decimal representation produced by ID.String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// MaxID is the largest representable ID. A generator seeded after it has no IDs left.
const MaxID = ID(math.MaxUint64)

// ErrIDSpaceExhausted is returned when a generator cannot hand out an ID greater than
// one it was seeded with.
var ErrIDSpaceExhausted = errors.New("id space exhausted")

// IDGenerator hands out strictly increasing IDs starting at 1.
// Safe for concurrent use.
type IDGenerator struct {
	mu   sync.Mutex
	next ID
}

// NewIDGenerator creates a generator whose first ID is 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{next: 1}
}

// Next returns a fresh ID.
func (g *IDGenerator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == 0 {
		g.next = 1
	}
	id := g.next
	g.next++
	return id
}

// Peek returns the ID that the next call to Next will return.
func (g *IDGenerator) Peek() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == 0 {
		return 1
	}
	return g.next
}

// SeedAfter guarantees that every future ID is greater than max.
// It never moves the generator backwards, and fails when max is MaxID.
func (g *IDGenerator) SeedAfter(max ID) error {
	if max == MaxID {
		return fmt.Errorf("%w: seeded after %s", ErrIDSpaceExhausted, max)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if max+1 > g.next {
		g.next = max + 1
	}
	return nil
}
