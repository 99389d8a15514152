package dynamo

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Heights is a snapshot of the sample chain, index 0 at the left edge.
type Heights []float64

func (h Heights) Clone() Heights {
	c := make(Heights, len(h))
	copy(c, h)
	return c
}

func (h Heights) IsValid() bool {
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (h Heights) Sum() float64 {
	sum := 0.0
	for _, v := range h {
		sum += v
	}
	return sum
}

// Configurable is implemented by anything with named runtime knobs.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Clock supplies wall time to the interaction layer. Tests swap in a
// ManualClock so the active window can be driven deterministically.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
