package connection

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

const statsWindow = 6

// Stats keeps the durations of the most recent connection attempts.
type Stats struct {
	mu      sync.Mutex
	samples []time.Duration
}

func NewStats() *Stats {
	return &Stats{samples: make([]time.Duration, 0, statsWindow)}
}

// Record appends d, evicting the oldest sample when the window is full, and
// returns the new average.
func (s *Stats) Record(d time.Duration) mo.Option[time.Duration] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.samples) == statsWindow {
		s.samples = slices.Delete(s.samples, 0, 1)
	}
	s.samples = append(s.samples, d)

	return average(s.samples)
}

func (s *Stats) Average() mo.Option[time.Duration] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return average(s.samples)
}

func (s *Stats) Samples() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.samples)
}

func average(samples []time.Duration) mo.Option[time.Duration] {
	if len(samples) == 0 {
		return mo.None[time.Duration]()
	}

	return mo.Some(lo.Sum(samples) / time.Duration(len(samples)))
}

// ReconnectDelay is the pause before the next attempt: what is left of window
// after the average attempt duration, never negative.
func ReconnectDelay(window time.Duration, avg mo.Option[time.Duration]) time.Duration {
	return max(0, window-avg.OrElse(0))
}
