package stoplight

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Default timing parameters for a Light.
const (
	DefaultMinCycle = 4 * time.Second
	DefaultMaxCycle = 6 * time.Second
	DefaultQuantum  = time.Millisecond
)

// Options are optional settings for a Light. A nil *Options is ready for use
// and provides default values as described.
type Options struct {
	// ID names the light in log output. If empty, a random UUID is used.
	ID string

	// MinCycle and MaxCycle bound the duration of each phase. Each duration is
	// drawn uniformly at random from [MinCycle, MaxCycle]. Zero values default
	// to DefaultMinCycle and DefaultMaxCycle. A MaxCycle less than MinCycle is
	// treated as equal to MinCycle.
	MinCycle time.Duration
	MaxCycle time.Duration

	// Quantum is how long the toggle loop sleeps between checks of the elapsed
	// time. It bounds how late a transition can be. If zero, DefaultQuantum.
	Quantum time.Duration

	// Seed seeds the random source used to draw cycle durations. If zero, the
	// light uses a randomly-chosen seed.
	Seed uint64

	// Clock is the time source for the toggle loop. If nil, the system clock.
	Clock clockwork.Clock

	// Logger receives lifecycle and transition logs. If nil, logs are
	// discarded.
	Logger logrus.FieldLogger
}

func (o *Options) id() string {
	if o == nil || o.ID == "" {
		return uuid.NewString()
	}
	return o.ID
}

func (o *Options) cycleRange() (lo, hi time.Duration) {
	lo, hi = DefaultMinCycle, DefaultMaxCycle
	if o != nil && o.MinCycle > 0 {
		lo = o.MinCycle
	}
	if o != nil && o.MaxCycle > 0 {
		hi = o.MaxCycle
	}
	return lo, max(lo, hi)
}

func (o *Options) quantum() time.Duration {
	if o == nil || o.Quantum <= 0 {
		return DefaultQuantum
	}
	return o.Quantum
}

func (o *Options) seed() uint64 {
	if o == nil {
		return 0
	}
	return o.Seed
}

func (o *Options) clock() clockwork.Clock {
	if o == nil || o.Clock == nil {
		return clockwork.NewRealClock()
	}
	return o.Clock
}

func (o *Options) logger() logrus.FieldLogger {
	if o == nil || o.Logger == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		return log
	}
	return o.Logger
}
