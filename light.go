package stoplight

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

var (
	// ErrStarted is reported by Start if the light has already been started.
	ErrStarted = errors.New("light already started")

	// ErrStopped is reported by a light that has been stopped.
	ErrStopped = errors.New("light is stopped")
)

// A Light is a traffic signal that alternates between the Stop and Go phases
// at randomized intervals. A new light is in the Stop phase and does not
// change until Start is called.
//
// Any number of goroutines may concurrently read the phase with Current, or
// block until a particular phase with WaitFor. Only the light's own toggle
// loop changes the phase.
type Light struct {
	id      string
	log     logrus.FieldLogger
	clock   clockwork.Clock
	lo, hi  time.Duration // cycle duration bounds, lo <= hi
	quantum time.Duration
	seed    uint64

	phase   Value[Phase]
	updates *Handoff[Transition]
	done    chan struct{} // closed when the toggle loop exits

	μ       sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc // set by Start
}

// New constructs a new Light in the Stop phase with the given options.
// A nil *Options provides default settings.
func New(opts *Options) *Light {
	lo, hi := opts.cycleRange()
	id := opts.id()
	return &Light{
		id:      id,
		log:     opts.logger().WithField("light", id),
		clock:   opts.clock(),
		lo:      lo,
		hi:      hi,
		quantum: opts.quantum(),
		seed:    opts.seed(),
		updates: NewHandoff[Transition](),
		done:    make(chan struct{}),
	}
}

// ID returns the identifier of l.
func (l *Light) ID() string { return l.id }

// Start starts the toggle loop for l in a separate goroutine, and returns
// without waiting for it. Start may be called at most once; subsequent calls
// report ErrStarted, or ErrStopped if l has been stopped.
func (l *Light) Start() error {
	l.μ.Lock()
	defer l.μ.Unlock()
	if l.stopped {
		return ErrStopped
	} else if l.started {
		return ErrStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.started, l.cancel = true, cancel
	go l.run(ctx)

	l.log.WithFields(logrus.Fields{
		"min":     l.lo,
		"max":     l.hi,
		"quantum": l.quantum,
	}).Info("light started")
	return nil
}

// Stop halts the toggle loop and waits for it to exit. The phase remains at
// whatever value it had when the loop stopped, and goroutines blocked in
// WaitFor for a different phase are released with ErrStopped. If l was never
// started, Stop prevents it from starting. Stop reports ErrStopped if l was
// already stopped.
func (l *Light) Stop() error {
	l.μ.Lock()
	if l.stopped {
		l.μ.Unlock()
		<-l.done
		return ErrStopped
	}
	l.stopped = true
	if !l.started {
		close(l.done)
		l.μ.Unlock()
		return nil
	}
	l.cancel()
	l.μ.Unlock()

	<-l.done
	l.log.WithField("phase", l.Current()).Info("light stopped")
	return nil
}

// Done returns a channel that is closed once l has stopped.
func (l *Light) Done() <-chan struct{} { return l.done }

// Current returns the current phase of l. It does not block.
func (l *Light) Current() Phase { return l.phase.Get() }

// WaitFor blocks until the phase of l is target, and returns nil. If l is
// already in the target phase, WaitFor returns immediately. If ctx ends first,
// WaitFor returns the error that ended it; if l stops first, ErrStopped.
//
// All goroutines waiting for a phase are released by the transition to it.
func (l *Light) WaitFor(ctx context.Context, target Phase) error {
	_, err := l.phase.waitFor(ctx, l.done, ErrStopped, func(p Phase) bool { return p == target })
	return err
}

// WaitForGo is shorthand for l.WaitFor(ctx, Go).
func (l *Light) WaitForGo(ctx context.Context) error { return l.WaitFor(ctx, Go) }

// Updates returns a channel that delivers the most recent transition of l.
// Only the latest transition is buffered: A reader that falls behind misses
// the transitions that were replaced before it could receive them.
func (l *Light) Updates() <-chan Transition { return l.updates.Ready() }

// NextTransition blocks until a transition is available on Updates, or until
// ctx ends, and returns it.
func (l *Light) NextTransition(ctx context.Context) (Transition, error) { return l.updates.Recv(ctx) }

// run is the toggle loop. It exits when ctx ends.
func (l *Light) run(ctx context.Context) {
	defer close(l.done)

	seed := l.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>32|seed<<32))

	cycle := l.drawCycle(rng)
	last := l.clock.Now()
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.clock.After(l.quantum):
		}

		now := l.clock.Now()
		elapsed := now.Sub(last)
		if elapsed < cycle {
			continue
		}

		from, to := l.phase.Update(Phase.Other)
		seq++
		next := l.drawCycle(rng)
		tr := Transition{Seq: seq, From: from, To: to, At: now, Elapsed: elapsed, Next: next}
		l.updates.Send(tr)
		l.log.WithFields(logrus.Fields{
			"seq":     seq,
			"phase":   to,
			"elapsed": elapsed,
			"next":    next,
		}).Debug("phase changed")

		cycle, last = next, now
	}
}

// drawCycle returns a duration chosen uniformly from [l.lo, l.hi].
func (l *Light) drawCycle(rng *rand.Rand) time.Duration {
	return l.lo + time.Duration(rng.Int64N(int64(l.hi-l.lo)+1))
}
