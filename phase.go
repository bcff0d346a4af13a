package stoplight

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creachadair/mds/value"
)

// ErrInvalidPhase is reported by ParsePhase for an unrecognized phase name.
var ErrInvalidPhase = errors.New("invalid phase")

// A Phase is one of the two states of a Light.
type Phase int

const (
	Stop Phase = iota // traffic must wait; the initial phase
	Go                // traffic may proceed
)

// Other returns the phase that follows p.
func (p Phase) Other() Phase { return value.Cond(p == Stop, Go, Stop) }

func (p Phase) String() string {
	switch p {
	case Stop:
		return "stop"
	case Go:
		return "go"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ParsePhase parses the name of a phase. It accepts "stop" or "red" for Stop,
// and "go" or "green" for Go, without regard to case.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop", "red":
		return Stop, nil
	case "go", "green":
		return Go, nil
	}
	return Stop, fmt.Errorf("%w: %q", ErrInvalidPhase, s)
}

// Set implements the flag.Value interface.
func (p *Phase) Set(s string) error {
	v, err := ParsePhase(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Type implements the pflag.Value interface.
func (*Phase) Type() string { return "phase" }

// A Transition records a single change of phase by a Light.
type Transition struct {
	Seq     uint64        // 1 for the first transition of a light, and so on
	From    Phase         // the phase that ended
	To      Phase         // the phase that began
	At      time.Time     // when the change took effect
	Elapsed time.Duration // how long From was in effect
	Next    time.Duration // the cycle duration drawn for To
}

func (t Transition) String() string {
	return fmt.Sprintf("#%d %v→%v after %v (next %v)", t.Seq, t.From, t.To, t.Elapsed, t.Next)
}
