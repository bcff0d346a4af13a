package stoplight_test

import (
	"errors"
	"io"
	"testing"

	"github.com/creachadair/stoplight"
	"github.com/spf13/pflag"
)

func TestPhase(t *testing.T) {
	if got := stoplight.Stop.Other(); got != stoplight.Go {
		t.Errorf("Stop.Other: got %v, want %v", got, stoplight.Go)
	}
	if got := stoplight.Go.Other(); got != stoplight.Stop {
		t.Errorf("Go.Other: got %v, want %v", got, stoplight.Stop)
	}

	var zero stoplight.Phase
	if zero != stoplight.Stop {
		t.Errorf("Zero phase: got %v, want %v", zero, stoplight.Stop)
	}
	if got, want := stoplight.Phase(5).String(), "Phase(5)"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		input string
		want  stoplight.Phase
	}{
		{"stop", stoplight.Stop},
		{"RED", stoplight.Stop},
		{" go ", stoplight.Go},
		{"Green", stoplight.Go},
	}
	for _, tc := range tests {
		got, err := stoplight.ParsePhase(tc.input)
		if err != nil {
			t.Errorf("ParsePhase(%q): unexpected error: %v", tc.input, err)
		} else if got != tc.want {
			t.Errorf("ParsePhase(%q): got %v, want %v", tc.input, got, tc.want)
		}
		if rt, err := stoplight.ParsePhase(got.String()); err != nil || rt != got {
			t.Errorf("ParsePhase(%q): got %v, %v; want %v, nil", got.String(), rt, err, got)
		}
	}

	for _, bad := range []string{"", "amber", "gogo"} {
		if got, err := stoplight.ParsePhase(bad); !errors.Is(err, stoplight.ErrInvalidPhase) {
			t.Errorf("ParsePhase(%q): got %v, %v; want %v", bad, got, err, stoplight.ErrInvalidPhase)
		}
	}
}

func TestPhase_Flag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var p stoplight.Phase
	fs.Var(&p, "phase", "target phase")

	if err := fs.Parse([]string{"--phase", "green"}); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if p != stoplight.Go {
		t.Errorf("Flag value: got %v, want %v", p, stoplight.Go)
	}
	if err := fs.Parse([]string{"--phase", "purple"}); err == nil {
		t.Error("Parse: got nil, want error")
	}
}
