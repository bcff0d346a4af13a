package stoplight_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/creachadair/stoplight"
	"github.com/jonboulle/clockwork"
)

func ExampleLight() {
	// A fake clock makes the timing deterministic; omit Clock to use the
	// system clock.
	clk := clockwork.NewFakeClock()
	l := stoplight.New(&stoplight.Options{
		MinCycle: time.Second,
		MaxCycle: time.Second,
		Clock:    clk,
	})
	if err := l.Start(); err != nil {
		log.Fatalf("Start: %v", err)
	}
	defer l.Stop()

	ctx := context.Background()
	fmt.Println("phase:", l.Current())

	// Let the light run through its first cycle.
	if err := clk.BlockUntilContext(ctx, 1); err != nil {
		log.Fatalf("BlockUntil: %v", err)
	}
	clk.Advance(time.Second)

	// Use WaitForGo to block until the light changes to go.
	if err := l.WaitForGo(ctx); err != nil {
		log.Fatalf("WaitForGo: %v", err)
	}
	fmt.Println("phase:", l.Current())

	// Each transition is also reported on the Updates channel.
	fmt.Println(<-l.Updates())

	// Output:
	// phase: stop
	// phase: go
	// #1 stop→go after 1s (next 1s)
}

func ExampleHandoff() {
	h := stoplight.NewHandoff[string]()

	// Sending does not block. A value that has not been received when the
	// next one is sent is discarded.
	fmt.Println("discarded:", h.Send("apple"))
	fmt.Println("discarded:", h.Send("pear"))

	// The receiver sees only the latest value.
	fmt.Println(<-h.Ready())

	// Output:
	// discarded: false
	// discarded: true
	// pear
}
