// Package stoplight implements a traffic signal that toggles between two
// phases on its own goroutine, along with the concurrency primitives it is
// built from.
//
// A [Light] alternates between [Stop] and [Go] at intervals drawn at random
// from a configured range. Other goroutines can read the current phase with
// [Light.Current], or block until a phase begins with [Light.WaitFor]:
//
//	l := stoplight.New(nil)
//	if err := l.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer l.Stop()
//
//	if err := l.WaitForGo(ctx); err != nil {
//		log.Fatal(err)
//	}
//	// ... proceed ...
//
// A [Handoff] is a single-slot channel in which each send replaces any value
// not yet received. A [Value] is a shared variable whose writes wake any
// goroutines waiting for it to change.
package stoplight
