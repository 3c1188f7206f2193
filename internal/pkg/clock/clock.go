// Package clock abstracts the time source so deadline decisions can be
// tested without wall-clock sleeps.
package clock

import "time"

// Clock is the time source injected into the engine and the sweeper.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) *Ticker
	After(d time.Duration) <-chan time.Time
}

// Ticker delivers ticks on C. Call Stop when done.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. C is not closed.
func (t *Ticker) Stop() { t.stopFunc() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) NewTicker(d time.Duration) *Ticker {
	t := time.NewTicker(d)
	return &Ticker{C: t.C, stopFunc: t.Stop}
}
