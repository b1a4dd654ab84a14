package target

import (
	"sync"
	"time"
)

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerSettings configures a target's breaker. A zero threshold disables it.
type BreakerSettings struct {
	Threshold int
	Cooldown  time.Duration
}

type breaker struct {
	mutex    sync.Mutex
	settings BreakerSettings
	now      func() time.Time

	state       BreakerState
	failures    int
	lastFailure time.Time
	probing     bool
}

func newBreaker(settings BreakerSettings, now func() time.Time) *breaker {
	if now == nil {
		now = time.Now
	}
	return &breaker{settings: settings, now: now}
}

// ready reports whether a request may be sent without changing state.
func (b *breaker) ready() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	switch b.state {
	case BreakerOpen:
		return b.now().Sub(b.lastFailure) >= b.settings.Cooldown
	case BreakerHalfOpen:
		return !b.probing
	default:
		return true
	}
}

// begin marks a request as sent; out of OPEN it becomes the half-open probe.
func (b *breaker) begin() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) >= b.settings.Cooldown {
			b.state = BreakerHalfOpen
			b.probing = true
		}
	case BreakerHalfOpen:
		b.probing = true
	}
}

func (b *breaker) success() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.failures = 0
	b.probing = false
	b.state = BreakerClosed
}

func (b *breaker) failure() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.failures++
	b.lastFailure = b.now()
	b.probing = false

	if b.settings.Threshold <= 0 {
		return
	}

	if b.state == BreakerHalfOpen || b.failures >= b.settings.Threshold {
		b.state = BreakerOpen
	}
}

func (b *breaker) current() BreakerState {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.state
}
