// Package button classifies push-button presses by duration.
//
// Edge is meant to run in interrupt context (a GPIO watcher goroutine):
// it is O(1), never blocks and only records the classification in a
// single-slot mailbox. A polling task calls Drain to pick the result up.
package button

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Kind is the classification of a completed press.
type Kind uint8

const (
	None  Kind = 0
	Short Kind = 1
	Long  Kind = 2
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Short:
		return "short"
	case Long:
		return "long"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// LongPress is the default minimum duration of a long press.
const LongPress = 1000 * time.Millisecond

// ErrInvalidLongPress is returned by New for a non-positive long-press
// duration.
var ErrInvalidLongPress = errors.New("long-press duration must be positive")

// Tick is a millisecond timestamp from a free-running counter that may wrap.
type Tick uint32

// Since returns the elapsed time from start to t, correct across one wrap
// of the counter.
func (t Tick) Since(start Tick) time.Duration {
	return time.Duration(uint32(t)-uint32(start)) * time.Millisecond
}

type state uint8

const (
	released state = iota
	pressed
)

// Classifier turns press/release edges into short or long presses.
// Edge must be called from a single goroutine; Drain may be called
// concurrently from another.
type Classifier struct {
	longPress time.Duration

	// owned by the edge context
	state      state
	pressStart Tick

	pending atomic.Uint32
}

// New creates a released Classifier. A press lasting at least longPress
// is classified as Long.
func New(longPress time.Duration) (*Classifier, error) {
	if longPress <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidLongPress, longPress)
	}
	return &Classifier{longPress: longPress}, nil
}

// Edge handles one GPIO edge. Edges that do not change the state are
// ignored. It returns the kind recorded for this edge, or None.
func (c *Classifier) Edge(isPressed bool, now Tick) Kind {
	switch {
	case isPressed && c.state == released:
		c.pressStart = now
		c.state = pressed
	case !isPressed && c.state == pressed:
		c.state = released
		kind := Short
		if now.Since(c.pressStart) >= c.longPress {
			kind = Long
		}
		c.pending.Store(uint32(kind))
		return kind
	}
	return None
}

// Drain returns the pending classification and clears it. An undrained
// result is overwritten by the next completed press.
func (c *Classifier) Drain() Kind {
	return Kind(c.pending.Swap(uint32(None)))
}
