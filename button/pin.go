package button

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// edgePoll bounds how long WatchPin blocks before checking for cancellation.
const edgePoll = 100 * time.Millisecond

// EdgeFunc receives one debounced edge: pressed is true when the pin went
// active (low).
type EdgeFunc func(pressed bool, now Tick)

// Clock returns the current tick.
type Clock func() Tick

// MonotonicClock returns a Clock counting milliseconds since start.
// The counter wraps after about 49 days, like a hardware tick counter.
func MonotonicClock(start time.Time) Clock {
	return func() Tick {
		return Tick(uint32(time.Since(start).Milliseconds()))
	}
}

// OpenPin initialises the host drivers and configures the named GPIO as
// an active-low input with a pull-up, interrupting on both edges.
func OpenPin(name string) (gpio.PinIn, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: could not initialize host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("button: no GPIO named %q", name)
	}
	if err := p.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("button: could not configure %s: %w", name, err)
	}
	return p, nil
}

// WatchPin blocks delivering edges of pin to fn until ctx is cancelled.
func WatchPin(ctx context.Context, pin gpio.PinIn, clock Clock, fn EdgeFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !pin.WaitForEdge(edgePoll) {
			continue
		}
		fn(pin.Read() == gpio.Low, clock())
	}
}
