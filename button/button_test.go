package button

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(LongPress)
	require.NoError(t, err)
	return c
}

func TestNewRejectsNonPositiveLongPress(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Millisecond, -time.Second} {
		c, err := New(d)
		require.ErrorIs(t, err, ErrInvalidLongPress, "long press: %v", d)
		require.Nil(t, c)
	}

	c, err := New(time.Millisecond)
	require.NoError(t, err)
	c.Edge(true, 0)
	require.Equal(t, Long, c.Edge(false, 1))
}

func TestClassifierBoundary(t *testing.T) {
	tests := []struct {
		held time.Duration
		kind Kind
	}{
		{0, Short},
		{999 * time.Millisecond, Short},
		{1000 * time.Millisecond, Long},
		{5 * time.Second, Long},
	}

	for _, test := range tests {
		c := newClassifier(t)
		require.Equal(t, None, c.Edge(true, 100))
		require.Equal(t, None, c.Drain(), "no result while held")

		release := Tick(100 + test.held.Milliseconds())
		require.Equal(t, test.kind, c.Edge(false, release), "held: %v", test.held)
		require.Equal(t, test.kind, c.Drain())
		require.Equal(t, None, c.Drain(), "drain clears the mailbox")
	}
}

func TestClassifierWraparound(t *testing.T) {
	c := newClassifier(t)
	start := Tick(0xFFFFFF00)
	c.Edge(true, start)
	require.Equal(t, Long, c.Edge(false, start+1000))

	c.Edge(true, start)
	require.Equal(t, Short, c.Edge(false, start+999))
}

func TestClassifierIgnoresRepeatedEdges(t *testing.T) {
	c := newClassifier(t)
	require.Equal(t, None, c.Edge(false, 10), "release while released")
	require.Equal(t, None, c.Drain())

	c.Edge(true, 100)
	require.Equal(t, None, c.Edge(true, 900), "second press must not restart the timer")
	require.Equal(t, Long, c.Edge(false, 1100))
	require.Equal(t, None, c.Edge(false, 1200))
	require.Equal(t, Long, c.Drain())
}

func TestClassifierMailboxOverwrite(t *testing.T) {
	c := newClassifier(t)
	c.Edge(true, 0)
	c.Edge(false, 2000)
	c.Edge(true, 3000)
	c.Edge(false, 3100)

	require.Equal(t, Short, c.Drain())
	require.Equal(t, None, c.Drain())
}

func TestClassifierConcurrentDrain(t *testing.T) {
	c := newClassifier(t)
	var wg sync.WaitGroup
	got := make(chan Kind, 1000)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 500 {
			base := Tick(i * 10)
			c.Edge(true, base)
			c.Edge(false, base+1)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 2000 {
			if k := c.Drain(); k != None {
				got <- k
			}
		}
	}()

	wg.Wait()
	<-done
	if k := c.Drain(); k != None {
		got <- k
	}
	close(got)
	for k := range got {
		require.Equal(t, Short, k)
	}
}

func TestKindString(t *testing.T) {
	require.Equal(t, "short", Short.String())
	require.Equal(t, "long", Long.String())
	require.Equal(t, "kind(7)", Kind(7).String())
}

func TestWatchPin(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO17", Num: 17, EdgesChan: make(chan gpio.Level)}
	require.NoError(t, pin.In(gpio.PullUp, gpio.BothEdges))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tick Tick
	clock := func() Tick {
		tick += 600
		return tick
	}
	c := newClassifier(t)
	kinds := make(chan Kind, 4)

	errCh := make(chan error, 1)
	go func() {
		errCh <- WatchPin(ctx, pin, clock, func(pressed bool, now Tick) {
			if k := c.Edge(pressed, now); k != None {
				kinds <- k
			}
		})
	}()

	pin.EdgesChan <- gpio.Low
	pin.EdgesChan <- gpio.High
	require.Equal(t, Short, <-kinds)

	pin.EdgesChan <- gpio.Low
	pin.EdgesChan <- gpio.Low
	pin.EdgesChan <- gpio.High
	require.Equal(t, Long, <-kinds)

	cancel()
	require.NoError(t, <-errCh)
}
