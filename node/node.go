// Package node wires the motion detector and the button classifier to a
// sensor and a notification sink. A Node owns all per-process state: the
// polling task calls Tick (or Run) and the GPIO watcher calls Edge.
package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielliyk/Embedded-System-Labs/button"
	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/detector"
)

// Sensor reads one accelerometer sample in milli-g.
type Sensor interface {
	ReadAxes() (x, y, z int16, err error)
}

// Sink transmits single-byte notifications.
type Sink interface {
	Notify(ctx context.Context, code byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, code byte) error

func (f SinkFunc) Notify(ctx context.Context, code byte) error {
	return f(ctx, code)
}

// Multi fans a notification out to every sink. All sinks are tried; the
// errors are joined.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, code byte) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, code); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Source tells which path produced a Report.
type Source string

const (
	SourceMotion Source = "motion"
	SourceButton Source = "button"
)

// Report describes one notification sent by the node.
type Report struct {
	Seq      uint64        `json:"seq"`
	Time     time.Time     `json:"time"`
	Source   Source        `json:"source"`
	Code     byte          `json:"code"`
	Raw      [3]int16      `json:"raw"`
	Filtered float64       `json:"filtered"`
	State    string        `json:"state"`
	Press    string        `json:"press,omitempty"`
	Kind     button.Kind   `json:"-"`
	Motion   detector.Code `json:"-"`
}

// Observer receives every Report from the polling task. It must not block.
type Observer func(Report)

// Option configures a Node.
type Option func(n *Node)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Node) { n.log = config.Discard(l) }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(n *Node) { n.observers = append(n.observers, o) }
}

// Node owns the detector and button state for the lifetime of the process.
type Node struct {
	mu       sync.Mutex // guards det
	det      *detector.Detector
	btn      *button.Classifier
	sensor   Sensor
	sink     Sink
	codeBase uint8

	log       *slog.Logger
	observers []Observer
	now       func() time.Time

	period atomic.Int64
	seq    uint64
}

// New validates cfg and creates a Node.
func New(cfg config.Config, sensor Sensor, sink Sink, opts ...Option) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	det, err := detector.New(cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	btn, err := button.New(cfg.LongPress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	n := &Node{
		det:      det,
		btn:      btn,
		sensor:   sensor,
		sink:     sink,
		codeBase: cfg.ButtonCodeBase,
		log:      config.Discard(nil),
		now:      time.Now,
	}
	n.period.Store(int64(cfg.PollPeriod))
	for _, o := range opts {
		o(n)
	}
	return n, nil
}

// Edge is the interrupt-context entry point for button edges. It never
// calls the sink.
func (n *Node) Edge(pressed bool, now button.Tick) {
	n.btn.Edge(pressed, now)
}

// Tick runs one iteration of the polling task: forward any pending button
// press, then sample, classify and notify one motion byte. A failed sensor
// read skips the motion step. io.EOF from the sensor is returned.
func (n *Node) Tick(ctx context.Context) error {
	if kind := n.btn.Drain(); kind != button.None {
		code := n.codeBase + uint8(kind)
		n.log.Info("button press", "kind", kind.String(), "code", code)
		n.notify(ctx, code)
		n.mu.Lock()
		state := n.det.State()
		n.mu.Unlock()
		n.emit(Report{
			Source: SourceButton,
			Code:   code,
			State:  state.String(),
			Press:  kind.String(),
			Kind:   kind,
		})
	}

	x, y, z, err := n.sensor.ReadAxes()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		n.log.Debug("sensor read failed, skipping tick", "err", err)
		return nil
	}

	n.mu.Lock()
	code := n.det.Process(x, y, z, n.now())
	r := Report{
		Source:   SourceMotion,
		Code:     byte(code),
		Raw:      n.det.LatestRaw,
		Filtered: n.det.LatestFiltered,
		State:    n.det.State().String(),
		Motion:   code,
	}
	n.mu.Unlock()

	if code != detector.CodeIdle {
		n.log.Info("motion crossing", "code", code.String(), "filtered", r.Filtered)
	}
	n.notify(ctx, byte(code))
	n.emit(r)
	return nil
}

func (n *Node) notify(ctx context.Context, code byte) {
	if err := n.sink.Notify(ctx, code); err != nil {
		n.log.Warn("notification dropped", "code", code, "err", err)
	}
}

func (n *Node) emit(r Report) {
	n.seq++
	r.Seq = n.seq
	r.Time = n.now()
	for _, o := range n.observers {
		o(r)
	}
}

// Run calls Tick every poll period until ctx is cancelled or the sensor
// reports io.EOF.
func (n *Node) Run(ctx context.Context) error {
	period := n.PollPeriod()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := n.Tick(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if p := n.PollPeriod(); p != period {
			period = p
			ticker.Reset(period)
			n.log.Info("poll period changed", "period", period)
		}
	}
}

// PollPeriod returns the current polling period.
func (n *Node) PollPeriod() time.Duration {
	return time.Duration(n.period.Load())
}

// SetPollPeriod changes the polling period from any goroutine.
func (n *Node) SetPollPeriod(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: poll period must be positive", config.ErrInvalidConfig)
	}
	n.period.Store(int64(d))
	return nil
}

// Snapshot returns a copy of the detector history. It is safe to call
// from any goroutine.
func (n *Node) Snapshot() detector.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.det.Snapshot()
}
