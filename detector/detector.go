// Package detector implements up/down motion gesture detection on a single
// accelerometer axis: a raw sample ring, a two-tap weighted moving average
// and a hysteresis threshold classifier.
package detector

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// RingCapacity is the default number of raw samples kept per axis.
const RingCapacity = 64

// maxEvents bounds the crossing history.
const maxEvents = 500

// historyLen is the number of filtered values kept for display.
const historyLen = 120

// ErrInvalidConfig is returned by the constructors for tuning they cannot
// run with.
var ErrInvalidConfig = errors.New("invalid detector config")

// Event records a threshold crossing.
type Event struct {
	Time     time.Time `json:"time"`
	Code     Code      `json:"code"`
	Filtered float64   `json:"filtered"`
	Raw      int16     `json:"raw"`
}

// Config holds the detector tuning.
type Config struct {
	Capacity   int
	Axis       Axis
	Classifier ClassifierConfig
}

// DefaultConfig returns the stock detector configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:   RingCapacity,
		Axis:       AxisY,
		Classifier: DefaultClassifierConfig(),
	}
}

// Validate rejects tuning the detector cannot run with.
func (c Config) Validate() error {
	if c.Capacity < Window {
		return fmt.Errorf("%w: ring capacity %d is below %d", ErrInvalidConfig, c.Capacity, Window)
	}
	if err := c.Classifier.Validate(); err != nil {
		return err
	}
	if c.Classifier.SubWindow > c.Capacity {
		return fmt.Errorf("%w: sub-window %d exceeds ring capacity %d",
			ErrInvalidConfig, c.Classifier.SubWindow, c.Capacity)
	}
	if c.Axis < AxisX || c.Axis > AxisZ {
		return fmt.Errorf("%w: unknown axis %v", ErrInvalidConfig, c.Axis)
	}
	return nil
}

// Snapshot is a copy of the detector's recent output.
type Snapshot struct {
	Samples  int       `json:"samples"`
	State    State     `json:"state"`
	Filtered []float64 `json:"filtered"`
	Events   []Event   `json:"events"`
}

// Detector runs one sample at a time through ring, filter and classifier.
// It is not safe for concurrent use; samples must be processed in order.
type Detector struct {
	// Latest values
	LatestRaw      [3]int16
	LatestFiltered float64

	samples  int
	filtered *trail
	events   []Event // oldest first

	axis       Axis
	ring       *SampleRing
	classifier *Classifier
}

// New validates cfg and creates a Detector.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ring, err := NewSampleRing(cfg.Capacity)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	return &Detector{
		filtered:   newTrail(historyLen),
		axis:       cfg.Axis,
		ring:       ring,
		classifier: classifier,
	}, nil
}

// Process ingests one raw sample and returns the code for this tick.
func (d *Detector) Process(x, y, z int16, t time.Time) Code {
	d.ring.Append(x, y, z)
	d.samples++
	d.LatestRaw = [3]int16{x, y, z}

	filtered := WeightedAverage(d.ring.LatestWindow(d.axis, Window))
	// The release window ends with the sample appended above.
	recent := d.ring.LatestWindow(d.axis, d.classifier.cfg.SubWindow)
	code := d.classifier.Update(filtered, recent)

	d.LatestFiltered = filtered
	d.filtered.add(filtered)

	if code != CodeIdle {
		d.events = append(d.events, Event{
			Time:     t,
			Code:     code,
			Filtered: filtered,
			Raw:      d.LatestRaw[d.axis],
		})
		if len(d.events) > maxEvents {
			d.events = d.events[len(d.events)-maxEvents:]
		}
	}

	return code
}

// State returns the classifier state.
func (d *Detector) State() State {
	return d.classifier.State()
}

// Snapshot copies the sample count, state, filtered history and crossings.
func (d *Detector) Snapshot() Snapshot {
	return Snapshot{
		Samples:  d.samples,
		State:    d.State(),
		Filtered: d.filtered.values(),
		Events:   slices.Clone(d.events),
	}
}
