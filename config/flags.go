package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/danielliyk/Embedded-System-Labs/detector"
)

// Flags holds the command-line form of a Config.
type Flags struct {
	Axis      string
	Positive  int
	Negative  int
	SubWindow int
	Capacity  int
	LongPress time.Duration
	Period    time.Duration
	Legacy    bool

	LogLevel string
	LogJSON  bool
}

// Bind registers the flags on fs with the stock defaults.
func (f *Flags) Bind(fs *pflag.FlagSet) {
	d := Default()
	fs.StringVar(&f.Axis, "axis", d.Detector.Axis.String(), "axis to classify (x, y or z)")
	fs.IntVar(&f.Positive, "positive", d.Detector.Classifier.Positive, "upward threshold in milli-g")
	fs.IntVar(&f.Negative, "negative", d.Detector.Classifier.Negative, "downward threshold in milli-g")
	fs.IntVar(&f.SubWindow, "sub-window", d.Detector.Classifier.SubWindow, "raw samples that must be back inside to release")
	fs.IntVar(&f.Capacity, "capacity", d.Detector.Capacity, "sample ring capacity")
	fs.DurationVar(&f.LongPress, "long-press", d.LongPress, "minimum hold for a long press")
	fs.DurationVar(&f.Period, "period", d.PollPeriod, "sampling period")
	fs.BoolVar(&f.Legacy, "legacy-button-codes", false, "send button presses as 3 (short) and 4 (long)")
	fs.StringVar(&f.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&f.LogJSON, "log-json", false, "log as JSON")
}

// Config builds and validates the configuration.
func (f *Flags) Config() (Config, error) {
	axis, err := detector.ParseAxis(f.Axis)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c := Default()
	c.Detector.Axis = axis
	c.Detector.Capacity = f.Capacity
	c.Detector.Classifier.Positive = f.Positive
	c.Detector.Classifier.Negative = f.Negative
	c.Detector.Classifier.SubWindow = f.SubWindow
	c.LongPress = f.LongPress
	c.PollPeriod = f.Period
	if f.Legacy {
		c.ButtonCodeBase = LegacyButtonCodeBase
	}
	return c, c.Validate()
}

// Logger builds the logger selected by the flags.
func (f *Flags) Logger() (*slog.Logger, error) {
	return NewLogger(f.LogLevel, f.LogJSON)
}
