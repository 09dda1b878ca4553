// Package config holds the tuning constants and runtime configuration of
// the gesture node.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/danielliyk/Embedded-System-Labs/button"
	"github.com/danielliyk/Embedded-System-Labs/detector"
)

const (
	// Motion classification (milli-g)
	PositiveThreshold = detector.PositiveThreshold
	NegativeThreshold = detector.NegativeThreshold
	Window            = detector.Window    // samples averaged by the motion filter
	SubWindow         = detector.SubWindow // consecutive raw samples needed to release
	RingCapacity      = detector.RingCapacity

	// Button
	LongPress = button.LongPress

	// Polling task
	PollPeriod = 100 * time.Millisecond

	// Written sample-period characteristic unit
	PeriodUnit = 10 * time.Millisecond

	// Button code base giving the legacy 3/4 wire bytes
	LegacyButtonCodeBase = 2
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full runtime configuration.
type Config struct {
	Detector       detector.Config
	LongPress      time.Duration
	PollPeriod     time.Duration
	ButtonCodeBase uint8
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Detector:   detector.DefaultConfig(),
		LongPress:  LongPress,
		PollPeriod: PollPeriod,
	}
}

// Validate rejects configurations the node cannot run with. Detector and
// button errors are wrapped so both sentinels match.
func (c Config) Validate() error {
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch {
	case c.LongPress <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, button.ErrInvalidLongPress)
	case c.PollPeriod <= 0:
		return fmt.Errorf("%w: poll period must be positive", ErrInvalidConfig)
	case int(c.ButtonCodeBase)+int(button.Long) > 255:
		return fmt.Errorf("%w: button code base %d overflows a byte", ErrInvalidConfig, c.ButtonCodeBase)
	}
	return nil
}

// NewLogger builds a slog logger writing to stderr. level is one of
// debug, info, warn or error.
func NewLogger(level string, json bool) (*slog.Logger, error) {
	return newLogger(os.Stderr, level, json)
}

func newLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Discard returns l, or a logger that drops everything when l is nil.
func Discard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
