package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielliyk/Embedded-System-Labs/button"
	"github.com/danielliyk/Embedded-System-Labs/detector"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 950, cfg.Detector.Classifier.Positive)
	require.Equal(t, -550, cfg.Detector.Classifier.Negative)
	require.Equal(t, 2, cfg.Detector.Classifier.SubWindow)
	require.Equal(t, time.Second, cfg.LongPress)
	require.Equal(t, 100*time.Millisecond, cfg.PollPeriod)
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*Config){
		"zero sub-window":     func(c *Config) { c.Detector.Classifier.SubWindow = 0 },
		"sub-window too big":  func(c *Config) { c.Detector.Classifier.SubWindow = c.Detector.Capacity + 1 },
		"tiny ring":           func(c *Config) { c.Detector.Capacity = 1 },
		"inverted thresholds": func(c *Config) { c.Detector.Classifier.Positive = -600 },
		"equal thresholds":    func(c *Config) { c.Detector.Classifier.Positive = c.Detector.Classifier.Negative },
		"bad axis":            func(c *Config) { c.Detector.Axis = 7 },
		"zero long press":     func(c *Config) { c.LongPress = 0 },
		"negative poll":       func(c *Config) { c.PollPeriod = -time.Second },
		"code base overflow":  func(c *Config) { c.ButtonCodeBase = 254 },
	}

	for name, mutate := range tests {
		cfg := Default()
		mutate(&cfg)
		require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}
}

func TestValidateWrapsComponentErrors(t *testing.T) {
	cfg := Default()
	cfg.Detector.Capacity = 0
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, err, detector.ErrInvalidConfig)

	cfg = Default()
	cfg.LongPress = -time.Second
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, err, button.ErrInvalidLongPress)
}

func TestLegacyCodeBaseIsValid(t *testing.T) {
	cfg := Default()
	cfg.ButtonCodeBase = LegacyButtonCodeBase
	require.NoError(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "warn", true)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "code", 1)
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = newLogger(&buf, "loud", false)
	require.ErrorIs(t, err, ErrInvalidConfig)

	require.NotNil(t, Discard(nil))
	require.Same(t, l, Discard(l))
}
