package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/danielliyk/Embedded-System-Labs/detector"
)

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Bind(fs)
	require.NoError(t, fs.Parse(args))
	return &f
}

func TestFlagsDefaults(t *testing.T) {
	c, err := parse(t).Config()
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestFlagsOverride(t *testing.T) {
	c, err := parse(t,
		"--axis=z", "--positive=800", "--negative=-400", "--sub-window=3",
		"--capacity=32", "--long-press=1.5s", "--period=50ms", "--legacy-button-codes",
	).Config()
	require.NoError(t, err)
	require.Equal(t, detector.AxisZ, c.Detector.Axis)
	require.Equal(t, 800, c.Detector.Classifier.Positive)
	require.Equal(t, -400, c.Detector.Classifier.Negative)
	require.Equal(t, 3, c.Detector.Classifier.SubWindow)
	require.Equal(t, 32, c.Detector.Capacity)
	require.Equal(t, 1500*time.Millisecond, c.LongPress)
	require.Equal(t, 50*time.Millisecond, c.PollPeriod)
	require.Equal(t, uint8(LegacyButtonCodeBase), c.ButtonCodeBase)
}

func TestFlagsInvalid(t *testing.T) {
	_, err := parse(t, "--axis=w").Config()
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = parse(t, "--positive=-600").Config()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFlagsLogger(t *testing.T) {
	l, err := parse(t, "--log-level=debug").Logger()
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = parse(t, "--log-level=loud").Logger()
	require.ErrorIs(t, err, ErrInvalidConfig)
}
