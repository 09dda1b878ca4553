package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newDetector(t *testing.T, cfg Config) *Detector {
	t.Helper()
	d, err := New(cfg)
	require.NoError(t, err)
	return d
}

func feedY(d *Detector, ys ...int16) []Code {
	codes := make([]Code, 0, len(ys))
	t := time.Unix(0, 0)
	for _, y := range ys {
		codes = append(codes, d.Process(0, y, 0, t))
		t = t.Add(100 * time.Millisecond)
	}
	return codes
}

func TestDetectorFilterLagDampensSpike(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	codes := feedY(d, 0, 0, 1000)

	require.Equal(t, []Code{CodeIdle, CodeIdle, CodeIdle}, codes)
	require.InDelta(t, 2000.0/3, d.LatestFiltered, 1e-9)
	require.Equal(t, StateIdle, d.State())
	require.Empty(t, d.Snapshot().Events)
}

func TestDetectorSustainedRise(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	codes := feedY(d, 0, 1000, 1000)

	require.Equal(t, []Code{CodeIdle, CodeIdle, CodeUp}, codes)
	snap := d.Snapshot()
	require.Equal(t, []float64{0, 2000.0 / 3, 1000}, snap.Filtered)
	require.Equal(t, StateExceededUp, snap.State)
	require.Equal(t, 3, snap.Samples)
	require.Len(t, snap.Events, 1)
	require.Equal(t, CodeUp, snap.Events[0].Code)
	require.Equal(t, int16(1000), snap.Events[0].Raw)
}

func TestDetectorEdgeTriggeredOnce(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	ys := []int16{0, 1000, 1000}
	for range 50 {
		ys = append(ys, 1200)
	}
	codes := feedY(d, ys...)

	ups := 0
	for _, c := range codes {
		if c == CodeUp {
			ups++
		}
	}
	require.Equal(t, 1, ups)
	require.Equal(t, CodeUp, codes[2])
	require.Equal(t, StateExceededUp, d.State())
}

func TestDetectorHysteresisRelease(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	codes := feedY(d, 0, 1000, 1000, 900, 1000, 900, 900, 1000, 1000)

	require.Equal(t, []Code{
		CodeIdle, CodeIdle, CodeUp, // crossing
		CodeIdle, CodeIdle, CodeIdle, // interleaved samples, no release
		CodeIdle, // two consecutive samples <= 950 release
		CodeUp,   // (2*1000+900)/3 > 950 re-triggers
		CodeIdle, // still exceeded
	}, codes)
	require.Len(t, d.Snapshot().Events, 2)
}

func TestDetectorDown(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	codes := feedY(d, -600, -600, -500, -500, -520)

	require.Equal(t, []Code{CodeDown, CodeIdle, CodeIdle, CodeIdle, CodeIdle}, codes)
	require.Equal(t, StateIdle, d.State())
}

func TestDetectorOtherAxis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Axis = AxisZ
	d := newDetector(t, cfg)

	require.Equal(t, CodeIdle, d.Process(0, 2000, 0, time.Now()))
	require.Equal(t, CodeUp, d.Process(0, 2000, 2000, time.Now()))
	require.Equal(t, 2, d.Snapshot().Samples)
}

func TestDetectorEventHistoryBounded(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	for range maxEvents + 20 {
		feedY(d, 2000, 0, 0)
	}
	require.Len(t, d.Snapshot().Events, maxEvents)
}

func TestDetectorReleasesOnTickCompletingWindow(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	feedY(d, 0, 1000, 1000)
	require.Equal(t, StateExceededUp, d.State())

	feedY(d, 900)
	require.Equal(t, StateExceededUp, d.State(), "window [1000 900] still has a sample above")

	// The second inside sample is the one appended on this tick.
	feedY(d, 900)
	require.Equal(t, StateIdle, d.State())
}

func TestDetectorSnapshotIsACopy(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	feedY(d, 0, 1000, 1000)

	snap := d.Snapshot()
	snap.Events[0].Code = CodeDown
	snap.Filtered[0] = 42

	again := d.Snapshot()
	require.Equal(t, CodeUp, again.Events[0].Code)
	require.Equal(t, 0.0, again.Filtered[0])
}

func TestDetectorFilteredHistoryBounded(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	for range historyLen + 5 {
		feedY(d, 10)
	}
	snap := d.Snapshot()
	require.Len(t, snap.Filtered, historyLen)
	require.Equal(t, historyLen+5, snap.Samples)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }},
		{"capacity below filter window", func(c *Config) { c.Capacity = Window - 1 }},
		{"zero sub-window", func(c *Config) { c.Classifier.SubWindow = 0 }},
		{"sub-window above capacity", func(c *Config) { c.Classifier.SubWindow = c.Capacity + 1 }},
		{"inverted thresholds", func(c *Config) { c.Classifier.Positive = c.Classifier.Negative - 1 }},
		{"unknown axis", func(c *Config) { c.Axis = Axis(3) }},
		{"negative axis", func(c *Config) { c.Axis = Axis(-1) }},
	}

	for _, test := range tests {
		cfg := DefaultConfig()
		test.mutate(&cfg)
		require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, test.name)
		d, err := New(cfg)
		require.ErrorIs(t, err, ErrInvalidConfig, test.name)
		require.Nil(t, d, test.name)
	}
}
