package detector

import "fmt"

// Axis selects one of the three accelerometer axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis maps "x", "y" or "z" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// SampleRing is a fixed-capacity ring of raw XYZ samples in milli-g.
// Once full, each Append overwrites the oldest sample.
type SampleRing struct {
	x, y, z []int16
	pos     int
	count   int
}

// NewSampleRing creates a zeroed SampleRing with the given capacity.
func NewSampleRing(capacity int) (*SampleRing, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: ring capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}
	return &SampleRing{
		x: make([]int16, capacity),
		y: make([]int16, capacity),
		z: make([]int16, capacity),
	}, nil
}

// Append writes a sample at the cursor and advances it.
func (r *SampleRing) Append(x, y, z int16) {
	r.x[r.pos] = x
	r.y[r.pos] = y
	r.z[r.pos] = z
	r.pos = (r.pos + 1) % len(r.x)
	if r.count < len(r.x) {
		r.count++
	}
}

// Len returns the number of samples written, saturated at Cap.
func (r *SampleRing) Len() int {
	return r.count
}

// Cap returns the ring capacity.
func (r *SampleRing) Cap() int {
	return len(r.x)
}

// LatestWindow returns the most recent min(n, Len) values of one axis,
// oldest first.
func (r *SampleRing) LatestWindow(axis Axis, n int) []int16 {
	return newest(r.column(axis), r.pos, min(n, r.count))
}

func (r *SampleRing) column(axis Axis) []int16 {
	switch axis {
	case AxisX:
		return r.x
	case AxisZ:
		return r.z
	}
	return r.y
}

// newest copies the n values written before next out of buf, oldest first.
func newest[T any](buf []T, next, n int) []T {
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	start := (next - n + len(buf)) % len(buf)
	for i := range n {
		out[i] = buf[(start+i)%len(buf)]
	}
	return out
}

// trail keeps the last filtered values for display.
type trail struct {
	buf  []float64
	next int
	n    int
}

func newTrail(size int) *trail {
	return &trail{buf: make([]float64, size)}
}

func (t *trail) add(v float64) {
	t.buf[t.next] = v
	t.next = (t.next + 1) % len(t.buf)
	if t.n < len(t.buf) {
		t.n++
	}
}

func (t *trail) values() []float64 {
	return newest(t.buf, t.next, t.n)
}
