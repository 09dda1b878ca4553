package sensor

import (
	"errors"
	"time"

	"github.com/danielliyk/Embedded-System-Labs/shm"
)

// ErrNoSample is returned when no new sample arrived since the last read.
var ErrNoSample = errors.New("sensor: no new sample")

// SHM reads the most recent sample written to a shared memory ring by
// another process. Samples the consumer polls too slowly to see are skipped.
type SHM struct {
	ring      *shm.RingBuffer
	lastTotal uint64
}

// NewSHM reads from ring, starting after the samples already in it.
func NewSHM(ring *shm.RingBuffer) *SHM {
	return &SHM{ring: ring, lastTotal: ring.Total()}
}

// ReadAxes returns the newest unseen sample, or ErrNoSample.
func (s *SHM) ReadAxes() (x, y, z int16, err error) {
	samples, total := s.ring.ReadNew(s.lastTotal)
	s.lastTotal = total
	if len(samples) == 0 {
		return 0, 0, 0, ErrNoSample
	}
	last := samples[len(samples)-1]
	return last.X, last.Y, last.Z, nil
}

// ProducerPeriod returns the sampling period the writer recorded, or 0.
func (s *SHM) ProducerPeriod() time.Duration {
	return time.Duration(s.ring.PeriodMS()) * time.Millisecond
}
