// Package shm provides a POSIX shared memory ring of raw accelerometer
// samples, written by one producer process and read by any number of
// consumers.
package shm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Ring layout constants.
const (
	RingCap   = 1024
	RingEntry = 6  // 3x int16: x, y, z in milli-g
	SHMHeader = 16 // [0..3] write_idx u32, [4..11] total u64, [12..15] period_ms u32
	SHMSize   = SHMHeader + RingCap*RingEntry

	NameAccel = "gesture_accel_shm"
)

// ErrShortBuffer is returned when a mapping is smaller than SHMSize.
var ErrShortBuffer = errors.New("shm: buffer smaller than ring size")

// Sample is one raw XYZ reading in milli-g.
type Sample struct {
	X, Y, Z int16
}

// RingBuffer is a shared memory ring buffer of accelerometer samples.
type RingBuffer struct {
	buf  []byte
	name string
	fd   int
}

// NewRingBuffer lays a ring over an existing buffer.
func NewRingBuffer(buf []byte) (*RingBuffer, error) {
	if len(buf) < SHMSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(buf), SHMSize)
	}
	return &RingBuffer{buf: buf, fd: -1}, nil
}

// WriteSample appends a sample. The total counter is published last so a
// reader never sees a count ahead of the data.
func (r *RingBuffer) WriteSample(x, y, z int16) {
	idx := binary.LittleEndian.Uint32(r.buf[0:4])
	off := SHMHeader + int(idx)*RingEntry

	binary.LittleEndian.PutUint16(r.buf[off:], uint16(x))
	binary.LittleEndian.PutUint16(r.buf[off+2:], uint16(y))
	binary.LittleEndian.PutUint16(r.buf[off+4:], uint16(z))

	binary.LittleEndian.PutUint32(r.buf[0:4], (idx+1)%RingCap)
	total := binary.LittleEndian.Uint64(r.buf[4:12])
	binary.LittleEndian.PutUint64(r.buf[4:12], total+1)
}

// SetPeriodMS records the producer's sampling period in the header.
func (r *RingBuffer) SetPeriodMS(ms uint32) {
	binary.LittleEndian.PutUint32(r.buf[12:16], ms)
}

// PeriodMS returns the producer's sampling period, or 0 if unset.
func (r *RingBuffer) PeriodMS() uint32 {
	return binary.LittleEndian.Uint32(r.buf[12:16])
}

// Total returns the number of samples written since creation.
func (r *RingBuffer) Total() uint64 {
	return binary.LittleEndian.Uint64(r.buf[4:12])
}

// ReadNew returns the samples written since lastTotal, oldest first, and
// the new total. At most RingCap samples are returned.
func (r *RingBuffer) ReadNew(lastTotal uint64) ([]Sample, uint64) {
	total := r.Total()
	if total <= lastTotal {
		return nil, total
	}
	nNew := min(total-lastTotal, RingCap)

	start := (total - nNew) % RingCap
	samples := make([]Sample, nNew)
	for i := range nNew {
		off := SHMHeader + int((start+i)%RingCap)*RingEntry
		samples[i] = Sample{
			X: int16(binary.LittleEndian.Uint16(r.buf[off:])),
			Y: int16(binary.LittleEndian.Uint16(r.buf[off+2:])),
			Z: int16(binary.LittleEndian.Uint16(r.buf[off+4:])),
		}
	}
	return samples, total
}
