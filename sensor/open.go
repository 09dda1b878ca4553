//go:build darwin || linux

package sensor

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danielliyk/Embedded-System-Labs/shm"
)

// Source kinds accepted by Open.
const (
	KindI2C    = "i2c"
	KindSHM    = "shm"
	KindReplay = "replay"
)

// ErrUnknownSource is returned by Open for an unsupported kind.
var ErrUnknownSource = errors.New("sensor: unknown source")

// ReadCloser is a sample source that holds a device or file.
type ReadCloser interface {
	ReadAxes() (x, y, z int16, err error)
	io.Closer
}

// SourceConfig selects and configures a sample source.
type SourceConfig struct {
	Kind       string
	Bus        string // i2c
	Addr       uint16 // i2c
	SHMName    string // shm
	ReplayPath string // replay; "-" reads stdin
}

type shmSource struct {
	*SHM
	ring *shm.RingBuffer
}

func (s shmSource) Close() error {
	return s.ring.Close()
}

// Open opens the source described by cfg.
func Open(cfg SourceConfig) (ReadCloser, error) {
	switch cfg.Kind {
	case KindI2C:
		opts := []Option{OnBus(cfg.Bus)}
		if cfg.Addr != 0 {
			opts = append(opts, OnAddr(cfg.Addr))
		}
		d, err := NewLSM6DSL(opts...)
		if err != nil {
			return nil, err
		}
		return d, nil

	case KindSHM:
		name := cfg.SHMName
		if name == "" {
			name = shm.NameAccel
		}
		ring, err := shm.OpenRing(name)
		if err != nil {
			return nil, fmt.Errorf("sensor: opening shm (is gesturefeed running?): %w", err)
		}
		return shmSource{SHM: NewSHM(ring), ring: ring}, nil

	case KindReplay:
		if cfg.ReplayPath == "-" {
			return NewReplay(io.NopCloser(os.Stdin)), nil
		}
		f, err := os.Open(cfg.ReplayPath)
		if err != nil {
			return nil, fmt.Errorf("sensor: could not open replay: %w", err)
		}
		return NewReplay(f), nil
	}
	return nil, fmt.Errorf("%w %q (want %s, %s or %s)", ErrUnknownSource, cfg.Kind, KindI2C, KindSHM, KindReplay)
}
