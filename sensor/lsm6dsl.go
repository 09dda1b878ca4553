package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var (
	// ErrNotDevice is returned when WHO_AM_I does not match an LSM6DSL.
	ErrNotDevice = errors.New("sensor: WHO_AM_I does not match LSM6DSL (0x6a)")

	errResetTimeout = errors.New("software reset did not complete")
)

// resetPolls bounds the wait for the software reset bit to clear.
const resetPolls = 10

// An Option configures an LSM6DSL before it is opened.
type Option func(d *LSM6DSL) Option

// OnBus selects the I²C bus ("/dev/i2c-1", "I2C1", "1"). By default the
// first available bus is used.
func OnBus(name string) Option {
	return func(d *LSM6DSL) Option {
		old := d.bus
		d.bus = name
		return OnBus(old)
	}
}

// OnAddr selects the I²C address. By default it is 0x6a.
func OnAddr(addr uint16) Option {
	return func(d *LSM6DSL) Option {
		old := d.addr
		d.addr = addr
		return OnAddr(old)
	}
}

// LSM6DSL reads the accelerometer of an ST LSM6DSL IMU at ±2g, 104Hz.
type LSM6DSL struct {
	dev    conn.Conn
	closer i2c.BusCloser
	bus    string
	addr   uint16
}

// NewLSM6DSL opens the bus and initialises the device.
func NewLSM6DSL(opts ...Option) (*LSM6DSL, error) {
	d := &LSM6DSL{addr: LSM6DSLAddr}
	for _, opt := range opts {
		opt(d)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("sensor: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(d.bus)
	if err != nil {
		return nil, fmt.Errorf("sensor: could not open I2C bus: %w", err)
	}
	d.closer = bus
	d.dev = &i2c.Dev{Addr: d.addr, Bus: bus}

	if err := d.init(); err != nil {
		bus.Close()
		return nil, err
	}
	return d, nil
}

func (d *LSM6DSL) init() error {
	id, err := d.read(RegWhoAmI)
	if err != nil {
		return fmt.Errorf("sensor: could not get WHO_AM_I: %w", err)
	}
	if id != LSM6DSLWhoAmI {
		return ErrNotDevice
	}

	if err := d.write(RegCtrl3C, Ctrl3CSWReset); err != nil {
		return fmt.Errorf("sensor: could not reset device: %w", err)
	}
	if err := d.waitReset(); err != nil {
		return fmt.Errorf("sensor: could not reset device: %w", err)
	}

	if err := d.write(RegCtrl3C, Ctrl3CBDU|Ctrl3CIfInc); err != nil {
		return fmt.Errorf("sensor: could not configure interface: %w", err)
	}
	if err := d.write(RegCtrl1XL, ODR104Hz|FullScale2G); err != nil {
		return fmt.Errorf("sensor: could not configure accelerometer: %w", err)
	}
	return nil
}

func (d *LSM6DSL) waitReset() error {
	for range resetPolls {
		state, err := d.read(RegCtrl3C)
		if err != nil {
			return err
		}
		if state&Ctrl3CSWReset == 0 {
			return nil
		}
	}
	return errResetTimeout
}

// ReadAxes returns the current acceleration in milli-g.
func (d *LSM6DSL) ReadAxes() (x, y, z int16, err error) {
	buf := make([]byte, OutputDataSize)
	if err := d.dev.Tx([]byte{RegOutXLXL}, buf); err != nil {
		return 0, 0, 0, fmt.Errorf("sensor: could not read axes: %w", err)
	}
	return toMilliG(buf[0:]), toMilliG(buf[2:]), toMilliG(buf[4:]), nil
}

// Close releases the bus.
func (d *LSM6DSL) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

func (d *LSM6DSL) read(reg byte) (byte, error) {
	r := make([]byte, 1)
	if err := d.dev.Tx([]byte{reg}, r); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (d *LSM6DSL) write(reg, value byte) error {
	return d.dev.Tx([]byte{reg, value}, nil)
}

func toMilliG(b []byte) int16 {
	raw := int16(binary.LittleEndian.Uint16(b))
	return int16(math.Round(float64(raw) * Sensitivity2G))
}
