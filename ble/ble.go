// Package ble exposes the node over a BLE GATT peripheral: a notify+read
// characteristic carrying one code byte per tick and a writable
// characteristic that sets the sample period.
package ble

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/danielliyk/Embedded-System-Labs/config"
)

// BlueMS hardware service layout.
var (
	ServiceUUID = mustParseUUID("00000000-0001-11e1-9ab4-0002a5d5c51b")
	MotionUUID  = mustParseUUID("00000000-0001-11e1-ac36-0002a5d5c51b")
	PeriodUUID  = mustParseUUID("00e00000-0001-11e1-ac36-0002a5d5c51b")
)

func mustParseUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Writer is the part of bluetooth.Characteristic the sink needs.
type Writer interface {
	Write(p []byte) (int, error)
}

// Sink writes each code to the motion characteristic, which notifies
// subscribed centrals.
type Sink struct {
	char Writer
}

// NewSink wraps a characteristic handle.
func NewSink(char Writer) *Sink {
	return &Sink{char: char}
}

func (s *Sink) Notify(_ context.Context, code byte) error {
	if _, err := s.char.Write([]byte{code}); err != nil {
		return fmt.Errorf("ble: could not update motion characteristic: %w", err)
	}
	return nil
}

// DecodePeriod converts a sample-period write into a poll period. The first
// byte counts units of config.PeriodUnit; zero and empty writes are ignored.
func DecodePeriod(value []byte) (time.Duration, bool) {
	if len(value) == 0 || value[0] == 0 {
		return 0, false
	}
	return time.Duration(value[0]) * config.PeriodUnit, true
}

// PeriodHandler returns the callback for writes to the period
// characteristic. set is typically Node.SetPollPeriod.
func PeriodHandler(set func(time.Duration) error, log *slog.Logger) func(value []byte) {
	log = config.Discard(log)
	return func(value []byte) {
		d, ok := DecodePeriod(value)
		if !ok {
			log.Debug("ignoring sample period write", "value", value)
			return
		}
		if err := set(d); err != nil {
			log.Warn("could not set sample period", "err", err)
			return
		}
		log.Info("sample period updated", "period", d)
	}
}

// PeripheralConfig configures Start.
type PeripheralConfig struct {
	Name     string
	OnPeriod func(time.Duration) error
	Logger   *slog.Logger
}

// Peripheral is a running GATT server on the default adapter.
type Peripheral struct {
	adapter *bluetooth.Adapter
	adv     *bluetooth.Advertisement
	motion  bluetooth.Characteristic
	period  bluetooth.Characteristic
	log     *slog.Logger
}

// Start enables the adapter, registers the hardware service and begins
// advertising.
func Start(cfg PeripheralConfig) (*Peripheral, error) {
	p := &Peripheral{
		adapter: bluetooth.DefaultAdapter,
		log:     config.Discard(cfg.Logger),
	}
	if err := p.adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: could not enable adapter: %w", err)
	}

	p.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected {
			p.log.Info("central connected", "addr", device.Address.String())
		} else {
			p.log.Info("central disconnected", "addr", device.Address.String())
		}
	})

	onPeriod := PeriodHandler(func(time.Duration) error { return nil }, p.log)
	if cfg.OnPeriod != nil {
		onPeriod = PeriodHandler(cfg.OnPeriod, p.log)
	}

	err := p.adapter.AddService(&bluetooth.Service{
		UUID: ServiceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &p.motion,
				UUID:   MotionUUID,
				Value:  []byte{0},
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicReadPermission,
			},
			{
				Handle: &p.period,
				UUID:   PeriodUUID,
				Value:  []byte{byte(config.PollPeriod / config.PeriodUnit)},
				Flags:  bluetooth.CharacteristicWritePermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(_ bluetooth.Connection, _ int, value []byte) {
					onPeriod(value)
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ble: could not add service: %w", err)
	}

	p.adv = p.adapter.DefaultAdvertisement()
	err = p.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    cfg.Name,
		ServiceUUIDs: []bluetooth.UUID{ServiceUUID},
	})
	if err != nil {
		return nil, fmt.Errorf("ble: could not configure advertisement: %w", err)
	}
	if err := p.adv.Start(); err != nil {
		return nil, fmt.Errorf("ble: could not start advertising: %w", err)
	}
	p.log.Info("advertising", "name", cfg.Name, "service", ServiceUUID.String())
	return p, nil
}

// Sink returns a sink notifying through the motion characteristic.
func (p *Peripheral) Sink() *Sink {
	return NewSink(&p.motion)
}

// Stop stops advertising.
func (p *Peripheral) Stop() error {
	return p.adv.Stop()
}
