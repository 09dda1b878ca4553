// gesturefeed reads an accelerometer and writes raw samples to a POSIX
// shared memory ring for gestured, gesturedash or other readers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/sensor"
	"github.com/danielliyk/Embedded-System-Labs/shm"
)

var version = "dev"

var (
	src      sensor.SourceConfig
	period   time.Duration
	shmName  string
	logLevel string
)

func main() {
	cmd := &cobra.Command{
		Use:   "gesturefeed",
		Short: "Accelerometer to shared memory feeder",
		Long: `gesturefeed reads x, y and z acceleration in milli-g from an LSM6DSL
over I2C (or a CSV replay) and writes every sample to a POSIX shared
memory ring. Consumers open the ring with --source=shm.

Opening the I2C bus usually requires root privileges.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	fs := cmd.Flags()
	fs.StringVar(&src.Kind, "source", sensor.KindI2C, "sample source: i2c or replay")
	fs.StringVar(&src.Bus, "i2c-bus", "", "I2C bus name (first available when empty)")
	fs.Uint16Var(&src.Addr, "i2c-addr", sensor.LSM6DSLAddr, "LSM6DSL I2C address")
	fs.StringVar(&src.ReplayPath, "replay", "-", "CSV file to replay (- for stdin)")
	fs.DurationVar(&period, "period", 10*time.Millisecond, "sampling period")
	fs.StringVar(&shmName, "shm-name", shm.NameAccel, "shared memory ring name")
	fs.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if src.Kind == sensor.KindSHM {
		return fmt.Errorf("gesturefeed cannot read from the ring it writes")
	}
	if period <= 0 {
		return fmt.Errorf("%w: period must be positive", config.ErrInvalidConfig)
	}
	log, err := config.NewLogger(logLevel, false)
	if err != nil {
		return err
	}

	source, err := sensor.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	ring, err := shm.CreateRing(shmName)
	if err != nil {
		return fmt.Errorf("creating accel shm: %w", err)
	}
	defer ring.Close()
	defer ring.Unlink()
	ring.SetPeriodMS(uint32(period / time.Millisecond))

	fmt.Printf("gesturefeed: writing %s samples to %s every %s (ctrl+c to stop)\n", src.Kind, shmName, period)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var failures int
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		x, y, z, err := source.ReadAxes()
		if errors.Is(err, io.EOF) {
			log.Info("source exhausted", "samples", ring.Total())
			return nil
		}
		if err != nil {
			failures++
			log.Debug("sensor read failed", "err", err, "failures", failures)
			continue
		}
		ring.WriteSample(x, y, z)
	}
}
