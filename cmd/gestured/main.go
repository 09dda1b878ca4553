// gestured samples an accelerometer, classifies up/down motion on one axis
// and button presses, and sends one code byte per tick to the configured
// sinks (BLE characteristic, MQTT, WebSocket, speaker, stdout).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/danielliyk/Embedded-System-Labs/ble"
	"github.com/danielliyk/Embedded-System-Labs/button"
	"github.com/danielliyk/Embedded-System-Labs/chime"
	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/detector"
	"github.com/danielliyk/Embedded-System-Labs/mqtt"
	"github.com/danielliyk/Embedded-System-Labs/node"
	"github.com/danielliyk/Embedded-System-Labs/sensor"
	"github.com/danielliyk/Embedded-System-Labs/web"
)

var version = "dev"

var (
	flags config.Flags
	src   sensor.SourceConfig

	buttonPin string
	bleOn     bool
	bleName   string
	mqttAddr  string
	mqttTopic string
	mqttQoS   uint8
	httpAddr  string
	chimeOn   bool
	printOn   bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "gestured",
		Short: "Motion gesture node",
		Long: `gestured reads an accelerometer every sample period, smooths one axis
with a two-tap weighted average and reports threshold crossings:
1 when the axis rises above the upward threshold, 2 when it falls below
the downward threshold, 0 on every other tick. A button on a GPIO pin adds
short (1) and long (2) press codes, or 3 and 4 with --legacy-button-codes.

Samples come from an LSM6DSL on I2C, from the shared memory ring written
by gesturefeed, or from a CSV replay of x,y,z milli-g lines.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	fs := cmd.Flags()
	flags.Bind(fs)
	fs.StringVar(&src.Kind, "source", sensor.KindI2C, "sample source: i2c, shm or replay")
	fs.StringVar(&src.Bus, "i2c-bus", "", "I2C bus name (first available when empty)")
	fs.Uint16Var(&src.Addr, "i2c-addr", sensor.LSM6DSLAddr, "LSM6DSL I2C address")
	fs.StringVar(&src.SHMName, "shm-name", "", "shared memory ring name")
	fs.StringVar(&src.ReplayPath, "replay", "-", "CSV file to replay (- for stdin)")
	fs.StringVar(&buttonPin, "button-pin", "", "GPIO pin of the push button (disabled when empty)")
	fs.BoolVar(&bleOn, "ble", false, "advertise the BLE motion service")
	fs.StringVar(&bleName, "ble-name", "GestureNode", "BLE local name")
	fs.StringVar(&mqttAddr, "mqtt", "", "MQTT broker host:port (disabled when empty)")
	fs.StringVar(&mqttTopic, "mqtt-topic", mqtt.DefaultTopic, "MQTT topic")
	fs.Uint8Var(&mqttQoS, "mqtt-qos", 0, "MQTT QoS")
	fs.StringVar(&httpAddr, "http", "", "serve live reports over WebSocket on this address")
	fs.BoolVar(&chimeOn, "chime", false, "play a tone on crossings and presses")
	fs.BoolVar(&printOn, "print", false, "print each code to stdout")

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := flags.Config()
	if err != nil {
		return err
	}
	log, err := flags.Logger()
	if err != nil {
		return err
	}

	source, err := sensor.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	// Sinks and observers are set up before the node exists; period
	// changes arriving early are rejected.
	var current atomic.Pointer[node.Node]
	setPeriod := func(d time.Duration) error {
		n := current.Load()
		if n == nil {
			return web.ErrNotRunning
		}
		return n.SetPollPeriod(d)
	}
	snapshot := func() (detector.Snapshot, error) {
		n := current.Load()
		if n == nil {
			return detector.Snapshot{}, web.ErrNotRunning
		}
		return n.Snapshot(), nil
	}

	var sinks node.Multi
	opts := []node.Option{node.WithLogger(log)}

	if printOn {
		sinks = append(sinks, node.SinkFunc(func(_ context.Context, code byte) error {
			fmt.Println(code)
			return nil
		}))
	}

	if bleOn {
		p, err := ble.Start(ble.PeripheralConfig{Name: bleName, OnPeriod: setPeriod, Logger: log})
		if err != nil {
			return err
		}
		defer p.Stop()
		sinks = append(sinks, p.Sink())
	}

	if mqttAddr != "" {
		m, err := mqtt.Dial(ctx, mqtt.Options{Addr: mqttAddr, Topic: mqttTopic, QoS: mqttQoS, Logger: log})
		if err != nil {
			return err
		}
		defer m.Close()
		sinks = append(sinks, m)
	}

	if chimeOn {
		c := chime.New(nil, log)
		go c.Run(ctx)
		opts = append(opts, node.WithObserver(c.Observe))
	}

	if httpAddr != "" {
		hub := web.NewHub(setPeriod, snapshot, log)
		opts = append(opts, node.WithObserver(hub.Observe))
		srv := &http.Server{Addr: httpAddr, Handler: hub.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go serve(ctx, srv, log)
	}

	n, err := node.New(cfg, source, sinks, opts...)
	if err != nil {
		return err
	}
	current.Store(n)

	if buttonPin != "" {
		pin, err := button.OpenPin(buttonPin)
		if err != nil {
			return err
		}
		go func() {
			if err := button.WatchPin(ctx, pin, button.MonotonicClock(time.Now()), n.Edge); err != nil {
				log.Error("button watcher stopped", "err", err)
			}
		}()
	}

	fmt.Printf("gestured: sampling %s axis from %s every %s (ctrl+c to quit)\n",
		cfg.Detector.Axis, src.Kind, cfg.PollPeriod)
	if p, ok := source.(interface{ ProducerPeriod() time.Duration }); ok {
		if d := p.ProducerPeriod(); d > cfg.PollPeriod {
			log.Warn("producer samples slower than the poll period, some ticks will be skipped",
				"producer", d, "period", cfg.PollPeriod)
		}
	}
	if err := n.Run(ctx); err != nil {
		return err
	}
	fmt.Println("\nbye!")
	return nil
}

func serve(ctx context.Context, srv *http.Server, log *slog.Logger) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("serving websocket reports", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server stopped", "err", err)
	}
}
