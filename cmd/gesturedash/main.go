// gesturedash runs the gesture node against a sample source and shows a
// live terminal dashboard of the filtered axis, the classifier state and
// the codes it would notify.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/dash"
	"github.com/danielliyk/Embedded-System-Labs/detector"
	"github.com/danielliyk/Embedded-System-Labs/node"
	"github.com/danielliyk/Embedded-System-Labs/sensor"
)

var version = "dev"

var (
	flags config.Flags
	src   sensor.SourceConfig
)

func main() {
	cmd := &cobra.Command{
		Use:   "gesturedash",
		Short: "Live gesture node dashboard",
		Long: `gesturedash reads samples from shared memory (written by gesturefeed),
from an LSM6DSL or from a CSV replay, runs them through the same detector
as gestured and displays a live terminal dashboard.

Press + and - to change the sample period, q to quit.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	fs := cmd.Flags()
	flags.Bind(fs)
	fs.StringVar(&src.Kind, "source", sensor.KindSHM, "sample source: shm, i2c or replay")
	fs.StringVar(&src.Bus, "i2c-bus", "", "I2C bus name (first available when empty)")
	fs.Uint16Var(&src.Addr, "i2c-addr", sensor.LSM6DSLAddr, "LSM6DSL I2C address")
	fs.StringVar(&src.SHMName, "shm-name", "", "shared memory ring name")
	fs.StringVar(&src.ReplayPath, "replay", "", "CSV file to replay")

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
	if src.Kind == sensor.KindReplay && src.ReplayPath == "" {
		return fmt.Errorf("--replay is required with --source=replay")
	}

	source, err := sensor.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	// The dashboard owns the terminal, so node logs are discarded.
	var n *node.Node
	model := dash.New(cfg, dash.Controls{
		Period:    func() time.Duration { return n.PollPeriod() },
		SetPeriod: func(d time.Duration) error { return n.SetPollPeriod(d) },
		Snapshot:  func() detector.Snapshot { return n.Snapshot() },
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	n, err = node.New(cfg, source, node.Multi{}, node.WithObserver(dash.Observer(ctx, p)))
	if err != nil {
		return err
	}

	go func() {
		err := n.Run(ctx)
		p.Send(dash.DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
