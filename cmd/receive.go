package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvrouter/config"
	"github.com/kilianp07/pvrouter/core/ports"
	"github.com/kilianp07/pvrouter/core/receiver"
	"github.com/kilianp07/pvrouter/infra/logger"
	"github.com/kilianp07/pvrouter/infra/mqtt"
	"github.com/kilianp07/pvrouter/internal/eventbus"
)

var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Run a remote load receiver node",
	RunE:  receive,
}

func init() {
	rootCmd.AddCommand(receiveCmd)
}

func receive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("receiver")
	bus := eventbus.New()
	defer bus.Close()

	rcv, err := receiver.New(cfg.Receiver, ports.NewLogWriter(logg), logg, bus)
	if err != nil {
		return err
	}
	listener, err := mqtt.NewLoadListener(cfg.MQTT, rcv)
	if err != nil {
		return err
	}
	defer func() {
		if err := listener.Close(); err != nil {
			logg.Errorf("listener close: %v", err)
		}
	}()

	logg.Infof("receiver up: %d loads, %d ms failsafe", cfg.Receiver.Loads, cfg.Receiver.TimeoutMS)

	// Poll the failsafe well below the timeout and emit a heartbeat so a
	// silent unit is distinguishable from a dead one.
	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()
	heartbeat := time.NewTicker(time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-poll.C:
			rcv.Poll(now)
		case <-heartbeat.C:
			logg.Debugf("link=%s mask=%#08b", rcv.Status(), rcv.Mask())
		}
	}
}
