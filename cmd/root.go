package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvrouter/app"
	"github.com/kilianp07/pvrouter/config"
	"github.com/kilianp07/pvrouter/infra/logger"
	"github.com/kilianp07/pvrouter/simulator"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "pvrouter",
	Short: "PV surplus router",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The sample stream comes from the paced simulator until a hardware
	// front end is linked in; the rest of the pipeline is source-agnostic.
	simCfg := cfg.Simulator
	simCfg.Pace = true
	src := simulator.New(simCfg, cfg.Sampling.SampleRateHz, cfg.Sampling.LineFrequencyHz)

	svc, err := app.New(cfg, src)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
