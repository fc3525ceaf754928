package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvrouter/config"
	"github.com/kilianp07/pvrouter/core/acquisition"
	"github.com/kilianp07/pvrouter/core/dispatch"
	"github.com/kilianp07/pvrouter/infra/logger"
	"github.com/kilianp07/pvrouter/simulator"
)

var simulatePeriods int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the measurement and dispatch pipeline against the synthetic source, faster than real time",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulatePeriods, "periods", 50, "number of measurement periods to run")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	simCfg := cfg.Simulator
	simCfg.Pace = false
	src := simulator.New(simCfg, cfg.Sampling.SampleRateHz, cfg.Sampling.LineFrequencyHz)

	acq, err := acquisition.NewEngine(cfg.Sampling)
	if err != nil {
		return err
	}
	engine, err := dispatch.NewEngine(cfg.Dispatch, logger.New("dispatch"), nil)
	if err != nil {
		return err
	}

	logg := logger.New("simulate")
	for periods := 0; periods < simulatePeriods; {
		rawV, rawI := src.Next()
		res, ok := acq.ProcessPair(rawV, rawI)
		if !ok {
			continue
		}
		periods++
		smoothed := engine.UpdateAverage(res.AveragePower)
		mask := engine.Tick(smoothed, nil)
		logg.Infof("period %d: power=%d smoothed=%d rms=%.1f mask=%#08b",
			periods, res.AveragePower, smoothed, res.RMSVoltage(), uint32(mask))
	}
	return nil
}
