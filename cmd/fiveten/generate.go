package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
	"github.com/CodingFreeze/FiveTenAlgo/internal/logger"
	"github.com/CodingFreeze/FiveTenAlgo/internal/metrics"
)

var (
	generateMode   string
	generatePeriod string
	generateAll    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate precomputed simulation artifacts",
	Long:  "Replay the strategy over historical data and persist the resulting state for serving",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateMode, "mode", "default", "simulation mode (default, aggressive, conservative, balanced)")
	generateCmd.Flags().StringVar(&generatePeriod, "period", "all", "start period (all, 2000, covid)")
	generateCmd.Flags().BoolVar(&generateAll, "all", false, "generate every mode and period combination")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg, metrics.NewRegistry(), log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if generateAll {
		log.Info("generating all artifacts")
		return svc.GenerateAll(ctx)
	}

	period := core.Period(generatePeriod)
	if !period.IsValid() {
		return fmt.Errorf("unknown period %q", generatePeriod)
	}
	mode := core.ModeByName(generateMode)

	log.Info("generating artifact",
		zap.String("mode", mode.Name),
		zap.String("period", string(period)))
	return svc.Generate(ctx, mode, period)
}
