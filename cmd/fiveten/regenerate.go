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
	regenerateMode   string
	regeneratePeriod string
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Delete and rebuild a precomputed simulation artifact",
	Long:  "Remove the stored artifact and its backup for a mode and period, then rerun the simulation",
	RunE:  runRegenerate,
}

func init() {
	regenerateCmd.Flags().StringVar(&regenerateMode, "mode", "default", "simulation mode (default, aggressive, conservative, balanced)")
	regenerateCmd.Flags().StringVar(&regeneratePeriod, "period", "all", "start period (all, 2000, covid)")

	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, args []string) error {
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

	period := core.Period(regeneratePeriod)
	if !period.IsValid() {
		return fmt.Errorf("unknown period %q", regeneratePeriod)
	}
	mode := core.ModeByName(regenerateMode)

	log.Info("regenerating artifact",
		zap.String("mode", mode.Name),
		zap.String("period", string(period)))
	return svc.Regenerate(context.Background(), mode, period)
}
