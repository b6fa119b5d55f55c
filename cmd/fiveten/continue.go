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
	continueMode   string
	continuePeriod string
)

var continueCmd = &cobra.Command{
	Use:   "continue",
	Short: "Extend a precomputed artifact through today",
	Long:  "Load the precomputed artifact, replay newer market data onto it and print the result summary",
	RunE:  runContinue,
}

func init() {
	continueCmd.Flags().StringVar(&continueMode, "mode", "default", "simulation mode")
	continueCmd.Flags().StringVar(&continuePeriod, "period", "all", "start period (all, 2000, covid)")

	rootCmd.AddCommand(continueCmd)
}

func runContinue(cmd *cobra.Command, args []string) error {
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

	period := core.Period(continuePeriod)
	if !period.IsValid() {
		return fmt.Errorf("unknown period %q", continuePeriod)
	}
	mode := core.ModeByName(continueMode)

	state := svc.CurrentState(context.Background(), mode, period)
	if len(state.PerformanceHistory) == 0 {
		return fmt.Errorf("no performance history for %s/%s", mode.Name, period)
	}

	last := state.PerformanceHistory[len(state.PerformanceHistory)-1]
	log.Info("continuation complete",
		zap.String("mode", mode.Name),
		zap.String("period", string(period)),
		zap.String("through", last.Date),
		zap.Float64("portfolio_value", last.PortfolioValue),
		zap.Int("trades", len(state.TradeLog)))

	fmt.Printf("Portfolio value through %s: %.2f (%.2f%% total return)\n",
		last.Date, last.PortfolioValue, last.TotalReturn)
	return nil
}
