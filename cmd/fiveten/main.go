package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "fiveten",
	Short: "FiveTenAlgo - rule-based trading strategy simulator",
	Long: `FiveTenAlgo simulates a weekly mean-reversion strategy (buy on ~5% dips,
sell on ~10% pops) over historical price series, persists the results as
precomputed artifacts and serves windowed views of them over HTTP.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
