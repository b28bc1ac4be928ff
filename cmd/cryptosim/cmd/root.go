package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cryptosim",
	Short: "A crypto paper-trading simulator",
	Long: `Cryptosim is a cryptocurrency paper-trading simulator written in Go.

It runs a single simulated trader against a live or recorded price feed:
  - Spot, leveraged futures and grid-bot accounting with a virtual balance
  - Resting limit orders matched against the mark price
  - Maker/taker fee schedules per exchange profile
  - Trade and equity journaling to CSV or SQLite
  - Debounced persistence of the account state document`,
}

// Execute runs the root command with all subcommands attached.
func Execute() error {
	return rootCmd.Execute()
}
