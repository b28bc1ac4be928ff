package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cryptosim/account"
	"cryptosim/feed"
	"cryptosim/fees"
	"cryptosim/internal/logging"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded tick file through the engine",
	Long: `Replay a CSV tick file (optionally .xz compressed) through a fresh
account and print the resulting ledger. Useful for sanity-checking fills
and PnL against a recorded price path.

Expected columns: time (RFC3339), price.

Example:
  cryptosim replay --file ticks/btcusdt-2026-08.csv.xz --symbol BTCUSDT`,
	RunE: runReplay,
}

var (
	replayFile    string
	replaySymbol  string
	replayBalance float64
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayFile, "file", "", "tick file to replay (required)")
	replayCmd.Flags().StringVar(&replaySymbol, "symbol", "BTCUSDT", "symbol the ticks belong to")
	replayCmd.Flags().Float64Var(&replayBalance, "balance", 100_000, "starting balance")
	replayCmd.MarkFlagRequired("file")
}

func runReplay(cmd *cobra.Command, args []string) error {
	log, err := logging.New("warn")
	if err != nil {
		return err
	}
	defer log.Sync()

	acct := account.New(replayBalance, fees.Default(), nil, log)

	var ticks int
	src := feed.NewReplay(replayFile, replaySymbol, log)
	err = src.Run(context.Background(), func(t feed.Tick) {
		acct.ApplyPrice(t.Symbol, t.Price, t.Time)
		ticks++
	})
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Printf("Replayed %d ticks from %s\n", ticks, replayFile)
	fmt.Printf("  Last mark: %.2f\n", acct.Mark(replaySymbol))
	fmt.Printf("  Balance:   %.2f\n", acct.Balance())
	fmt.Printf("  Equity:    %.2f\n", acct.Equity())
	return nil
}
