package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cryptosim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite trade journal",
	Long: `Query and display records from the SQLite trade journal.

Subcommands:
  fills   - List recent order fills
  closes  - List recently settled positions
  equity  - Print the equity curve

Examples:
  cryptosim journal fills --db ./cryptosim.db
  cryptosim journal closes -n 20
  cryptosim journal equity`,
}

var journalFillsCmd = &cobra.Command{
	Use:   "fills",
	Short: "List recent order fills",
	Args:  cobra.NoArgs,
	RunE:  runJournalFills,
}

var journalClosesCmd = &cobra.Command{
	Use:   "closes",
	Short: "List recently settled positions",
	Args:  cobra.NoArgs,
	RunE:  runJournalCloses,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity",
	Short: "Print the equity curve, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalEquity,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalFillsCmd)
	journalCmd.AddCommand(journalClosesCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./cryptosim.db", "path to SQLite journal DB")
	journalCmd.PersistentFlags().IntVarP(&journalLimit, "limit", "n", 50, "maximum records to print (0 = all for equity)")
}

func runJournalFills(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	fills, err := j.ListFills(journalLimit)
	if err != nil {
		return fmt.Errorf("query fills: %w", err)
	}
	if len(fills) == 0 {
		fmt.Println("no fills recorded")
		return nil
	}

	fmt.Printf("%-26s  %-10s  %-8s  %-5s  %-6s  %12s  %12s  %10s\n",
		"TIME", "SYMBOL", "MODE", "SIDE", "KIND", "PRICE", "SIZE", "FEE")
	for _, r := range fills {
		fmt.Printf("%-26s  %-10s  %-8s  %-5s  %-6s  %12.2f  %12.6f  %10.4f\n",
			r.Time.Format(time.RFC3339), r.Symbol, r.Mode, r.Side, r.Kind,
			r.Price, r.Size, r.Fee)
	}
	return nil
}

func runJournalCloses(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	closes, err := j.ListCloses(journalLimit)
	if err != nil {
		return fmt.Errorf("query closes: %w", err)
	}
	if len(closes) == 0 {
		fmt.Println("no closed positions recorded")
		return nil
	}

	fmt.Printf("%-26s  %-10s  %-8s  %-5s  %12s  %12s  %12s  %-11s\n",
		"CLOSED", "SYMBOL", "MODE", "SIDE", "ENTRY", "EXIT", "REALIZED", "REASON")
	for _, r := range closes {
		fmt.Printf("%-26s  %-10s  %-8s  %-5s  %12.2f  %12.2f  %+12.4f  %-11s\n",
			r.CloseTime.Format(time.RFC3339), r.Symbol, r.Mode, r.Side,
			r.EntryPrice, r.ExitPrice, r.RealizedPnL, r.Reason)
	}
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	curve, err := j.EquityCurve(journalLimit)
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}
	if len(curve) == 0 {
		fmt.Println("no equity snapshots recorded")
		return nil
	}

	fmt.Printf("%-26s  %14s  %14s  %14s\n", "TIME", "BALANCE", "EQUITY", "MARGIN USED")
	for _, e := range curve {
		fmt.Printf("%-26s  %14.2f  %14.2f  %14.2f\n",
			e.Time.Format(time.RFC3339), e.Balance, e.Equity, e.MarginUsed)
	}
	return nil
}
