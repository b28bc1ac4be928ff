package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cryptosim/account"
	"cryptosim/config"
	"cryptosim/feed"
	"cryptosim/internal/logging"
	"cryptosim/journal"
	"cryptosim/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a trading session from a config file",
	Long: `Run a paper-trading session using settings from a configuration file.

The config selects the price feed (live polling, websocket, scripted steps
or tick replay), the fee schedule, journaling, and where to persist the
account state between sessions.

Example:
  cryptosim run --config config.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	acct := account.New(cfg.Account.Balance, cfg.Fees, j, log)
	acct.SetExchange(cfg.Account.Exchange)
	acct.SetFavorites(cfg.Account.Favorites)
	acct.SetHistoryRetention(int(cfg.History.Retention))

	var persister *store.Debounced
	if cfg.Store.Path != "" {
		st := store.New(cfg.Store.Path)
		saved, err := st.Load()
		if err != nil {
			log.Warn("state load failed, starting fresh", zap.Error(err))
		} else {
			acct.Restore(saved)
		}

		debounce, _ := cfg.Store.ParseDebounce()
		persister = store.NewDebounced(st, debounce, log)
		defer persister.Close()
	}

	src, err := openFeed(cfg.Feed, log)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("session started",
		zap.String("exchange", cfg.Account.Exchange),
		zap.String("symbol", cfg.Feed.Symbol),
		zap.String("feed", cfg.Feed.Mode),
		zap.Float64("balance", acct.Balance()))

	err = src.Run(ctx, func(t feed.Tick) {
		acct.ApplyPrice(t.Symbol, t.Price, t.Time)
		if persister != nil {
			persister.Offer(acct.Snapshot())
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("feed: %w", err)
	}

	fmt.Printf("\nSession finished:\n")
	fmt.Printf("  Balance: %.2f\n", acct.Balance())
	fmt.Printf("  Equity:  %.2f\n", acct.Equity())
	fmt.Printf("  Open positions: %d\n", len(acct.Positions()))
	fmt.Printf("  Resting orders: %d\n", len(acct.Orders()))
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.FillsFile, jc.ClosesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func openFeed(fc config.FeedConfig, log *zap.Logger) (feed.Feed, error) {
	switch fc.Mode {
	case "poll":
		interval, err := fc.ParseInterval()
		if err != nil {
			return nil, err
		}
		return feed.NewPoller(fc.Endpoint, fc.Symbol, interval, log), nil
	case "ws":
		return feed.NewSocket(fc.Endpoint, fc.Symbol, log), nil
	case "script":
		steps := make([]feed.Step, len(fc.Steps))
		for i, s := range fc.Steps {
			delay, err := s.ParseDelay()
			if err != nil {
				return nil, err
			}
			steps[i] = feed.Step{Price: s.Price, Delay: delay}
		}
		return feed.NewScript(fc.Symbol, steps), nil
	case "replay":
		return feed.NewReplay(fc.File, fc.Symbol, log), nil
	default:
		return nil, fmt.Errorf("unknown feed mode %q", fc.Mode)
	}
}
