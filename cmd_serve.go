package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/httpserver"
	"github.com/robalobadob/mastermind/internal/records"
	"github.com/robalobadob/mastermind/internal/store"
)

var noDB bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API on $PORT.

Active rounds live in memory. Accounts, history and the daily leaderboard
are stored in SQLite at $DB_PATH unless --no-db is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&noDB, "no-db", false, "Serve without SQLite (no accounts, history or leaderboard)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps := httpserver.Deps{Store: store.NewMemoryStore(), Config: cfg}
	if !noDB {
		db, err := records.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := records.Migrate(db); err != nil {
			return err
		}
		deps.DB = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Bool("db", deps.DB != nil).Msg("starting mastermind server")
	return httpserver.New(deps).Run(ctx, ":"+cfg.Port)
}
