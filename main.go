package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/store"
)

var rootCmd = &cobra.Command{
	Use:           "qforms",
	Short:         "Build forms, publish them and collect responses",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(responsesCmd)
	rootCmd.AddCommand(fillCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal("main:", err)
	}
}

// env is what every command works with once settings are resolved.
type env struct {
	cfg   config.Config
	db    *sql.DB
	store store.Gateway
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := log.Configure(cfg.Debug, cfg.LogFormat); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, store: store.NewSQL(db)}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		log.Warnf("main.db.close: %s", err)
	}
}
