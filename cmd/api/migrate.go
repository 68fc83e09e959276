package main

import (
	"fmt"

	"remindme/internal/app"
	"remindme/internal/config"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status]",
	Short: "Run Postgres migrations",
	Long: `Run goose migrations from MIGRATIONS_DIR against PG_DSN.

Examples:
  # Apply all pending migrations
  remindme migrate up

  # Roll back the last migration
  remindme migrate down`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "up", "down", "status":
		default:
			return fmt.Errorf("unknown migrate command %q", args[0])
		}
		cfg, err := config.LoadPG()
		if err != nil {
			return err
		}
		return app.Migrate(cmd.Context(), cfg, args[0])
	},
}
