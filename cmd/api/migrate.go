package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-core-go/internal/config"
	"github.com/cmlabs-hris/hris-core-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run PostgreSQL schema migrations",
	Long: `Run PostgreSQL schema migrations. MongoDB needs none; its indexes are
created when the server starts.`,
}

func newMigrateAction(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbConfig, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if dbConfig.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requires DB_DRIVER=%s, got %q", config.DriverPostgres, dbConfig.Driver)
			}
			return postgresql.Migrate(dbConfig.URL, action)
		},
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(
		newMigrateAction("up", "Apply all up migrations"),
		newMigrateAction("down", "Roll back all migrations"),
		newMigrateAction("version", "Print the current schema version"),
	)
}
