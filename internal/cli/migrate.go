package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"craftmarket/internal/config"
	"craftmarket/internal/database"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, db *sqlx.DB) error {
				if err := database.MigrateUp(cmd.Context(), db.DB, database.DialectPostgres); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, db *sqlx.DB) error {
				if err := database.MigrateDown(cmd.Context(), db.DB, database.DialectPostgres); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, db *sqlx.DB) error {
				statuses, err := database.MigrationStatuses(cmd.Context(), db.DB, database.DialectPostgres)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tAPPLIED\tSOURCE")
				for _, s := range statuses {
					fmt.Fprintf(w, "%d\t%t\t%s\n", s.Version, s.Applied, s.Path)
				}
				return w.Flush()
			}),
		},
	)
	return cmd
}

func withDB(run func(cmd *cobra.Command, db *sqlx.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		config.Load()
		if config.AppEnv.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		db, err := database.Open(cmd.Context(), config.AppEnv.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		return run(cmd, db)
	}
}
