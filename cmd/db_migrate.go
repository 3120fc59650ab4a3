package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/spf13/cobra"
)

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the versioned schema migrations",
	Long: `Applies the embedded migrations in order over a direct connection
(DATABASE_URL), one transaction per file. Applied versions are recorded in
schema_migrations, so running it again only applies new files.

Migrations install the exec_sql and add_column_if_not_exists functions the
other db commands call, repair appointments_doctor_id_fkey and add
workers.face_descriptor.`,
	Args: cobra.NoArgs,
	RunE: runDBMigrate,
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbMigrateCmd.Flags().Bool("status", false, "List migrations and whether they are applied")
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	out := cmd.OutOrStdout()

	if mustGetBool(cmd, "status") {
		statuses, err := pool.MigrationStatus(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tSTATUS\tAPPLIED AT")
		for _, s := range statuses {
			if s.Applied {
				fmt.Fprintf(w, "%s\tapplied\t%s\n", s.Version, s.AppliedAt.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintf(w, "%s\tpending\t-\n", s.Version)
			}
		}
		return w.Flush()
	}

	applied, err := pool.Migrate(ctx)
	for _, v := range applied {
		fmt.Fprintf(out, "Applied %s\n", v)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "Database is up to date")
	}
	return nil
}
