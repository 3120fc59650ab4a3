package cmd

import (
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database administration commands",
	Long: `Commands that repair, inspect and migrate the clinic database.

By default they go through the Supabase remote procedures (exec_sql,
add_column_if_not_exists) using SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY.
With --direct they connect to DATABASE_URL instead.`,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.PersistentFlags().Bool("direct", false, "Connect directly via DATABASE_URL instead of Supabase")
}
