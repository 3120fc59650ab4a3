package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/clinic-admin/internal/admin"
	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var dbInspectCmd = &cobra.Command{
	Use:   "inspect [table]",
	Short: "Show the column names of a table",
	Long: `Fetches at most one row from the table (default: workers) and prints the
field names present on it. An empty table cannot be inspected this way.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDBInspect,
}

func init() {
	dbCmd.AddCommand(dbInspectCmd)
	dbInspectCmd.Flags().Bool("json", false, "Output as JSON")
}

func runDBInspect(cmd *cobra.Command, args []string) error {
	table := "workers"
	if len(args) == 1 {
		table = args[0]
	}
	if err := admin.ValidateIdentifier("table", table); err != nil {
		return err
	}

	ctx := context.Background()
	cfg := config.Load()
	backend, closeBackend, err := openBackend(ctx, cfg, mustGetBool(cmd, "direct"))
	if err != nil {
		return err
	}
	defer closeBackend()

	result, err := admin.InspectTable(ctx, backend, table)
	if err != nil {
		logRemoteError(log.Error(), err).Str("table", table).Msg("inspect failed")
		return err
	}

	if result.Empty {
		log.Warn().Str("table", table).Msg("table is empty")
	} else {
		log.Info().Str("table", table).Strs("fields", result.Fields).Msg("table inspected")
	}

	if mustGetBool(cmd, "json") {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message())
	return nil
}
