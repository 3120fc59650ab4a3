package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/clinic-admin/internal/admin"
	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var dbAddColumnCmd = &cobra.Command{
	Use:   "add-column",
	Short: "Add a column if it does not exist",
	Long: `Calls add_column_if_not_exists (or ALTER TABLE ... ADD COLUMN IF NOT EXISTS
with --direct). Running it again is a no-op.

When the call fails the equivalent SQL statement is printed for manual
execution and the command still succeeds, unless --strict is given.
The statement is never executed automatically.

Defaults add workers.face_descriptor jsonb.`,
	Args: cobra.NoArgs,
	RunE: runDBAddColumn,
}

func init() {
	dbCmd.AddCommand(dbAddColumnCmd)

	def := admin.FaceDescriptorColumn()
	dbAddColumnCmd.Flags().String("table", def.Table, "Table name")
	dbAddColumnCmd.Flags().String("column", def.Name, "Column name")
	dbAddColumnCmd.Flags().String("type", def.Type, "Column type")
	dbAddColumnCmd.Flags().Bool("strict", false, "Exit with an error when the column could not be added")
}

func runDBAddColumn(cmd *cobra.Command, args []string) error {
	col := admin.Column{
		Table: mustGetString(cmd, "table"),
		Name:  mustGetString(cmd, "column"),
		Type:  mustGetString(cmd, "type"),
	}
	if err := col.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	cfg := config.Load()
	backend, closeBackend, err := openBackend(ctx, cfg, mustGetBool(cmd, "direct"))
	if err != nil {
		return err
	}
	defer closeBackend()

	result := admin.AddColumn(ctx, backend, col)
	out := cmd.OutOrStdout()

	if result.OK() {
		log.Info().Str("table", col.Table).Str("column", col.Name).Str("type", col.Type).Msg("column present")
		fmt.Fprintf(out, "Column %s.%s (%s) is present\n", col.Table, col.Name, col.Type)
		return nil
	}

	logRemoteError(log.Warn(), result.Err).Str("table", col.Table).Str("column", col.Name).Msg("add column failed")
	fmt.Fprintln(out, "Could not add the column automatically. Run this SQL manually:")
	fmt.Fprintln(out, result.FallbackSQL)

	if mustGetBool(cmd, "strict") {
		return errors.Join(errors.New("column was not added"), result.Err)
	}
	return nil
}
