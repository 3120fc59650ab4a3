package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/clinic-admin/internal/admin"
	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var dbRepairFKCmd = &cobra.Command{
	Use:   "repair-fk",
	Short: "Remove orphaned rows and recreate a foreign key constraint",
	Long: `Sends one SQL block that deletes rows whose reference column points to a
missing row, drops the constraint if present and recreates it.

Defaults repair appointments.doctor_id -> profiles.id
(constraint appointments_doctor_id_fkey).`,
	Args: cobra.NoArgs,
	RunE: runDBRepairFK,
}

func init() {
	dbCmd.AddCommand(dbRepairFKCmd)

	def := admin.DoctorForeignKey()
	dbRepairFKCmd.Flags().String("table", def.Table, "Referencing table")
	dbRepairFKCmd.Flags().String("column", def.Column, "Referencing column")
	dbRepairFKCmd.Flags().String("ref-table", def.RefTable, "Referenced table")
	dbRepairFKCmd.Flags().String("ref-column", def.RefColumn, "Referenced column")
	dbRepairFKCmd.Flags().String("name", def.Name, "Constraint name")
	dbRepairFKCmd.Flags().String("on-delete", "", "ON DELETE action (CASCADE, RESTRICT, SET NULL, NO ACTION)")
	dbRepairFKCmd.Flags().Bool("dry-run", false, "Print the SQL block without sending it")
}

func foreignKeyFromFlags(cmd *cobra.Command) admin.ForeignKey {
	return admin.ForeignKey{
		Table:     mustGetString(cmd, "table"),
		Column:    mustGetString(cmd, "column"),
		RefTable:  mustGetString(cmd, "ref-table"),
		RefColumn: mustGetString(cmd, "ref-column"),
		Name:      mustGetString(cmd, "name"),
		OnDelete:  mustGetString(cmd, "on-delete"),
	}
}

func runDBRepairFK(cmd *cobra.Command, args []string) error {
	fk := foreignKeyFromFlags(cmd)
	if err := fk.Validate(); err != nil {
		return err
	}

	if mustGetBool(cmd, "dry-run") {
		fmt.Fprintln(cmd.OutOrStdout(), fk.RepairSQL())
		return nil
	}

	ctx := context.Background()
	cfg := config.Load()
	backend, closeBackend, err := openBackend(ctx, cfg, mustGetBool(cmd, "direct"))
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := admin.RepairForeignKey(ctx, backend, fk); err != nil {
		logRemoteError(log.Error(), err).Str("constraint", fk.ConstraintName()).Msg("foreign key repair failed")
		return err
	}

	log.Info().
		Str("constraint", fk.ConstraintName()).
		Str("table", fk.Table).
		Str("references", fk.RefTable).
		Msg("foreign key repaired")
	fmt.Fprintf(cmd.OutOrStdout(), "Constraint %s repaired: %s.%s -> %s.%s\n",
		fk.ConstraintName(), fk.Table, fk.Column, fk.RefTable, fk.RefColumn)
	return nil
}
