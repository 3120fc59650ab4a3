package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ForeignKey describes a foreign key relationship between two tables.
type ForeignKey struct {
	Table     string
	Column    string
	RefTable  string
	RefColumn string
	Name      string // defaults to <table>_<column>_fkey
	OnDelete  string // CASCADE, RESTRICT, SET NULL, NO ACTION or empty
}

// DoctorForeignKey is the appointments.doctor_id -> profiles.id constraint.
func DoctorForeignKey() ForeignKey {
	return ForeignKey{
		Table:     "appointments",
		Column:    "doctor_id",
		RefTable:  "profiles",
		RefColumn: "id",
		Name:      "appointments_doctor_id_fkey",
	}
}

var validDeleteActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// ConstraintName returns the explicit name or the Postgres default.
func (fk ForeignKey) ConstraintName() string {
	if fk.Name != "" {
		return fk.Name
	}
	return fmt.Sprintf("%s_%s_fkey", fk.Table, fk.Column)
}

// Validate checks identifiers and the delete policy.
func (fk ForeignKey) Validate() error {
	checks := []struct{ kind, name string }{
		{"table", fk.Table},
		{"column", fk.Column},
		{"reference table", fk.RefTable},
		{"reference column", fk.RefColumn},
		{"constraint", fk.ConstraintName()},
	}
	for _, c := range checks {
		if err := ValidateIdentifier(c.kind, c.name); err != nil {
			return err
		}
	}

	if fk.OnDelete == "" {
		return nil
	}
	for _, action := range validDeleteActions {
		if strings.EqualFold(fk.OnDelete, action) {
			return nil
		}
	}
	return fmt.Errorf("invalid delete policy %q for constraint %s", fk.OnDelete, fk.ConstraintName())
}

// RepairSQL returns the three-statement block that removes orphaned rows,
// drops the constraint if present and recreates it.
func (fk ForeignKey) RepairSQL() string {
	table := pq.QuoteIdentifier(fk.Table)
	column := pq.QuoteIdentifier(fk.Column)
	ref := pq.QuoteIdentifier(fk.RefTable)
	refColumn := pq.QuoteIdentifier(fk.RefColumn)
	name := pq.QuoteIdentifier(fk.ConstraintName())

	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s\nWHERE %s.%s IS NOT NULL\n  AND NOT EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.%s);\n",
		table, table, column, ref, ref, refColumn, table, column)
	fmt.Fprintf(&b, "ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;\n", table, name)
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		table, name, column, ref, refColumn)
	if fk.OnDelete != "" {
		fmt.Fprintf(&b, " ON DELETE %s", strings.ToUpper(fk.OnDelete))
	}
	b.WriteString(";")
	return b.String()
}

// RepairForeignKey sends the repair block in a single request.
// The block is all-or-nothing on the server; only the returned error is inspected.
func RepairForeignKey(ctx context.Context, exec SQLExecutor, fk ForeignKey) error {
	if err := fk.Validate(); err != nil {
		return err
	}
	if err := exec.ExecSQL(ctx, fk.RepairSQL()); err != nil {
		return fmt.Errorf("repair constraint %s: %w", fk.ConstraintName(), err)
	}
	return nil
}
