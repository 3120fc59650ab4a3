package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Column names a column to add to a table.
type Column struct {
	Table string
	Name  string
	Type  string
}

// FaceDescriptorColumn is workers.face_descriptor, a JSON array of numbers.
func FaceDescriptorColumn() Column {
	return Column{Table: "workers", Name: "face_descriptor", Type: "jsonb"}
}

// Validate checks the table, column and type names.
func (c Column) Validate() error {
	if err := ValidateIdentifier("table", c.Table); err != nil {
		return err
	}
	if err := ValidateIdentifier("column", c.Name); err != nil {
		return err
	}
	return ValidateColumnType(c.Type)
}

// FallbackSQL is the statement an operator can run by hand. It names the
// same objects as the remote function, which quotes identifiers.
func (c Column) FallbackSQL() string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s;",
		fallbackIdentifier(c.Table), fallbackIdentifier(c.Name), c.Type)
}

// fallbackIdentifier leaves lower-case names bare and quotes the rest, which
// Postgres would otherwise fold to lower case.
func fallbackIdentifier(name string) string {
	if name == strings.ToLower(name) {
		return name
	}
	return pq.QuoteIdentifier(name)
}

// ColumnResult reports how AddColumn went.
// On failure Err is set and FallbackSQL carries the manual instruction.
type ColumnResult struct {
	Column      Column
	Err         error
	FallbackSQL string
}

// OK reports whether the column is known to exist.
func (r ColumnResult) OK() bool {
	return r.Err == nil
}

// AddColumn asks the backend to add the column if it is missing.
// It never returns an error: failures degrade to a fallback statement for
// manual execution, and the raw SQL is never run from here.
func AddColumn(ctx context.Context, adder ColumnAdder, col Column) ColumnResult {
	result := ColumnResult{Column: col}

	if err := col.Validate(); err != nil {
		result.Err = err
		return result
	}

	if err := adder.AddColumnIfNotExists(ctx, col.Table, col.Name, col.Type); err != nil {
		result.Err = fmt.Errorf("add column %s.%s: %w", col.Table, col.Name, err)
		result.FallbackSQL = col.FallbackSQL()
	}
	return result
}
