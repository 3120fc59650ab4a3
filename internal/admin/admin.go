// Package admin holds the one-shot schema maintenance operations run against
// the clinic database: foreign-key repair, table inspection and guarded
// column additions. Each operation issues a single request through an
// injected backend and never retries.
package admin

import (
	"context"
	"fmt"
	"regexp"
)

// SQLExecutor runs an arbitrary SQL block atomically.
type SQLExecutor interface {
	ExecSQL(ctx context.Context, query string) error
}

// RowFetcher returns at most limit rows of a table as column -> value maps.
type RowFetcher interface {
	FetchRows(ctx context.Context, table string, limit int) ([]map[string]any, error)
}

// ColumnAdder adds a column unless it already exists.
type ColumnAdder interface {
	AddColumnIfNotExists(ctx context.Context, table, column, columnType string) error
}

// Backend is implemented by both the remote-procedure client and the direct connection.
type Backend interface {
	SQLExecutor
	RowFetcher
	ColumnAdder
}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	columnTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*\d+(\s*,\s*\d+)?\s*\))?(\[\])?$`)
)

// ValidateIdentifier checks that name is a plain SQL identifier.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// ValidateColumnType accepts plain type names such as jsonb, varchar(255),
// numeric(10, 2), double precision or text[].
func ValidateColumnType(columnType string) error {
	if columnType == "" {
		return fmt.Errorf("column type cannot be empty")
	}
	if !columnTypePattern.MatchString(columnType) {
		return fmt.Errorf("invalid column type %q", columnType)
	}
	return nil
}
