package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/clinic-admin/internal/admin"
	"github.com/lib/pq"
)

var _ admin.Backend = (*Pool)(nil)

// ExecSQL runs a SQL block inside a single transaction.
func (p *Pool) ExecSQL(ctx context.Context, query string) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("executing statement: %w", err)
		}
		return nil
	})
}

// FetchRows returns at most limit rows of table as column -> value maps.
// Text-like values arrive as []byte and are converted to strings.
func (p *Pool) FetchRows(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if err := admin.ValidateIdentifier("table", table); err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT $1", pq.QuoteIdentifier(table)), limit)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}

// AddColumnIfNotExists adds column to table unless it is already present.
func (p *Pool) AddColumnIfNotExists(ctx context.Context, table, column, columnType string) error {
	col := admin.Column{Table: table, Name: column, Type: columnType}
	if err := col.Validate(); err != nil {
		return err
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(column), columnType)
	if _, err := p.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	return nil
}
