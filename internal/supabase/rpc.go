package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Remote procedure names installed by migration 0001_admin_rpc.sql.
const (
	FuncExecSQL              = "exec_sql"
	FuncAddColumnIfNotExists = "add_column_if_not_exists"
)

// RPC calls a database function and returns its raw JSON result.
// Functions returning void yield a nil result.
func (c *Client) RPC(ctx context.Context, fn string, params any) (json.RawMessage, error) {
	if fn == "" {
		return nil, errors.New("function name is required")
	}
	if params == nil {
		params = map[string]any{}
	}
	return doJSON[json.RawMessage](ctx, c, request{
		method:   http.MethodPost,
		segments: []string{"rpc", fn},
		body:     params,
	}, http.StatusOK, http.StatusNoContent)
}

// ExecSQL runs an arbitrary SQL block through the exec_sql function.
// The function executes the whole block inside one transaction.
func (c *Client) ExecSQL(ctx context.Context, query string) error {
	_, err := c.RPC(ctx, FuncExecSQL, map[string]string{"query": query})
	return err
}

// AddColumnIfNotExists adds a column through the guarded schema-change function.
// It is a no-op on the server when the column already exists.
func (c *Client) AddColumnIfNotExists(ctx context.Context, table, column, columnType string) error {
	_, err := c.RPC(ctx, FuncAddColumnIfNotExists, map[string]string{
		"table_name":  table,
		"column_name": column,
		"column_type": columnType,
	})
	return err
}
