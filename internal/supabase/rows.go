package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Query narrows a row selection. Filters use PostgREST operators,
// e.g. {"face_descriptor": {"not.is.null"}}.
type Query struct {
	Columns string // comma-separated column list, "*" when empty
	Filters url.Values
	Order   string
	Limit   int // 0 means no limit
}

func (q Query) values() url.Values {
	v := url.Values{}
	for key, vals := range q.Filters {
		for _, val := range vals {
			v.Add(key, val)
		}
	}
	columns := q.Columns
	if columns == "" {
		columns = "*"
	}
	v.Set("select", columns)
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Select returns the rows of table matching q.
func (c *Client) Select(ctx context.Context, table string, q Query) ([]map[string]any, error) {
	if table == "" {
		return nil, errors.New("table name is required")
	}
	rows, err := doJSON[[]map[string]any](ctx, c, request{
		method:   http.MethodGet,
		segments: []string{table},
		query:    q.values(),
	}, http.StatusOK, http.StatusPartialContent)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}

// FetchRows returns at most limit rows of table with all columns.
func (c *Client) FetchRows(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	return c.Select(ctx, table, Query{Limit: limit})
}

// ErrNoRowsUpdated is returned by Update when its filters matched nothing.
var ErrNoRowsUpdated = errors.New("no rows matched the update filter")

// Update patches every row of table matched by filters with values.
// Empty filters are rejected so a typo cannot rewrite a whole table.
// The gateway answers a PATCH that matches no rows with success, so the
// updated rows are requested back and an empty result is ErrNoRowsUpdated.
func (c *Client) Update(ctx context.Context, table string, filters url.Values, values map[string]any) error {
	if table == "" {
		return errors.New("table name is required")
	}
	if len(filters) == 0 {
		return errors.New("update requires at least one filter")
	}
	rows, err := doJSON[[]json.RawMessage](ctx, c, request{
		method:   http.MethodPatch,
		segments: []string{table},
		query:    filters,
		body:     values,
		prefer:   "return=representation",
	}, http.StatusOK)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", table, ErrNoRowsUpdated)
	}
	return nil
}

// Eq builds an equality filter value.
func Eq(value string) string {
	return "eq." + value
}
