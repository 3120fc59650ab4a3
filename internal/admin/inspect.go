package admin

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Inspection is the result of sampling one row of a table.
type Inspection struct {
	Table  string   `json:"table"`
	Fields []string `json:"fields"`
	Empty  bool     `json:"empty"`
}

// Message renders the human-readable outcome.
func (i *Inspection) Message() string {
	if i.Empty {
		return fmt.Sprintf("no rows in %s; cannot infer columns", i.Table)
	}
	return fmt.Sprintf("%s columns: %s", i.Table, strings.Join(i.Fields, ", "))
}

// InspectTable fetches at most one row and reports its field names.
// Fields is exactly the key set of the returned row, sorted.
// Query errors are returned unchanged so callers can surface them verbatim.
func InspectTable(ctx context.Context, fetcher RowFetcher, table string) (*Inspection, error) {
	if err := ValidateIdentifier("table", table); err != nil {
		return nil, err
	}

	rows, err := fetcher.FetchRows(ctx, table, 1)
	if err != nil {
		return nil, err
	}

	result := &Inspection{Table: table}
	if len(rows) == 0 {
		result.Empty = true
		result.Fields = []string{}
		return result, nil
	}

	result.Fields = make([]string, 0, len(rows[0]))
	for field := range rows[0] {
		result.Fields = append(result.Fields, field)
	}
	slices.Sort(result.Fields)
	return result, nil
}
