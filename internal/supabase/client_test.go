package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "service-role-key"

// recordedRequest captures what the fake gateway received.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Header http.Header
}

func setupMockServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()

	var recorded []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		recorded = append(recorded, rec)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL, testKey)
	require.NoError(t, err)
	return client, &recorded
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		key     string
		wantErr bool
	}{
		{"valid", "https://project.supabase.co", "key", false},
		{"trailing slash", "https://project.supabase.co/", "key", false},
		{"missing url", "", "key", true},
		{"missing key", "https://project.supabase.co", "", true},
		{"bad scheme", "ftp://project.supabase.co", "key", true},
		{"missing host", "https://", "key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.url, tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecSQL(t *testing.T) {
	client, recorded := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.ExecSQL(context.Background(), "SELECT 1;")
	require.NoError(t, err)

	require.Len(t, *recorded, 1)
	req := (*recorded)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/v1/rpc/exec_sql", req.Path)
	assert.Equal(t, "SELECT 1;", req.Body["query"])
	assert.Equal(t, testKey, req.Header.Get("apikey"))
	assert.Equal(t, "Bearer "+testKey, req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestExecSQL_StructuredError(t *testing.T) {
	client, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest,
			`{"code":"42P01","details":null,"hint":"Check the table name.","message":"relation \"appointments\" does not exist"}`)
	})

	err := client.ExecSQL(context.Background(), "DELETE FROM appointments;")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok, "expected APIError, got %T", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "42P01", apiErr.Code)
	assert.Equal(t, `relation "appointments" does not exist`, apiErr.Message)
	assert.Equal(t, "Check the table name.", apiErr.Hint)
	assert.Empty(t, apiErr.Details)
	assert.Contains(t, err.Error(), "42P01")
}

func TestRPC_NonJSONError(t *testing.T) {
	client, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	_, err := client.RPC(context.Background(), "anything", nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestRPC_ReturnsResult(t *testing.T) {
	client, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})

	result, err := client.RPC(context.Background(), "health", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
}

func TestRPC_RequiresName(t *testing.T) {
	client, recorded := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.RPC(context.Background(), "", nil)
	assert.Error(t, err)
	assert.Empty(t, *recorded)
}

func TestAddColumnIfNotExists(t *testing.T) {
	client, recorded := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "null")
	})

	err := client.AddColumnIfNotExists(context.Background(), "workers", "face_descriptor", "jsonb")
	require.NoError(t, err)

	req := (*recorded)[0]
	assert.Equal(t, "/rest/v1/rpc/add_column_if_not_exists", req.Path)
	assert.Equal(t, "workers", req.Body["table_name"])
	assert.Equal(t, "face_descriptor", req.Body["column_name"])
	assert.Equal(t, "jsonb", req.Body["column_type"])
}

func TestFetchRows(t *testing.T) {
	client, recorded := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"a1","name":"Ana","face_descriptor":null}]`)
	})

	rows, err := client.FetchRows(context.Background(), "workers", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0]["name"])
	assert.Contains(t, rows[0], "face_descriptor")

	req := (*recorded)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/workers", req.Path)
	assert.Equal(t, "*", req.Query.Get("select"))
	assert.Equal(t, "1", req.Query.Get("limit"))
}

func TestFetchRows_Empty(t *testing.T) {
	client, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	rows, err := client.FetchRows(context.Background(), "workers", 1)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSelect_Filters(t *testing.T) {
	client, recorded := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	_, err := client.Select(context.Background(), "workers", Query{
		Columns: "name,face_descriptor",
		Filters: url.Values{"face_descriptor": {"not.is.null"}},
		Order:   "name.asc",
	})
	require.NoError(t, err)

	q := (*recorded)[0].Query
	assert.Equal(t, "name,face_descriptor", q.Get("select"))
	assert.Equal(t, "not.is.null", q.Get("face_descriptor"))
	assert.Equal(t, "name.asc", q.Get("order"))
	assert.Empty(t, q.Get("limit"))
}

func TestUpdate(t *testing.T) {
	client, recorded := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"0b7f6f0e-4f57-4a43-9d0c-6b1d1c3f1a2e"}]`)
	})

	err := client.Update(context.Background(), "workers",
		url.Values{"id": {Eq("0b7f6f0e-4f57-4a43-9d0c-6b1d1c3f1a2e")}},
		map[string]any{"face_descriptor": []float32{0.5, 0.25}})
	require.NoError(t, err)

	req := (*recorded)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "eq.0b7f6f0e-4f57-4a43-9d0c-6b1d1c3f1a2e", req.Query.Get("id"))
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
	assert.Equal(t, []any{0.5, 0.25}, req.Body["face_descriptor"])
}

func TestUpdate_NoMatchingRows(t *testing.T) {
	client, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	err := client.Update(context.Background(), "workers",
		url.Values{"id": {Eq("00000000-0000-0000-0000-000000000000")}},
		map[string]any{"face_descriptor": []float32{1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRowsUpdated)
	assert.False(t, IsAPIError(err))
}

func TestUpdate_MinimalResponseIsNotSuccess(t *testing.T) {
	client, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.Update(context.Background(), "workers",
		url.Values{"id": {Eq("00000000-0000-0000-0000-000000000000")}},
		map[string]any{"face_descriptor": []float32{1}})
	assert.Error(t, err)
}

func TestUpdate_RequiresFilter(t *testing.T) {
	client, recorded := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {})

	err := client.Update(context.Background(), "workers", nil, map[string]any{"name": "x"})
	assert.Error(t, err)
	assert.Empty(t, *recorded)
}

func TestIsAPIError(t *testing.T) {
	assert.False(t, IsAPIError(nil))
	assert.False(t, IsAPIError(io.EOF))
	assert.True(t, IsAPIError(&APIError{Status: 400}))
}
