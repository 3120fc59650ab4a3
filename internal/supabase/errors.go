package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// APIError is the structured error returned by the REST/RPC gateway.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "supabase: status %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// MarshalZerologObject lets commands log the full error payload as a nested object.
func (e *APIError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Int("status", e.Status).Str("message", e.Message)
	if e.Code != "" {
		ev.Str("code", e.Code)
	}
	if e.Details != "" {
		ev.Str("details", e.Details)
	}
	if e.Hint != "" {
		ev.Str("hint", e.Hint)
	}
}

// AsAPIError unwraps err into an *APIError if it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAPIError returns true if err carries a gateway error payload.
func IsAPIError(err error) bool {
	_, ok := AsAPIError(err)
	return ok
}

// maxErrorBody limits how much of an error response is read.
const maxErrorBody = 4096

// decodeAPIError builds an APIError from a non-2xx response body.
// Bodies that are not JSON are kept verbatim as the message.
func decodeAPIError(status int, body io.Reader) *APIError {
	apiErr := &APIError{Status: status}

	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var raw struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
		Hint    json.RawMessage `json:"hint"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}

	apiErr.Code = rawString(raw.Code)
	apiErr.Message = raw.Message
	apiErr.Details = rawString(raw.Details)
	apiErr.Hint = rawString(raw.Hint)
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// rawString renders a JSON value as a plain string: strings are unquoted,
// null becomes empty and anything else keeps its JSON form.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
