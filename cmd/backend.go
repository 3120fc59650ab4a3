package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kozaktomas/clinic-admin/internal/admin"
	"github.com/kozaktomas/clinic-admin/internal/config"
	"github.com/kozaktomas/clinic-admin/internal/database/postgres"
	"github.com/kozaktomas/clinic-admin/internal/supabase"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	_ admin.Backend = (*supabase.Client)(nil)
	_ admin.Backend = (*postgres.Pool)(nil)
)

// newSupabaseClient builds the remote-procedure client from configuration.
func newSupabaseClient(cfg *config.Config) (*supabase.Client, error) {
	if err := cfg.Supabase.Validate(); err != nil {
		return nil, err
	}
	client, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return client, nil
}

// openPool connects directly to Postgres using DATABASE_URL.
func openPool(ctx context.Context, cfg *config.Config) (*postgres.Pool, error) {
	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return pool, nil
}

// openBackend returns the admin backend: a direct connection when direct is
// set, the Supabase remote-procedure surface otherwise. The returned close
// function is always non-nil.
func openBackend(ctx context.Context, cfg *config.Config, direct bool) (admin.Backend, func(), error) {
	if direct {
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, func() {}, err
		}
		log.Debug().Msg("using direct PostgreSQL connection")
		return pool, func() { pool.Close() }, nil
	}

	client, err := newSupabaseClient(cfg)
	if err != nil {
		return nil, func() {}, err
	}
	log.Debug().Str("url", cfg.Supabase.URL).Msg("using Supabase remote procedures")
	return client, func() {}, nil
}

// logRemoteError logs err, expanding PostgREST error details when present.
func logRemoteError(ev *zerolog.Event, err error) *zerolog.Event {
	if apiErr, ok := supabase.AsAPIError(err); ok {
		return ev.Object("remote", apiErr)
	}
	return ev.Err(err)
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
