// Package postgres is the direct-connection admin backend. It runs the same
// operations as the Supabase remote procedures over DATABASE_URL and owns the
// versioned migration list.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kozaktomas/clinic-admin/internal/config"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 10 * time.Second

// Pool wraps a database/sql handle to the clinic database.
type Pool struct {
	db *sql.DB
}

// NewPool opens and pings a connection. Admin commands are short lived, so
// the pool stays small.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Debug().Int("max_open", cfg.MaxOpenConns).Msg("database connection ready")
	return &Pool{db: db}, nil
}

// NewPoolFromDB wraps an existing handle, e.g. a sqlmock connection.
func NewPoolFromDB(db *sql.DB) *Pool {
	return &Pool{db: db}
}

func (p *Pool) DB() *sql.DB {
	return p.db
}

func (p *Pool) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// inTx commits when fn succeeds and rolls back otherwise.
func (p *Pool) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
