// Package audit provides an optional PostgreSQL-backed record, one row per
// round id, of round outcomes: final state, success flag, and any peers blamed. It
// is entirely optional — a deployment with no Postgres configured simply
// never constructs a Store, and round execution proceeds unaudited.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/flashbots/shuffleround/wire"
)

// Config holds the PostgreSQL connection settings for a Store.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString returns the libpq connection string for this config.
func (c *Config) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// Store is a PostgreSQL-backed table of round outcomes; recording an
// outcome for a round id that already has a row overwrites that row.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool, verifies connectivity, and ensures the
// outcomes table exists.
func NewStore(cfg *Config) (*Store, error) {
	return newStore(cfg.ConnectionString())
}

// NewStoreFromDSN is the same as NewStore, but takes a ready-made libpq
// connection string instead of structured fields.
func NewStoreFromDSN(dsn string) (*Store, error) {
	return newStore(dsn)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("audit: pinging database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("audit: running migrations: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS round_outcomes (
		round_id BYTEA PRIMARY KEY,
		session_id BYTEA NOT NULL,
		final_state VARCHAR(32) NOT NULL,
		successful BOOLEAN NOT NULL,
		bad_members INTEGER[] NOT NULL DEFAULT '{}',
		recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_round_outcomes_session ON round_outcomes(session_id);
	`
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Outcome is one round's terminal result.
type Outcome struct {
	SessionID  wire.RoundID
	RoundID    wire.RoundID
	FinalState string
	Successful bool
	BadMembers []int
}

// RecordOutcome appends (or, for a re-run of the same round id,
// overwrites) one round's result.
func (s *Store) RecordOutcome(o Outcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	badMembers := make([]int64, len(o.BadMembers))
	for i, idx := range o.BadMembers {
		badMembers[i] = int64(idx)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO round_outcomes (round_id, session_id, final_state, successful, bad_members, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (round_id) DO UPDATE SET
			final_state = EXCLUDED.final_state,
			successful = EXCLUDED.successful,
			bad_members = EXCLUDED.bad_members,
			recorded_at = NOW()
	`, o.RoundID.Bytes(), o.SessionID.Bytes(), o.FinalState, o.Successful, pq.Array(badMembers))
	return err
}

// LoadOutcome retrieves a previously recorded outcome by round id.
func (s *Store) LoadOutcome(roundID wire.RoundID) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT round_id, session_id, final_state, successful, bad_members
		FROM round_outcomes WHERE round_id = $1
	`, roundID.Bytes())

	var (
		rid, sid   []byte
		finalState string
		successful bool
		badMembers []int64
	)
	if err := row.Scan(&rid, &sid, &finalState, &successful, pq.Array(&badMembers)); err != nil {
		return nil, err
	}

	out := &Outcome{
		SessionID:  wire.RoundID(sid),
		RoundID:    wire.RoundID(rid),
		FinalState: finalState,
		Successful: successful,
		BadMembers: make([]int, len(badMembers)),
	}
	for i, idx := range badMembers {
		out.BadMembers[i] = int(idx)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
