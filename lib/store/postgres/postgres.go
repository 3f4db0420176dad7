// Package postgres implements the interface for PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" //nolint:gci // load the postgres driver that is used by the system

	"github.com/tarancss/supply/lib/store"
)

// Schema creates the snapshot table. The singleton primary key only admits TRUE, so the table holds one row at most.
const Schema = `CREATE TABLE IF NOT EXISTS snapshot (
	singleton          BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	id                 TEXT NOT NULL,
	symbol             TEXT NOT NULL,
	total_supply       NUMERIC NOT NULL,
	circulating_supply NUMERIC NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
)`

const upsertQuery = `INSERT INTO snapshot (singleton, id, symbol, total_supply, circulating_supply, updated_at)
VALUES (TRUE, $1, $2, $3::numeric, $4::numeric, $5)
ON CONFLICT (singleton) DO UPDATE SET
	symbol = EXCLUDED.symbol,
	total_supply = EXCLUDED.total_supply,
	circulating_supply = EXCLUDED.circulating_supply,
	updated_at = EXCLUDED.updated_at
RETURNING id, symbol, total_supply::text, circulating_supply::text, updated_at`

const fetchQuery = `SELECT id, symbol, total_supply::text, circulating_supply::text, updated_at
FROM snapshot WHERE singleton`

type Postgres struct {
	db *sql.DB
}

// New returns a postgres client connection to the specified database in 'connection'.
func New(connection string) (*Postgres, error) {
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	return &Postgres{db: db}, nil
}

// NewWithDB returns a Postgres store using an already opened database handle.
func NewWithDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the snapshot table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("cannot create snapshot table: %w", err)
	}

	return nil
}

// ClosePostgres will close any database connection. Must be called at termination time.
func (p *Postgres) ClosePostgres() error {
	return p.db.Close()
}

// Upsert saves the snapshot with a single INSERT ... ON CONFLICT statement, which postgres executes atomically. The
// generated ID is only used when the row is inserted.
func (p *Postgres) Upsert(ctx context.Context, s store.Snapshot) (store.Snapshot, error) {
	if err := s.Check(); err != nil {
		return store.Snapshot{}, err
	}

	id, err := store.NewID()
	if err != nil {
		return store.Snapshot{}, err
	}

	row := p.db.QueryRowContext(ctx, upsertQuery, id, s.Symbol, s.TotalSupply.String(), s.CirculatingSupply.String(),
		time.Now().UTC())

	res, err := scan(row)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("could not save snapshot in db: %w", err)
	}

	return res, nil
}

// Fetch loads the snapshot from db.
func (p *Postgres) Fetch(ctx context.Context) (store.Snapshot, bool, error) {
	s, err := scan(p.db.QueryRowContext(ctx, fetchQuery))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, false, nil
	}

	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("could not load snapshot from db: %w", err)
	}

	return s, true, nil
}

func scan(row *sql.Row) (s store.Snapshot, err error) {
	var total, circ string

	if err = row.Scan(&s.ID, &s.Symbol, &total, &circ, &s.UpdatedAt); err != nil {
		return
	}

	if s.TotalSupply, err = store.ParseAmount(total); err != nil {
		return
	}

	s.CirculatingSupply, err = store.ParseAmount(circ)
	s.UpdatedAt = s.UpdatedAt.UTC()

	return
}

var _ store.DB = (*Postgres)(nil)
