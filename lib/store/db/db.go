// Package db implements the opening and graceful closing of database connections.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarancss/supply/lib/store"
	"github.com/tarancss/supply/lib/store/memory"
	"github.com/tarancss/supply/lib/store/mongo"
	"github.com/tarancss/supply/lib/store/postgres"
)

const (
	MEMORY   string = "memory"
	MONGODB  string = "mongodb"
	POSTGRES string = "postgresql"
)

// ErrUnknownDB is returned for database types not implemented.
var ErrUnknownDB = errors.New("unknown database type")

// New returns a new database connection according to the options (database type). Postgres databases get the
// snapshot table created if missing.
func New(options, connection string) (store.DB, error) {
	switch options {
	case MEMORY, "":
		return memory.New(), nil
	case MONGODB:
		return mongo.New(connection)
	case POSTGRES:
		p, err := postgres.New(connection)
		if err != nil {
			return nil, err
		}

		if err = p.Migrate(context.Background()); err != nil {
			_ = p.ClosePostgres()

			return nil, err
		}

		return p, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownDB, options)
}

// Close gracefully closes the database connection.
func Close(options string, dh store.DB) error {
	switch options {
	case MEMORY, "":
		return dh.(*memory.Memory).CloseMemory()
	case MONGODB:
		return dh.(*mongo.Mongo).CloseMongo()
	case POSTGRES:
		return dh.(*postgres.Postgres).ClosePostgres()
	}

	return nil
}
