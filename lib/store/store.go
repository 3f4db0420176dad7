// Package store defines the interface for database implementations of the supply snapshot.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// DB holds the single current supply snapshot.
type DB interface {
	// Upsert stores s as the current snapshot. The first call assigns a new ID; later calls replace Symbol,
	// TotalSupply, CirculatingSupply and UpdatedAt in place and keep the ID. The stored snapshot is returned.
	// Implementations must make Upsert atomic so readers never see a partially written snapshot.
	Upsert(ctx context.Context, s Snapshot) (Snapshot, error)
	// Fetch returns the current snapshot. ok is false when none has been stored yet.
	Fetch(ctx context.Context) (s Snapshot, ok bool, err error)
}

// IDPrefix is the type prefix of snapshot identifiers.
const IDPrefix = "snap"

// NewID returns a new, K-sortable snapshot identifier (ie. snap_01h2xcejqtf2nbrexx3vqjhp41).
func NewID() (string, error) {
	tid, err := typeid.Generate(IDPrefix)
	if err != nil {
		return "", fmt.Errorf("cannot generate snapshot id: %w", err)
	}

	return tid.String(), nil
}

// Errors returned
var (
	ErrBadAmount = errors.New("amount is not a valid integer")
	ErrNoAmount  = errors.New("snapshot amounts must be set")
)

// Check returns ErrNoAmount if the amounts of s are missing.
func (s Snapshot) Check() error {
	if s.TotalSupply == nil || s.CirculatingSupply == nil {
		return ErrNoAmount
	}

	return nil
}
