// Package ledger defines the interface to the ledger-data provider that reports token supplies and balances, and the
// parser for its responses.
package ledger

import (
	"context"
	"errors"
)

// Provider issues the read-only queries required to compute a token supply. Both methods return the raw response
// text of the provider, which is meant to be decoded with Parse.
type Provider interface {
	TotalSupply(ctx context.Context, contract string) (string, error)
	Balance(ctx context.Context, contract, holder string) (string, error)
}

// Query names, used in errors and metrics.
const (
	QuerySupply  = "tokensupply"
	QueryBalance = "tokenbalance"
)

// Error codes.
var (
	ErrTransport            = errors.New("ledger provider request failed")
	ErrMalformedResponse    = errors.New("malformed ledger provider response")
	ErrInvalidNumericResult = errors.New("ledger provider result is not a valid integer")
)
