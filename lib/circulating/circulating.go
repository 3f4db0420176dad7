// Package circulating computes the circulating supply of a token: its total supply minus the balances held by the
// configured non-circulating addresses (treasury, locked, vesting, ...). All arithmetic is done on big.Int since
// token amounts in base units routinely exceed 64 bits.
package circulating

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tarancss/supply/lib/config"
	"github.com/tarancss/supply/lib/ledger"
	"github.com/tarancss/supply/lib/metrics"
	"github.com/tarancss/supply/lib/msg"
	"github.com/tarancss/supply/lib/store"
)

// Errors returned.
var (
	// ErrConfiguration matches every error caused by a required setting missing.
	ErrConfiguration  = config.ErrMissing
	ErrProviderDomain = errors.New("ledger provider reported an error")
	ErrNotFound       = errors.New("unable to find anything saved, forgot to calculate first?")
)

// ProviderError is returned when the provider answers a query with its own error. It matches ErrProviderDomain with
// errors.Is.
type ProviderError struct {
	Query   string // ledger.QuerySupply or ledger.QueryBalance
	Address string // contract or holder queried
	Message string // as reported by the provider
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s for %s: %s", e.Query, e.Address, e.Message)
}

// Is reports whether target is ErrProviderDomain.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderDomain
}

// Aggregator computes supply snapshots and saves them to a store.
type Aggregator struct {
	p        ledger.Provider
	db       store.DB
	mb       msg.Publisher // optional
	tok      config.TokenConfig
	parallel int
}

// New returns an Aggregator for token querying p and saving to db. Snapshots are published to mb unless nil. When
// parallel is greater than one, up to parallel balances are queried at the same time.
func New(p ledger.Provider, db store.DB, mb msg.Publisher, tok config.TokenConfig, parallel int) *Aggregator {
	if dup := tok.Duplicates(); len(dup) > 0 {
		log.Warnf("Non-circulating addresses listed more than once, their balance is added each time: %v", dup)
	}

	if parallel < 1 {
		parallel = 1
	}

	return &Aggregator{p: p, db: db, mb: mb, tok: tok, parallel: parallel}
}

// Recompute fetches the total supply and the non-circulating balances, and saves the resulting snapshot. Any error
// aborts the computation and leaves the saved snapshot untouched; provider errors are returned unchanged, except
// those reported by the provider itself which are returned as *ProviderError.
func (a *Aggregator) Recompute(ctx context.Context) (s store.Snapshot, err error) {
	start := time.Now()

	defer func() {
		metrics.Recompute(start, err)
	}()

	if err = a.tok.Check(); err != nil {
		return store.Snapshot{}, err
	}

	total, err := a.totalSupply(ctx)
	if err != nil {
		return store.Snapshot{}, err
	}

	nonCirc, err := a.nonCirculating(ctx)
	if err != nil {
		return store.Snapshot{}, err
	}

	circ := new(big.Int).Sub(total, nonCirc)
	if circ.Sign() < 0 {
		log.Warnf("[%s] Non-circulating supply %s exceeds total supply %s", a.tok.Symbol, nonCirc, total)
	}

	if s, err = a.db.Upsert(ctx, store.Snapshot{Symbol: a.tok.Symbol, TotalSupply: total, CirculatingSupply: circ}); err != nil {
		return store.Snapshot{}, err
	}

	log.WithFields(log.Fields{
		"id":             s.ID,
		"symbol":         s.Symbol,
		"total":          s.TotalSupply.String(),
		"nonCirculating": nonCirc.String(),
		"circulating":    s.CirculatingSupply.String(),
	}).Info("Supply snapshot saved")

	if a.mb != nil {
		// the snapshot is already committed, a broker failure does not fail the request
		if errPub := a.mb.SendSnapshot(s); errPub != nil {
			log.Printf("[%s] Error publishing snapshot:%v", s.Symbol, errPub)
		}
	}

	return s, nil
}

// Info returns the saved snapshot, or ErrNotFound if none was computed yet.
func (a *Aggregator) Info(ctx context.Context) (store.Snapshot, error) {
	s, ok, err := a.db.Fetch(ctx)
	if err != nil {
		return store.Snapshot{}, err
	}

	if !ok {
		return store.Snapshot{}, ErrNotFound
	}

	return s, nil
}

func (a *Aggregator) totalSupply(ctx context.Context) (*big.Int, error) {
	raw, err := a.p.TotalSupply(ctx, a.tok.Contract)
	if err != nil {
		return nil, err
	}

	return value(raw, ledger.QuerySupply, a.tok.Contract)
}

func (a *Aggregator) balance(ctx context.Context, holder string) (*big.Int, error) {
	raw, err := a.p.Balance(ctx, a.tok.Contract, holder)
	if err != nil {
		return nil, err
	}

	return value(raw, ledger.QueryBalance, holder)
}

// nonCirculating returns the sum of the balances of the non-circulating addresses. The first failing address aborts
// the sum. Balances are added in the configured order whether they were fetched sequentially or not.
func (a *Aggregator) nonCirculating(ctx context.Context) (*big.Int, error) {
	addrs := a.tok.NonCirculating
	bals := make([]*big.Int, len(addrs))

	if a.parallel == 1 {
		for i, addr := range addrs {
			bal, err := a.balance(ctx, addr)
			if err != nil {
				return nil, err
			}

			bals[i] = bal
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.parallel)

		for i, addr := range addrs {
			i, addr := i, addr

			g.Go(func() error {
				// stop issuing queries once one has failed
				if err := gctx.Err(); err != nil {
					return err
				}

				bal, err := a.balance(gctx, addr)
				if err != nil {
					return err
				}

				bals[i] = bal

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	sum := new(big.Int)

	for i, bal := range bals {
		log.Debugf("[%s] Non-circulating balance of %s: %s", a.tok.Symbol, addrs[i], bal)
		sum.Add(sum, bal)
	}

	return sum, nil
}

// value parses raw and returns its amount, or a *ProviderError if the provider reported an error.
func value(raw, query, addr string) (*big.Int, error) {
	r, err := ledger.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", query, addr, err)
	}

	if !r.IsValue() {
		return nil, &ProviderError{Query: query, Address: addr, Message: r.Message}
	}

	return r.Value, nil
}
