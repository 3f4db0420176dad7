package store

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// Snapshot contains the fields of the computed supply saved to DB. Amounts are exact integers in the token's base
// units; CirculatingSupply is negative when the non-circulating balances exceed the total supply.
type Snapshot struct {
	ID                string
	Symbol            string
	TotalSupply       *big.Int
	CirculatingSupply *big.Int
	UpdatedAt         time.Time
}

// Copy returns a deep copy of s.
func (s Snapshot) Copy() Snapshot {
	c := s
	if s.TotalSupply != nil {
		c.TotalSupply = new(big.Int).Set(s.TotalSupply)
	}

	if s.CirculatingSupply != nil {
		c.CirculatingSupply = new(big.Int).Set(s.CirculatingSupply)
	}

	return c
}

// snapshotJSON is the wire form of a Snapshot. Amounts travel as decimal strings so clients do not lose precision.
type snapshotJSON struct {
	ID                string    `json:"id,omitempty"`
	Name              string    `json:"name"`
	TotalSupply       string    `json:"totalSupply"`
	CirculatingSupply string    `json:"circulatingSupply"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		ID:                s.ID,
		Name:              s.Symbol,
		TotalSupply:       Amount(s.TotalSupply),
		CirculatingSupply: Amount(s.CirculatingSupply),
		UpdatedAt:         s.UpdatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var v snapshotJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	total, err := ParseAmount(v.TotalSupply)
	if err != nil {
		return err
	}

	circ, err := ParseAmount(v.CirculatingSupply)
	if err != nil {
		return err
	}

	*s = Snapshot{ID: v.ID, Symbol: v.Name, TotalSupply: total, CirculatingSupply: circ, UpdatedAt: v.UpdatedAt}

	return nil
}

// Amount returns the decimal text of v, "0" if nil.
func Amount(v *big.Int) string {
	if v == nil {
		return "0"
	}

	return v.String()
}

// ParseAmount parses the decimal text of a signed integer amount.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}

	return v, nil
}
