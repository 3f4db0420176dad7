package ledger

import (
	"fmt"
	"math/big"

	"github.com/tidwall/gjson"
)

// StatusOK is the status reported by the provider on successful queries.
const StatusOK = "1"

// unknownError is the message used when the provider reports a failure without a result.
const unknownError = "unknown provider error"

// Kind tells which variant a Result holds.
type Kind uint8

// Result variants.
const (
	KindValue Kind = iota // the provider returned an amount
	KindError             // the provider reported its own failure
)

// Result is the typed outcome of a provider response: either an exact non-negative amount or the error message
// reported by the provider. Exactly one of Value and Message is meaningful, as indicated by Kind.
type Result struct {
	Kind    Kind
	Value   *big.Int
	Message string
}

// ValueResult returns a Result holding v.
func ValueResult(v *big.Int) Result {
	return Result{Kind: KindValue, Value: v}
}

// ErrorResult returns a Result holding the provider error message msg.
func ErrorResult(msg string) Result {
	return Result{Kind: KindError, Message: msg}
}

// IsValue returns true if r holds an amount.
func (r Result) IsValue() bool {
	return r.Kind == KindValue
}

func (r Result) String() string {
	if r.IsValue() {
		return r.Value.String()
	}

	return "Error: " + r.Message
}

// Parse decodes a raw provider response into a Result. A response reporting a status other than "1" is a successful
// parse carrying the provider's message. Parse fails with ErrMalformedResponse if raw is not a JSON object or lacks
// both status and result, and with ErrInvalidNumericResult if a successful result is not a base-10 unsigned integer.
func Parse(raw string) (Result, error) {
	if !gjson.Valid(raw) {
		return Result{}, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}

	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return Result{}, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}

	status, result := field(doc, "status"), field(doc, "result")
	if status == nil && result == nil {
		return Result{}, fmt.Errorf("%w: missing status and result", ErrMalformedResponse)
	}

	if status != nil && *status == StatusOK && result != nil {
		v, err := parseAmount(*result)
		if err != nil {
			return Result{}, err
		}

		return ValueResult(v), nil
	}

	if result == nil {
		return ErrorResult(unknownError), nil
	}

	return ErrorResult(*result), nil
}

// field returns the string form of key in doc, nil when the key is absent or null.
func field(doc gjson.Result, key string) *string {
	v := doc.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}

	var s string
	if v.Type == gjson.String {
		s = v.Str
	} else {
		s = v.Raw
	}

	return &s
}

// parseAmount parses s as a base-10 unsigned integer of arbitrary size.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty result", ErrInvalidNumericResult)
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumericResult, s)
		}
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumericResult, s)
	}

	return v, nil
}
