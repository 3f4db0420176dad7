package ledger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarancss/supply/lib/config"
)

const (
	contract = "0xfe1d7f7a8f0bda6e415593a2e4f82c64b446d404"
	holder   = "0x8a4b3b0f1d9c8d2b0e4a3c2b1a0f9e8d7c6b5a49"
)

func TestScanQueries(t *testing.T) {
	var got []string

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":"100"}`))
	}))
	defer mock.Close()

	s := NewScan(mock.URL+"/api", "KEY", nil)

	raw, err := s.TotalSupply(context.Background(), contract)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"1","message":"OK","result":"100"}`, raw)

	_, err = s.Balance(context.Background(), contract, holder)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "module=stats&action=tokensupply&contractaddress="+contract+"&apikey=KEY", got[0])
	assert.Equal(t, "module=account&action=tokenbalance&contractaddress="+contract+"&address="+holder+
		"&tag=latest&apikey=KEY", got[1])
}

func TestScanHTTPStatus(t *testing.T) {
	calls := 0

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		w.WriteHeader(http.StatusBadGateway)
	}))
	defer mock.Close()

	s := NewScan(mock.URL, "KEY", nil)

	_, err := s.Balance(context.Background(), contract, holder)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, 1, calls, "no retries expected")
}

func TestScanConnectionFailure(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := mock.URL
	mock.Close()

	s := NewScan(url, "SECRETKEY", nil)

	_, err := s.TotalSupply(context.Background(), contract)
	require.True(t, errors.Is(err, ErrTransport))
	assert.NotContains(t, err.Error(), "SECRETKEY")
}

func TestScanBadRequestURL(t *testing.T) {
	s := NewScan("http://example.invalid/api", "SECRETKEY", nil)

	_, err := s.TotalSupply(context.Background(), "0xabc\x7f")
	require.True(t, errors.Is(err, ErrTransport))
	assert.NotContains(t, err.Error(), "SECRETKEY")

	_, err = s.Balance(context.Background(), contract, "0xabc\x7f")
	require.True(t, errors.Is(err, ErrTransport))
	assert.NotContains(t, err.Error(), "SECRETKEY")
}

func TestScanMissingURL(t *testing.T) {
	_, err := NewScan("", "KEY", nil).TotalSupply(context.Background(), contract)
	assert.True(t, errors.Is(err, config.ErrMissing))
}
