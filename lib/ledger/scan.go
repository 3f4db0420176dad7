package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"github.com/tarancss/supply/lib/config"
	"github.com/tarancss/supply/lib/metrics"
)

// Scan implements Provider for Etherscan compatible APIs (Etherscan, BscScan, ...).
type Scan struct {
	url string
	key string
	c   *http.Client
}

// NewScan returns a Scan client for the API at url authenticated with key. If c is nil, http.DefaultClient is used so
// no timeout other than the transport's own applies.
func NewScan(url, key string, c *http.Client) *Scan {
	if c == nil {
		c = http.DefaultClient
	}

	return &Scan{url: url, key: key, c: c}
}

// TotalSupply returns the provider response to a total supply query for the token at contract.
func (s *Scan) TotalSupply(ctx context.Context, contract string) (string, error) {
	return s.get(ctx, QuerySupply, "?module=stats&action=tokensupply&contractaddress="+contract+"&apikey="+s.key)
}

// Balance returns the provider response to a query for the balance of holder in the token at contract.
func (s *Scan) Balance(ctx context.Context, contract, holder string) (string, error) {
	return s.get(ctx, QueryBalance, "?module=account&action=tokenbalance&contractaddress="+contract+
		"&address="+holder+"&tag=latest&apikey="+s.key)
}

// get places a single GET request, without retries, and returns the response body.
func (s *Scan) get(ctx context.Context, query, params string) (res string, err error) {
	defer func() {
		if err != nil {
			metrics.ProviderQuery(query, "failed")
		} else {
			metrics.ProviderQuery(query, "ok")
		}
	}()

	if s.url == "" {
		return "", fmt.Errorf("ledger provider url: %w", config.ErrMissing)
	}

	// the url carries the api key, errors must not print it
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+params, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTransport, query, unwrapURL(err))
	}

	resp, err := s.c.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTransport, query, unwrapURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: reading body: %v", ErrTransport, query, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: http status %d", ErrTransport, query, resp.StatusCode)
	}

	log.Debugf("ledger %s response: %s", query, body)

	return string(body), nil
}

// unwrapURL strips the request url from err.
func unwrapURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}

	return err
}
