package simplefin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// DefaultTimeout is the hard wait bound on the accounts read. The
// request is aborted once it elapses; an aborted call never yields a
// partial payload.
const DefaultTimeout = 25 * time.Second

const maxErrorBody = 4 << 10

// FetchOptions narrow the accounts read. Zero-value fields are omitted
// from the query.
type FetchOptions struct {
	StartDate    *time.Time
	EndDate      *time.Time
	AccountIDs   []string
	Pending      bool
	BalancesOnly bool
}

// Client issues authenticated reads against the aggregator. It performs
// no retries; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a Client with the given wait bound. A non-positive
// timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// FetchAccounts reads the account set (with transactions) for the given
// credentials. Failure classification:
//   - credentials rejected or claim gone -> domain.ErrAuthExpired
//   - wait bound exceeded               -> domain.ErrFetchTimeout
//   - transport failure                 -> *domain.NetworkError
//   - other non-2xx status              -> *domain.ServerError
//   - undecodable or accounts-less body -> domain.ErrMalformedPayload
func (c *Client) FetchAccounts(ctx context.Context, creds Credentials, opts FetchOptions) (*AccountSet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, creds.BaseURL+"accounts", nil)
	if err != nil {
		return nil, fmt.Errorf("build accounts request: %w", err)
	}
	req.URL.RawQuery = buildQuery(opts).Encode()
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrFetchTimeout
		}
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusGone:
		// Rejected credentials and a revoked/expired claim both mean the
		// same thing to the user: reconnect required.
		return nil, domain.ErrAuthExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ServerError{Status: resp.StatusCode, Body: string(body)}
	}

	var set AccountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if set.Accounts == nil {
		return nil, fmt.Errorf("%w: missing accounts array", domain.ErrMalformedPayload)
	}

	return &set, nil
}

func buildQuery(opts FetchOptions) url.Values {
	q := url.Values{}
	if opts.StartDate != nil {
		q.Set("start-date", strconv.FormatInt(opts.StartDate.Unix(), 10))
	}
	if opts.EndDate != nil {
		q.Set("end-date", strconv.FormatInt(opts.EndDate.Unix(), 10))
	}
	for _, id := range opts.AccountIDs {
		q.Add("account", id)
	}
	if opts.Pending {
		q.Set("pending", "1")
	}
	if opts.BalancesOnly {
		q.Set("balances-only", "1")
	}
	return q
}
