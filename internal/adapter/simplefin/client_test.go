package simplefin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

const accountSetBody = `{
	"errors": ["Connectivity degraded at Example Bank"],
	"accounts": [{
		"id": "acct-1",
		"name": "Everyday Chequing",
		"currency": "CAD",
		"balance": "1234.56",
		"available-balance": "1200.00",
		"balance-date": 1709654400,
		"org": {"domain": "examplebank.ca", "name": "Example Bank"},
		"transactions": [{
			"id": "txn-1",
			"posted": 1709600000,
			"amount": "-12.50",
			"description": "POS DEBIT TIM HORTONS",
			"pending": false
		}]
	}]
}`

func testCreds(ts *httptest.Server) Credentials {
	return Credentials{BaseURL: ts.URL + "/", Username: "u", Password: "p"}
}

func TestFetchAccounts_SendsAuthAndQuery(t *testing.T) {
	var gotReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(accountSetBody))
	}))
	defer ts.Close()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	client := NewClient(0)
	set, err := client.FetchAccounts(context.Background(), testCreds(ts), FetchOptions{
		StartDate:  &start,
		EndDate:    &end,
		AccountIDs: []string{"acct-1", "acct-2"},
		Pending:    true,
	})

	require.NoError(t, err)
	require.NotNil(t, gotReq)

	user, pass, ok := gotReq.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", pass)
	assert.Equal(t, "application/json", gotReq.Header.Get("Accept"))
	assert.Equal(t, "/accounts", gotReq.URL.Path)

	q := gotReq.URL.Query()
	assert.Equal(t, "1709251200", q.Get("start-date"))
	assert.Equal(t, "1711843200", q.Get("end-date"))
	assert.Equal(t, []string{"acct-1", "acct-2"}, q["account"])
	assert.Equal(t, "1", q.Get("pending"))
	assert.Empty(t, q.Get("balances-only"))

	require.Len(t, set.Accounts, 1)
	assert.Equal(t, "Everyday Chequing", set.Accounts[0].Name)
	assert.Equal(t, "1234.56", set.Accounts[0].Balance)
	require.Len(t, set.Accounts[0].Transactions, 1)
	assert.Equal(t, int64(1709600000), set.Accounts[0].Transactions[0].Posted)
	assert.Equal(t, []string{"Connectivity degraded at Example Bank"}, set.Errors)
}

func TestFetchAccounts_CredentialRejectionMeansReauth(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusGone} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewClient(0)
		_, err := client.FetchAccounts(context.Background(), testCreds(ts), FetchOptions{})

		assert.ErrorIs(t, err, domain.ErrAuthExpired, "status %d", status)
		ts.Close()
	}
}

func TestFetchAccounts_ServerErrorCarriesStatusAndBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream maintenance"))
	}))
	defer ts.Close()

	client := NewClient(0)
	_, err := client.FetchAccounts(context.Background(), testCreds(ts), FetchOptions{})

	var serverErr *domain.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.Status)
	assert.Equal(t, "upstream maintenance", serverErr.Body)
}

func TestFetchAccounts_TimeoutAbortsRequest(t *testing.T) {
	done := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer ts.Close()
	defer close(done)

	client := NewClient(50 * time.Millisecond)
	_, err := client.FetchAccounts(context.Background(), testCreds(ts), FetchOptions{})

	assert.ErrorIs(t, err, domain.ErrFetchTimeout)
}

func TestFetchAccounts_NetworkFailureIsClassified(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	client := NewClient(0)
	_, err := client.FetchAccounts(context.Background(), testCreds(ts), FetchOptions{})

	var netErr *domain.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestFetchAccounts_MalformedPayloadIsRejected(t *testing.T) {
	bodies := map[string]string{
		"not json":         "<html>oops</html>",
		"missing accounts": `{"errors": []}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer ts.Close()

			client := NewClient(0)
			_, err := client.FetchAccounts(context.Background(), testCreds(ts), FetchOptions{})

			assert.ErrorIs(t, err, domain.ErrMalformedPayload)
		})
	}
}
