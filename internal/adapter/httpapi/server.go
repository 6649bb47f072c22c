// Package httpapi exposes the sync engine over a small JSON API. It
// mirrors the engine's error taxonomy onto HTTP status codes and never
// leaks the access URL back to the client.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/syncer"
)

const dateLayout = "2006-01-02"

// Server handles sync requests.
type Server struct {
	Sync        *syncer.Service
	Connections domain.ConnectionRepository
	Logger      *log.Logger
}

// NewServer creates the transport adapter.
func NewServer(sync *syncer.Service, connections domain.ConnectionRepository, logger *log.Logger) *Server {
	return &Server{Sync: sync, Connections: connections, Logger: logger}
}

// Routes returns the HTTP handler for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sync", s.handleSync)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// SyncRequest is the body of POST /sync.
type SyncRequest struct {
	AccessURL    string `json:"accessUrl"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	BalancesOnly bool   `json:"balancesOnly,omitempty"`
}

// SyncResponse is the success body of POST /sync.
type SyncResponse struct {
	Success      bool              `json:"success"`
	Accounts     []AccountJSON     `json:"accounts"`
	Transactions []TransactionJSON `json:"transactions"`
	Errors       []string          `json:"errors"`
	SyncedAt     time.Time         `json:"syncedAt"`
}

// ErrorResponse is the failure body for every non-2xx outcome.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}
	if req.AccessURL == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "accessUrl is required")
		return
	}

	opts, err := parseOptions(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	conn, err := s.findOrCreateConnection(r, req.AccessURL)
	if err != nil {
		s.logf("httpapi: resolving connection: %v", err)
		writeError(w, http.StatusInternalServerError, "SYNC_FAILED", "could not resolve connection")
		return
	}

	outcome, err := s.Sync.Sync(r.Context(), conn, opts)
	if err != nil {
		status, code := mapError(err)
		writeError(w, status, code, err.Error())
		return
	}

	transactions := make([]TransactionJSON, 0, len(outcome.NewTransactions)+len(outcome.UpdatedTransactions))
	for _, tx := range outcome.NewTransactions {
		transactions = append(transactions, toTransactionJSON(tx))
	}
	for _, tx := range outcome.UpdatedTransactions {
		transactions = append(transactions, toTransactionJSON(tx))
	}

	accounts := make([]AccountJSON, 0, len(outcome.Accounts))
	for _, acct := range outcome.Accounts {
		accounts = append(accounts, toAccountJSON(acct))
	}

	errs := outcome.Errors
	if errs == nil {
		errs = []string{}
	}

	writeJSON(w, http.StatusOK, SyncResponse{
		Success:      true,
		Accounts:     accounts,
		Transactions: transactions,
		Errors:       errs,
		SyncedAt:     outcome.SyncedAt,
	})
}

func (s *Server) findOrCreateConnection(r *http.Request, accessURL string) (*domain.Connection, error) {
	conn, err := s.Connections.GetByAccessURL(r.Context(), accessURL)
	if err == nil {
		return conn, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	conn = &domain.Connection{
		ID:        uuid.New(),
		Provider:  "simplefin",
		AccessURL: accessURL,
		Status:    domain.ConnectionStatusActive,
	}
	if err := s.Connections.Create(r.Context(), conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func parseOptions(req SyncRequest) (syncer.Options, error) {
	var opts syncer.Options
	if req.StartDate != "" {
		t, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return opts, errors.New("startDate must be formatted YYYY-MM-DD")
		}
		opts.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return opts, errors.New("endDate must be formatted YYYY-MM-DD")
		}
		opts.EndDate = &t
	}
	opts.BalancesOnly = req.BalancesOnly
	return opts, nil
}

// mapError converts the sync error taxonomy to a status code and a
// machine-readable error code.
func mapError(err error) (int, string) {
	var serverErr *domain.ServerError
	var netErr *domain.NetworkError

	switch {
	case errors.Is(err, domain.ErrInvalidAccessURL):
		return http.StatusBadRequest, "INVALID_ACCESS_URL"
	case errors.Is(err, domain.ErrAuthExpired):
		return http.StatusUnauthorized, "NEEDS_REAUTH"
	case errors.Is(err, domain.ErrFetchTimeout):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusInternalServerError, "MALFORMED_RESPONSE"
	case errors.As(err, &serverErr):
		return http.StatusInternalServerError, "UPSTREAM_ERROR"
	case errors.As(err, &netErr):
		return http.StatusInternalServerError, "NETWORK_ERROR"
	default:
		return http.StatusInternalServerError, "SYNC_FAILED"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
