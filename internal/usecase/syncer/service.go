// Package syncer sequences one sync attempt: fetch from the aggregator,
// normalize, reconcile against the store, categorize, persist the
// change-set, and move the connection's status machine.
package syncer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/adapter/simplefin"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/categorizer"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/normalizer"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/reconciler"
)

// Lookback windows. The first sync reaches further back so a fresh
// connection starts with history; subsequent syncs only need recent
// activity.
const (
	FirstSyncLookback   = 90 * 24 * time.Hour
	RegularSyncLookback = 30 * 24 * time.Hour
)

// Fetcher reads the account set from the aggregator.
type Fetcher interface {
	FetchAccounts(ctx context.Context, creds simplefin.Credentials, opts simplefin.FetchOptions) (*simplefin.AccountSet, error)
}

// Notifier receives sync lifecycle signals (e.g. for UI progress).
type Notifier interface {
	SyncStarted(connectionID uuid.UUID)
	SyncFinished(connectionID uuid.UUID, err error)
}

type noopNotifier struct{}

func (noopNotifier) SyncStarted(uuid.UUID)         {}
func (noopNotifier) SyncFinished(uuid.UUID, error) {}

// Options narrow one sync attempt.
type Options struct {
	StartDate    *time.Time // overrides the lookback window
	EndDate      *time.Time
	BalancesOnly bool
}

// Service is the sync orchestrator. It owns the connection status
// machine: no other component transitions Connection.Status.
//
// Not safe for two concurrent sync attempts on the same connection; the
// caller must serialize them. The persisted commands are idempotent, so
// a crash mid-apply degrades to at-least-once, never to corruption.
type Service struct {
	Fetcher      Fetcher
	Connections  domain.ConnectionRepository
	Accounts     domain.AccountRepository
	Transactions domain.TransactionRepository
	Rules        domain.RuleRepository
	Policy       reconciler.UpdatePolicy
	Notifier     Notifier
	Logger       *log.Logger
	Now          func() time.Time
}

// NewService creates a sync Service with the default posted-update
// policy and wall-clock time.
func NewService(
	fetcher Fetcher,
	connections domain.ConnectionRepository,
	accounts domain.AccountRepository,
	transactions domain.TransactionRepository,
	rules domain.RuleRepository,
) *Service {
	return &Service{
		Fetcher:      fetcher,
		Connections:  connections,
		Accounts:     accounts,
		Transactions: transactions,
		Rules:        rules,
		Policy:       reconciler.PostedImmutable,
		Notifier:     noopNotifier{},
		Now:          time.Now,
	}
}

// Sync runs one sync attempt for the connection and returns the applied
// change-set. Status transitions:
//   - aggregator rejects credentials: needs_reauth, nothing merged
//   - other fetch failure: status unchanged, error message recorded
//   - failure while merging or persisting: error
//   - success: active, LastSyncAt set, error cleared
func (s *Service) Sync(ctx context.Context, conn *domain.Connection, opts Options) (*domain.SyncOutcome, error) {
	s.Notifier.SyncStarted(conn.ID)

	creds, err := simplefin.ParseAccessURL(conn.AccessURL)
	if err != nil {
		return nil, s.fail(ctx, conn, err, conn.Status)
	}

	set, err := s.Fetcher.FetchAccounts(ctx, creds, s.fetchOptions(conn, opts))
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			return nil, s.fail(ctx, conn, err, domain.ConnectionStatusNeedsReauth)
		}
		return nil, s.fail(ctx, conn, err, conn.Status)
	}

	outcome, err := s.merge(ctx, conn, set)
	if err != nil {
		return nil, s.fail(ctx, conn, err, domain.ConnectionStatusError)
	}

	now := s.Now()
	conn.Status = domain.ConnectionStatusActive
	conn.LastSyncAt = &now
	conn.LastSyncError = nil
	if err := s.Connections.Update(ctx, conn); err != nil {
		return nil, s.fail(ctx, conn, err, domain.ConnectionStatusError)
	}

	outcome.SyncedAt = now
	s.Notifier.SyncFinished(conn.ID, nil)
	return outcome, nil
}

// merge runs the post-fetch pipeline and persists the change-set. It
// only runs on a complete, successfully parsed payload, so a fetch
// failure can never partially mutate stored state.
func (s *Service) merge(ctx context.Context, conn *domain.Connection, set *simplefin.AccountSet) (*domain.SyncOutcome, error) {
	existingAccounts, err := s.Accounts.ListByConnection(ctx, conn.ID)
	if err != nil {
		return nil, err
	}
	existingTxs, err := s.Transactions.ListByConnection(ctx, conn.ID)
	if err != nil {
		return nil, err
	}

	incomingAccounts := make([]domain.Account, 0, len(set.Accounts))
	var incomingTxs []domain.Transaction
	for _, rawAccount := range set.Accounts {
		incomingAccounts = append(incomingAccounts, normalizer.NormalizeAccount(conn.ID, rawAccount))
		for _, rawTx := range rawAccount.Transactions {
			incomingTxs = append(incomingTxs, normalizer.NormalizeTransaction(conn.ID, rawAccount.ID, rawTx))
		}
	}

	accounts := reconciler.MergeAccounts(existingAccounts, incomingAccounts)
	result := reconciler.ReconcileTransactions(existingTxs, incomingTxs, s.Policy)

	changed, err := s.categorize(ctx, append(result.New, result.Updated...))
	if err != nil {
		return nil, err
	}
	newTxs := changed[:len(result.New)]
	updatedTxs := changed[len(result.New):]

	if err := s.Accounts.Upsert(ctx, accounts); err != nil {
		return nil, err
	}
	if err := s.Transactions.Upsert(ctx, changed); err != nil {
		return nil, err
	}

	return &domain.SyncOutcome{
		Accounts:            accounts,
		NewTransactions:     newTxs,
		UpdatedTransactions: updatedTxs,
		Unchanged:           result.Unchanged,
		Errors:              set.Errors,
	}, nil
}

func (s *Service) categorize(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	if len(txs) == 0 {
		return txs, nil
	}
	rules, err := s.Rules.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.Rules.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	engine := categorizer.New(rules, categories, s.Logger)
	return engine.Apply(txs), nil
}

func (s *Service) fetchOptions(conn *domain.Connection, opts Options) simplefin.FetchOptions {
	start := opts.StartDate
	if start == nil {
		lookback := RegularSyncLookback
		if conn.NeverSynced() {
			lookback = FirstSyncLookback
		}
		from := s.Now().Add(-lookback)
		start = &from
	}
	return simplefin.FetchOptions{
		StartDate:    start,
		EndDate:      opts.EndDate,
		Pending:      true,
		BalancesOnly: opts.BalancesOnly,
	}
}

// fail records the outcome of a failed attempt on the connection and
// forwards the original error. The status argument lets callers keep the
// current status for transient failures.
func (s *Service) fail(ctx context.Context, conn *domain.Connection, cause error, status domain.ConnectionStatus) error {
	msg := cause.Error()
	conn.Status = status
	conn.LastSyncError = &msg
	if err := s.Connections.Update(ctx, conn); err != nil && s.Logger != nil {
		s.Logger.Printf("syncer: recording failure for connection %s: %v", conn.ID, err)
	}
	s.Notifier.SyncFinished(conn.ID, cause)
	return cause
}
