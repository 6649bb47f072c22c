// Package reconciler merges incoming provider records into the stored
// set without duplicating transactions or losing user edits. It never
// fails: ambiguous data is left unmodified rather than raising.
package reconciler

import (
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// UpdatePolicy controls what happens when the provider re-sends a
// transaction that is already settled locally.
type UpdatePolicy string

const (
	// PostedImmutable treats settled transactions as frozen: provider
	// corrections to an already-posted transaction are dropped. This is
	// the default.
	PostedImmutable UpdatePolicy = "posted_immutable"

	// PostedRefresh adopts provider-side corrections to settled
	// transactions too, still preserving every user-owned field.
	PostedRefresh UpdatePolicy = "posted_refresh"
)

// Result is the classification of one reconciliation pass.
type Result struct {
	New       []domain.Transaction
	Updated   []domain.Transaction
	Unchanged int
}

// ReconcileTransactions classifies each incoming transaction against the
// stored set, keyed solely by ExternalID:
//
//   - no stored match: New, inserted with zero-value user fields
//   - stored match still pending, incoming posted: Updated via
//     domain.MergePosted (stored identity + user fields, fresh provider
//     fields)
//   - stored match already settled: unchanged under PostedImmutable,
//     Updated under PostedRefresh when provider fields actually differ
//
// Re-running with an unchanged payload and no pending transactions
// therefore yields an empty result.
func ReconcileTransactions(existing, incoming []domain.Transaction, policy UpdatePolicy) Result {
	byExternalID := make(map[string]domain.Transaction, len(existing))
	for _, tx := range existing {
		byExternalID[tx.ExternalID] = tx
	}

	var result Result
	for _, in := range incoming {
		stored, ok := byExternalID[in.ExternalID]
		if !ok {
			result.New = append(result.New, in)
			// Guard against the same external id appearing twice in one
			// payload: later duplicates are matched against this one.
			byExternalID[in.ExternalID] = in
			continue
		}

		if stored.Provider.Pending {
			result.Updated = append(result.Updated, domain.MergePosted(stored, in))
			continue
		}

		if policy == PostedRefresh && !providerFieldsEqual(stored.Provider, in.Provider) {
			result.Updated = append(result.Updated, domain.MergePosted(stored, in))
			continue
		}

		result.Unchanged++
	}

	return result
}

// providerFieldsEqual compares provider-owned fields by value; the
// TransactedAt pointers are compared by the instants they reference.
func providerFieldsEqual(a, b domain.ProviderFields) bool {
	if a.Amount != b.Amount ||
		a.Description != b.Description ||
		a.CleanDescription != b.CleanDescription ||
		a.Pending != b.Pending ||
		!a.Date.Equal(b.Date) ||
		!a.PostedAt.Equal(b.PostedAt) {
		return false
	}
	switch {
	case a.TransactedAt == nil && b.TransactedAt == nil:
		return true
	case a.TransactedAt == nil || b.TransactedAt == nil:
		return false
	default:
		return a.TransactedAt.Equal(*b.TransactedAt)
	}
}

// MergeAccounts folds incoming provider accounts into the stored set.
// New accounts are taken as-is (the normalizer already attached the
// connection); on existing accounts only the provider-owned balance
// fields move, so IsHidden and any other local state survive. Returns
// the accounts to store, in incoming order.
func MergeAccounts(existing, incoming []domain.Account) []domain.Account {
	byID := make(map[string]domain.Account, len(existing))
	for _, acct := range existing {
		byID[acct.ID] = acct
	}

	merged := make([]domain.Account, 0, len(incoming))
	for _, in := range incoming {
		stored, ok := byID[in.ID]
		if !ok {
			merged = append(merged, in)
			continue
		}
		stored.Balance = in.Balance
		stored.AvailableBalance = in.AvailableBalance
		stored.BalanceDate = in.BalanceDate
		merged = append(merged, stored)
	}

	return merged
}
