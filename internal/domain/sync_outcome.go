package domain

import "time"

// SyncOutcome is the full change-set produced by one successful sync
// attempt. The engine returns it instead of mutating storage through
// callbacks; the caller applies it (idempotent commands, at-least-once).
type SyncOutcome struct {
	Accounts            []Account
	NewTransactions     []Transaction
	UpdatedTransactions []Transaction
	Unchanged           int
	Errors              []string // advisory messages reported by the provider
	SyncedAt            time.Time
}
