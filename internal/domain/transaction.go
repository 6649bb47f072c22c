package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProviderFields holds the parts of a transaction the aggregator owns.
// They are overwritten wholesale when a pending transaction posts; local
// edits to them are not possible.
type ProviderFields struct {
	Amount           int64 // minor units, signed (negative = outflow)
	Description      string
	CleanDescription string
	Date             time.Time // calendar day (UTC) of PostedAt
	PostedAt         time.Time
	TransactedAt     *time.Time
	Pending          bool
}

// UserFields holds the parts of a transaction the user owns. The sync
// engine preserves them verbatim across every merge.
type UserFields struct {
	CategoryID       *uuid.UUID
	Loop             string
	Subcategory      string
	Notes            string
	Tags             []string
	IsReviewed       bool
	IsRecurring      bool
	RecurringGroupID *string
	Splits           []Split
}

// Split is a user-defined partial allocation of a transaction's amount.
type Split struct {
	Amount     int64
	CategoryID *uuid.UUID
	Note       string
}

// Transaction represents a bank transaction as stored locally.
// ExternalID is the provider's stable identifier and the sole dedup key:
// no two transactions under one connection may share it. ID namespaces
// ExternalID by connection so that identifiers from different providers
// cannot collide.
type Transaction struct {
	ID           string
	ExternalID   string
	AccountID    string
	ConnectionID uuid.UUID
	Provider     ProviderFields
	User         UserFields
}

// TransactionID derives the local identifier for a provider transaction.
func TransactionID(connectionID uuid.UUID, externalID string) string {
	return fmt.Sprintf("%s:%s", connectionID, externalID)
}

// MergePosted combines a stored transaction with a fresh provider record
// for the same ExternalID. The result keeps the stored identity and every
// user-owned field and adopts every provider-owned field. Pure: neither
// argument is modified.
func MergePosted(existing, incoming Transaction) Transaction {
	merged := existing
	merged.Provider = incoming.Provider
	return merged
}
