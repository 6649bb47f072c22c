package domain

import (
	"context"

	"github.com/google/uuid"
)

// ConnectionRepository defines persistence operations for connections
type ConnectionRepository interface {
	// GetByID retrieves a connection by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Connection, error)

	// GetByAccessURL retrieves the connection holding the given access URL
	// Returns ErrNotFound when no connection uses it
	GetByAccessURL(ctx context.Context, accessURL string) (*Connection, error)

	// Create creates a new connection
	Create(ctx context.Context, conn *Connection) error

	// Update persists connection status and sync bookkeeping fields
	Update(ctx context.Context, conn *Connection) error
}

// AccountRepository defines persistence operations for accounts
type AccountRepository interface {
	// ListByConnection retrieves all accounts belonging to a connection
	ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]Account, error)

	// Upsert inserts or updates the given accounts ("set accounts").
	// Must be idempotent: replaying the same set is a no-op.
	Upsert(ctx context.Context, accounts []Account) error
}

// TransactionRepository defines persistence operations for transactions
type TransactionRepository interface {
	// ListByConnection retrieves all stored transactions for a connection
	ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]Transaction, error)

	// Upsert inserts or updates the given transactions ("upsert
	// transactions"). Must be idempotent.
	Upsert(ctx context.Context, txs []Transaction) error
}

// RuleRepository provides the categorization rule set and its categories
type RuleRepository interface {
	// ListRules retrieves every categorization rule
	ListRules(ctx context.Context) ([]CategoryRule, error)

	// ListCategories retrieves every category definition
	ListCategories(ctx context.Context) ([]Category, error)
}

// PaymentRepository defines persistence operations for scheduled payments
type PaymentRepository interface {
	// ListPending retrieves scheduled payments not yet matched
	ListPending(ctx context.Context) ([]ScheduledPayment, error)

	// MarkMatched records that a payment was bound to a transaction
	MarkMatched(ctx context.Context, paymentID uuid.UUID, transactionID string) error
}
