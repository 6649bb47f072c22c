package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMergePosted_KeepsIdentityAndUserFields(t *testing.T) {
	connID := uuid.New()
	catID := uuid.New()

	existing := Transaction{
		ID:           TransactionID(connID, "txn-1"),
		ExternalID:   "txn-1",
		AccountID:    "acct-1",
		ConnectionID: connID,
		Provider: ProviderFields{
			Amount:      -1250,
			Description: "TIM HORTONS (PENDING)",
			Pending:     true,
		},
		User: UserFields{
			CategoryID: &catID,
			Loop:       "Health",
			Notes:      "team coffee",
			Tags:       []string{"work"},
			IsReviewed: true,
		},
	}

	incoming := Transaction{
		ID:           TransactionID(connID, "txn-1"),
		ExternalID:   "txn-1",
		AccountID:    "acct-1",
		ConnectionID: connID,
		Provider: ProviderFields{
			Amount:      -1275,
			Description: "TIM HORTONS #1234",
			PostedAt:    time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC),
			Pending:     false,
		},
	}

	merged := MergePosted(existing, incoming)

	// Identity and user-owned fields survive
	assert.Equal(t, existing.ID, merged.ID)
	assert.Equal(t, &catID, merged.User.CategoryID)
	assert.Equal(t, "Health", merged.User.Loop)
	assert.Equal(t, "team coffee", merged.User.Notes)
	assert.Equal(t, []string{"work"}, merged.User.Tags)
	assert.True(t, merged.User.IsReviewed)

	// Provider-owned fields are adopted wholesale
	assert.Equal(t, int64(-1275), merged.Provider.Amount)
	assert.Equal(t, "TIM HORTONS #1234", merged.Provider.Description)
	assert.False(t, merged.Provider.Pending)

	// Inputs are untouched
	assert.True(t, existing.Provider.Pending)
	assert.Equal(t, int64(-1250), existing.Provider.Amount)
}

func TestTransactionID_NamespacesByConnection(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.NotEqual(t, TransactionID(a, "txn-1"), TransactionID(b, "txn-1"))
	assert.Equal(t, TransactionID(a, "txn-1"), TransactionID(a, "txn-1"))
}
