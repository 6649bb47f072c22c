package httpapi

import (
	"time"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// AccountJSON is the wire shape of an account in sync responses.
type AccountJSON struct {
	ID                string    `json:"id"`
	ConnectionID      string    `json:"connectionId"`
	Name              string    `json:"name"`
	Institution       string    `json:"institution"`
	InstitutionDomain string    `json:"institutionDomain"`
	Type              string    `json:"type"`
	Currency          string    `json:"currency"`
	Balance           int64     `json:"balance"`
	AvailableBalance  *int64    `json:"availableBalance"`
	BalanceDate       time.Time `json:"balanceDate"`
	IsHidden          bool      `json:"isHidden"`
}

// TransactionJSON is the wire shape of a transaction in sync responses.
type TransactionJSON struct {
	ID               string     `json:"id"`
	ExternalID       string     `json:"externalId"`
	AccountID        string     `json:"accountId"`
	Amount           int64      `json:"amount"`
	Description      string     `json:"description"`
	CleanDescription string     `json:"cleanDescription"`
	Date             string     `json:"date"`
	PostedAt         time.Time  `json:"postedAt"`
	TransactedAt     *time.Time `json:"transactedAt,omitempty"`
	Pending          bool       `json:"pending"`
	CategoryID       *string    `json:"categoryId"`
	Loop             string     `json:"loop,omitempty"`
	Subcategory      string     `json:"subcategory,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	IsReviewed       bool       `json:"isReviewed"`
}

func toAccountJSON(acct domain.Account) AccountJSON {
	return AccountJSON{
		ID:                acct.ID,
		ConnectionID:      acct.ConnectionID.String(),
		Name:              acct.Name,
		Institution:       acct.Institution,
		InstitutionDomain: acct.InstitutionDomain,
		Type:              string(acct.Type),
		Currency:          string(acct.Currency),
		Balance:           acct.Balance,
		AvailableBalance:  acct.AvailableBalance,
		BalanceDate:       acct.BalanceDate,
		IsHidden:          acct.IsHidden,
	}
}

func toTransactionJSON(tx domain.Transaction) TransactionJSON {
	var categoryID *string
	if tx.User.CategoryID != nil {
		id := tx.User.CategoryID.String()
		categoryID = &id
	}

	return TransactionJSON{
		ID:               tx.ID,
		ExternalID:       tx.ExternalID,
		AccountID:        tx.AccountID,
		Amount:           tx.Provider.Amount,
		Description:      tx.Provider.Description,
		CleanDescription: tx.Provider.CleanDescription,
		Date:             tx.Provider.Date.Format(dateLayout),
		PostedAt:         tx.Provider.PostedAt,
		TransactedAt:     tx.Provider.TransactedAt,
		Pending:          tx.Provider.Pending,
		CategoryID:       categoryID,
		Loop:             tx.User.Loop,
		Subcategory:      tx.User.Subcategory,
		Notes:            tx.User.Notes,
		Tags:             tx.User.Tags,
		IsReviewed:       tx.User.IsReviewed,
	}
}
