package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountType represents the kind of financial account
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// Currency is the set of currencies the app stores. Anything else coming
// from a provider is normalized to the default.
type Currency string

const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
)

// DefaultCurrency is applied when a provider reports an unknown currency.
const DefaultCurrency = CurrencyCAD

// Account represents a financial account as stored locally.
// The ID is the provider's account identifier (provider-scoped).
// Balance and AvailableBalance are integer minor units (cents).
//
// Provider-owned fields (overwritten on every sync): Balance,
// AvailableBalance, BalanceDate. User-owned fields (never touched by the
// sync engine): IsHidden.
// Invariant: Type == credit implies Balance <= 0 (liability convention).
type Account struct {
	ID                string
	ConnectionID      uuid.UUID
	Name              string
	Institution       string
	InstitutionDomain string
	Type              AccountType
	Currency          Currency
	Balance           int64
	AvailableBalance  *int64
	BalanceDate       time.Time
	IsHidden          bool
}
