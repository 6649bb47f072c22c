package normalizer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/adapter/simplefin"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// Account type inference tokens, checked in priority order against the
// lowercased account name. First bucket with a hit wins.
var (
	creditTokens     = []string{"credit", "mastercard", "visa", "amex"}
	savingsTokens    = []string{"saving", "hisa"}
	investmentTokens = []string{"invest", "rrsp", "tfsa", "resp", "rrif", "retirement", "brokerage", "401k", "ira"}
	checkingTokens   = []string{"checking", "chequing", "cheque", "everyday"}
)

// NormalizeAccount converts an upstream account into the domain model.
// Balances become integer minor units; credit accounts are forced to the
// liability convention (balance <= 0) regardless of the provider's sign;
// unknown currencies fall back to the default.
func NormalizeAccount(connectionID uuid.UUID, raw simplefin.Account) domain.Account {
	accountType := inferAccountType(raw.Name)

	balance := parseMinorUnits(raw.Balance)
	if accountType == domain.AccountTypeCredit && balance > 0 {
		balance = -balance
	}

	var available *int64
	if raw.AvailableBalance != "" {
		v := parseMinorUnits(raw.AvailableBalance)
		available = &v
	}

	return domain.Account{
		ID:                raw.ID,
		ConnectionID:      connectionID,
		Name:              raw.Name,
		Institution:       raw.Org.Name,
		InstitutionDomain: raw.Org.Domain,
		Type:              accountType,
		Currency:          normalizeCurrency(raw.Currency),
		Balance:           balance,
		AvailableBalance:  available,
		BalanceDate:       time.Unix(raw.BalanceDate, 0).UTC(),
	}
}

// NormalizeTransaction converts an upstream transaction into the domain
// model. The description falls back to the payee and then to "Unknown";
// the calendar day is taken from the posted timestamp in UTC.
func NormalizeTransaction(connectionID uuid.UUID, accountID string, raw simplefin.Transaction) domain.Transaction {
	description := raw.Description
	if description == "" {
		description = raw.Payee
	}
	if description == "" {
		description = "Unknown"
	}

	postedAt := time.Unix(raw.Posted, 0).UTC()
	y, m, d := postedAt.Date()

	var transactedAt *time.Time
	if raw.TransactedAt > 0 {
		ts := time.Unix(raw.TransactedAt, 0).UTC()
		transactedAt = &ts
	}

	return domain.Transaction{
		ID:           domain.TransactionID(connectionID, raw.ID),
		ExternalID:   raw.ID,
		AccountID:    accountID,
		ConnectionID: connectionID,
		Provider: domain.ProviderFields{
			Amount:           parseMinorUnits(raw.Amount),
			Description:      description,
			CleanDescription: CleanDescription(description),
			Date:             time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			PostedAt:         postedAt,
			TransactedAt:     transactedAt,
			Pending:          raw.Pending,
		},
	}
}

func inferAccountType(name string) domain.AccountType {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, creditTokens):
		return domain.AccountTypeCredit
	case containsAny(lower, savingsTokens):
		return domain.AccountTypeSavings
	case containsAny(lower, investmentTokens):
		return domain.AccountTypeInvestment
	case containsAny(lower, checkingTokens):
		return domain.AccountTypeChecking
	default:
		return domain.AccountTypeChecking
	}
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

func normalizeCurrency(code string) domain.Currency {
	switch domain.Currency(code) {
	case domain.CurrencyCAD, domain.CurrencyUSD:
		return domain.Currency(code)
	default:
		return domain.DefaultCurrency
	}
}

// parseMinorUnits converts a decimal string to integer minor units,
// rounding half away from zero. Unparseable input yields zero.
func parseMinorUnits(s string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
