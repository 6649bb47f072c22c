package simplefin

// Wire types for the aggregator's account-set payload. Monetary values
// arrive as decimal strings and timestamps as epoch seconds; conversion
// into the domain model happens in the normalizer, not here.

// AccountSet is the top-level response body of the accounts read.
type AccountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []Account `json:"accounts"`
}

// Org identifies the institution holding an account.
type Org struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// Account is one upstream account with its transactions.
type Account struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Currency         string        `json:"currency"`
	Balance          string        `json:"balance"`
	AvailableBalance string        `json:"available-balance"`
	BalanceDate      int64         `json:"balance-date"`
	Org              Org           `json:"org"`
	Transactions     []Transaction `json:"transactions"`
}

// Transaction is one upstream transaction record.
type Transaction struct {
	ID           string `json:"id"`
	Posted       int64  `json:"posted"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	Payee        string `json:"payee"`
	Memo         string `json:"memo"`
	TransactedAt int64  `json:"transacted_at"`
	Pending      bool   `json:"pending"`
}
