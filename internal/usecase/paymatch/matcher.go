// Package paymatch binds ad-hoc interbank transfers to the scheduled
// payments they settle, using a reference code embedded in the
// transfer's description plus an amount tolerance.
package paymatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// AmountTolerance is how far (in minor units) a transfer's absolute
// amount may drift from the expected payment amount and still match.
const AmountTolerance = 100

// Description vocabulary marking a transaction as an interbank or
// e-transfer style payment.
var transferTokens = []string{
	"interac",
	"e-transfer",
	"etransfer",
	"etfr",
	"eft",
	"transfer",
	"send money",
}

// Match pairs one scheduled payment with the transaction that settles it.
type Match struct {
	Payment     domain.ScheduledPayment
	Transaction domain.Transaction
}

// MatchPayments scans outgoing transfer transactions for each pending
// payment's reference code (in the description, clean description or
// notes) with the amount within AmountTolerance. Matching is greedy and
// first-match in payment input order: once a transaction binds it is
// removed from consideration, with no backtracking. At this scale
// (a handful of pending payments) a full assignment search buys nothing,
// but an earlier payment can claim a later payment's only candidate.
func MatchPayments(payments []domain.ScheduledPayment, txs []domain.Transaction) []Match {
	candidates := make([]domain.Transaction, 0)
	for _, tx := range txs {
		if isTransferCandidate(tx) {
			candidates = append(candidates, tx)
		}
	}

	claimed := make(map[string]bool, len(candidates))
	var matches []Match
	for _, payment := range payments {
		if payment.Status != domain.PaymentStatusPending {
			continue
		}
		for _, tx := range candidates {
			if claimed[tx.ID] {
				continue
			}
			if !mentionsCode(tx, payment.ReferenceCode) {
				continue
			}
			if !withinTolerance(tx.Provider.Amount, payment.Amount) {
				continue
			}
			claimed[tx.ID] = true
			matches = append(matches, Match{Payment: payment, Transaction: tx})
			break
		}
	}

	return matches
}

// DefaultReferenceCode derives the code for a payment to the given payee
// in the week of t, e.g. week 3 for "Jane" -> "W03-J".
func DefaultReferenceCode(payee string, t time.Time) string {
	_, week := t.ISOWeek()
	initial := "X"
	for _, r := range strings.TrimSpace(payee) {
		initial = strings.ToUpper(string(r))
		break
	}
	return fmt.Sprintf("W%02d-%s", week, initial)
}

func isTransferCandidate(tx domain.Transaction) bool {
	if tx.Provider.Amount >= 0 {
		return false
	}
	text := strings.ToLower(tx.Provider.Description + " " + tx.Provider.CleanDescription)
	for _, token := range transferTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func mentionsCode(tx domain.Transaction, code string) bool {
	if code == "" {
		return false
	}
	needle := strings.ToLower(code)
	for _, field := range []string{tx.Provider.Description, tx.Provider.CleanDescription, tx.User.Notes} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func withinTolerance(amount, expected int64) bool {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	diff := abs - expected
	if diff < 0 {
		diff = -diff
	}
	return diff <= AmountTolerance
}
