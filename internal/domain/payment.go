package domain

import "github.com/google/uuid"

// PaymentStatus represents whether a scheduled payment has been matched
// to a bank transaction yet.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusMatched PaymentStatus = "matched"
)

// ScheduledPayment is an expected ad-hoc transfer (e.g. a weekly
// babysitter payment) identified by a short reference code embedded in
// the transfer's description. Amount is the expected value in minor
// units, always positive.
type ScheduledPayment struct {
	ID            uuid.UUID
	Payee         string
	ReferenceCode string
	Amount        int64
	Status        PaymentStatus
}
