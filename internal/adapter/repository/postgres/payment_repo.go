package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// paymentRepository implements domain.PaymentRepository
type paymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new scheduled-payment repository
func NewPaymentRepository(db *DB) domain.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ListPending(ctx context.Context) ([]domain.ScheduledPayment, error) {
	query := `
		SELECT id, payee, reference_code, amount, status
		FROM scheduled_payments
		WHERE status = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, string(domain.PaymentStatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.ScheduledPayment
	for rows.Next() {
		var p domain.ScheduledPayment
		var status string
		if err := rows.Scan(&p.ID, &p.Payee, &p.ReferenceCode, &p.Amount, &status); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Status = domain.PaymentStatus(status)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) MarkMatched(ctx context.Context, paymentID uuid.UUID, transactionID string) error {
	query := `
		UPDATE scheduled_payments
		SET status = $2, transaction_id = $3
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, paymentID, string(domain.PaymentStatusMatched), transactionID)
	if err != nil {
		return fmt.Errorf("failed to mark payment matched: %w", err)
	}
	return nil
}
