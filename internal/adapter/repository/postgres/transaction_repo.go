package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, external_id, account_id, connection_id,
		       amount, description, clean_description, date, posted_at, transacted_at, pending,
		       category_id, loop, subcategory, notes, tags, is_reviewed, is_recurring,
		       recurring_group_id, splits
		FROM transactions
		WHERE connection_id = $1
		ORDER BY posted_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var rawSplits []byte
		err := rows.Scan(&tx.ID, &tx.ExternalID, &tx.AccountID, &tx.ConnectionID,
			&tx.Provider.Amount, &tx.Provider.Description, &tx.Provider.CleanDescription,
			&tx.Provider.Date, &tx.Provider.PostedAt, &tx.Provider.TransactedAt, &tx.Provider.Pending,
			&tx.User.CategoryID, &tx.User.Loop, &tx.User.Subcategory, &tx.User.Notes,
			pq.Array(&tx.User.Tags), &tx.User.IsReviewed, &tx.User.IsRecurring,
			&tx.User.RecurringGroupID, &rawSplits)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if len(rawSplits) > 0 {
			if err := json.Unmarshal(rawSplits, &tx.User.Splits); err != nil {
				return nil, fmt.Errorf("failed to decode splits for %s: %w", tx.ID, err)
			}
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Upsert applies the "upsert transactions" command. The reconciler has
// already decided the merged state, so a conflict overwrites every
// column; replaying the same change-set is a no-op.
func (r *transactionRepository) Upsert(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transactions (id, external_id, account_id, connection_id,
			amount, description, clean_description, date, posted_at, transacted_at, pending,
			category_id, loop, subcategory, notes, tags, is_reviewed, is_recurring,
			recurring_group_id, splits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			description = EXCLUDED.description,
			clean_description = EXCLUDED.clean_description,
			date = EXCLUDED.date,
			posted_at = EXCLUDED.posted_at,
			transacted_at = EXCLUDED.transacted_at,
			pending = EXCLUDED.pending,
			category_id = EXCLUDED.category_id,
			loop = EXCLUDED.loop,
			subcategory = EXCLUDED.subcategory,
			notes = EXCLUDED.notes,
			tags = EXCLUDED.tags,
			is_reviewed = EXCLUDED.is_reviewed,
			is_recurring = EXCLUDED.is_recurring,
			recurring_group_id = EXCLUDED.recurring_group_id,
			splits = EXCLUDED.splits
	`
	for _, tx := range txs {
		splits := tx.User.Splits
		if splits == nil {
			splits = []domain.Split{}
		}
		rawSplits, err := json.Marshal(splits)
		if err != nil {
			return fmt.Errorf("failed to encode splits for %s: %w", tx.ID, err)
		}

		tags := tx.User.Tags
		if tags == nil {
			tags = []string{}
		}

		_, err = dbTx.ExecContext(ctx, query,
			tx.ID, tx.ExternalID, tx.AccountID, tx.ConnectionID,
			tx.Provider.Amount, tx.Provider.Description, tx.Provider.CleanDescription,
			tx.Provider.Date, tx.Provider.PostedAt, tx.Provider.TransactedAt, tx.Provider.Pending,
			tx.User.CategoryID, tx.User.Loop, tx.User.Subcategory, tx.User.Notes,
			pq.Array(tags), tx.User.IsReviewed, tx.User.IsRecurring,
			tx.User.RecurringGroupID, rawSplits)
		if err != nil {
			return fmt.Errorf("failed to upsert transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}
