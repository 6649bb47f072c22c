package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]domain.Account, error) {
	query := `
		SELECT id, connection_id, name, institution, institution_domain,
		       type, currency, balance, available_balance, balance_date, is_hidden
		FROM accounts
		WHERE connection_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var acct domain.Account
		var accountType, currency string
		err := rows.Scan(&acct.ID, &acct.ConnectionID, &acct.Name, &acct.Institution,
			&acct.InstitutionDomain, &accountType, &currency, &acct.Balance,
			&acct.AvailableBalance, &acct.BalanceDate, &acct.IsHidden)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acct.Type = domain.AccountType(accountType)
		acct.Currency = domain.Currency(currency)
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// Upsert applies the "set accounts" command. The merged record is
// authoritative, so a conflict overwrites every column except the
// user-owned is_hidden flag, which only the UI mutates.
func (r *accountRepository) Upsert(ctx context.Context, accounts []domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO accounts (id, connection_id, name, institution, institution_domain,
		                      type, currency, balance, available_balance, balance_date, is_hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			institution = EXCLUDED.institution,
			institution_domain = EXCLUDED.institution_domain,
			type = EXCLUDED.type,
			currency = EXCLUDED.currency,
			balance = EXCLUDED.balance,
			available_balance = EXCLUDED.available_balance,
			balance_date = EXCLUDED.balance_date
	`
	for _, acct := range accounts {
		_, err := dbTx.ExecContext(ctx, query,
			acct.ID, acct.ConnectionID, acct.Name, acct.Institution, acct.InstitutionDomain,
			string(acct.Type), string(acct.Currency), acct.Balance, acct.AvailableBalance,
			acct.BalanceDate, acct.IsHidden)
		if err != nil {
			return fmt.Errorf("failed to upsert account %s: %w", acct.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accounts: %w", err)
	}
	return nil
}
