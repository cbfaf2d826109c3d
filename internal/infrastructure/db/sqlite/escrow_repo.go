package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

type escrowRepository struct {
	db *sql.DB
}

func NewEscrowRepository(config ...interface{}) (domain.EscrowRepository, error) {
	db, err := dbFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open escrow repository: %s", err)
	}
	return &escrowRepository{db}, nil
}

func (r *escrowRepository) Get(ctx context.Context, owner string) (*domain.EscrowAccount, error) {
	escrow := domain.EscrowAccount{Owner: owner}
	err := r.db.QueryRowContext(
		ctx, "SELECT balance, created_at, updated_at FROM escrow WHERE owner = ?", owner,
	).Scan(&escrow.Balance, &escrow.CreatedAt, &escrow.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEscrowNotFound.Withf("owner %s", owner)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow of %s: %w", owner, err)
	}
	return &escrow, nil
}

func (r *escrowRepository) Upsert(ctx context.Context, escrow domain.EscrowAccount) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO escrow (owner, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			balance = excluded.balance,
			updated_at = excluded.updated_at`,
		escrow.Owner, escrow.Balance, escrow.CreatedAt, escrow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert escrow of %s: %w", escrow.Owner, err)
	}
	return nil
}

func (r *escrowRepository) Close() {}
