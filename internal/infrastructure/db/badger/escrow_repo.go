package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const escrowStoreDir = "escrows"

type escrowRepository struct {
	store *badgerhold.Store
}

func NewEscrowRepository(config ...interface{}) (domain.EscrowRepository, error) {
	store, err := openStore(escrowStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open escrow store: %s", err)
	}
	return &escrowRepository{store}, nil
}

func (r *escrowRepository) Get(_ context.Context, owner string) (*domain.EscrowAccount, error) {
	var escrow domain.EscrowAccount
	err := r.store.Get(owner, &escrow)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, domain.ErrEscrowNotFound.Withf("owner %s", owner)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow of %s: %w", owner, err)
	}
	return &escrow, nil
}

func (r *escrowRepository) Upsert(_ context.Context, escrow domain.EscrowAccount) error {
	return upsertWithRetry(r.store, escrow.Owner, &escrow)
}

func (r *escrowRepository) Close() {
	r.store.Close()
}
