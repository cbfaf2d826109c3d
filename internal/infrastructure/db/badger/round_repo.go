package badgerdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const roundStoreDir = "rounds"

type roundRepository struct {
	store *badgerhold.Store
}

func NewRoundRepository(config ...interface{}) (domain.RoundRepository, error) {
	store, err := openStore(roundStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open round store: %s", err)
	}
	return &roundRepository{store}, nil
}

func (r *roundRepository) AddOrUpdateRound(
	ctx context.Context, round domain.Round,
) error {
	if tx, ok := ctx.Value("tx").(*badger.Txn); ok {
		return r.store.TxUpsert(tx, round.Id, round)
	}
	return upsertWithRetry(r.store, round.Id, round)
}

func (r *roundRepository) GetRoundWithId(
	ctx context.Context, id uint64,
) (*domain.Round, error) {
	rounds, err := r.findRound(ctx, badgerhold.Where("Id").Eq(id))
	if err != nil {
		return nil, err
	}
	if len(rounds) <= 0 {
		return nil, domain.ErrRoundNotFound.Withf("round %d", id)
	}
	return &rounds[0], nil
}

func (r *roundRepository) GetRoundsIds(
	ctx context.Context, startedAfter, startedBefore int64,
) ([]uint64, error) {
	query := badgerhold.Where("Status").Gt(domain.UndefinedStatus)

	if startedAfter > 0 {
		query = query.And("StartTime").Gt(startedAfter)
	}
	if startedBefore > 0 {
		query = query.And("StartTime").Lt(startedBefore)
	}

	rounds, err := r.findRound(ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(rounds))
	for _, round := range rounds {
		ids = append(ids, round.Id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *roundRepository) GetRoundsWithStatus(
	ctx context.Context, status domain.RoundStatus,
) ([]domain.Round, error) {
	rounds, err := r.findRound(ctx, badgerhold.Where("Status").Eq(status))
	if err != nil {
		return nil, err
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Id < rounds[j].Id })
	return rounds, nil
}

func (r *roundRepository) Close() {
	r.store.Close()
}

func (r *roundRepository) findRound(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Round, error) {
	var rounds []domain.Round
	var err error

	if tx, ok := ctx.Value("tx").(*badger.Txn); ok {
		err = r.store.TxFind(tx, &rounds, query)
	} else {
		err = r.store.Find(&rounds, query)
	}

	return rounds, err
}
