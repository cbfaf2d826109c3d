package redisseedstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

const seedKeyPrefix = "seed:"

type seedStore struct {
	rdb   *redis.Client
	seeds *KVStore[domain.Seed]
}

func NewSeedStore(url string) (ports.SeedStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	return &seedStore{
		rdb:   rdb,
		seeds: NewRedisKVStore[domain.Seed](rdb, seedKeyPrefix),
	}, nil
}

func (s *seedStore) Put(ctx context.Context, roundId uint64, seed domain.Seed) error {
	return s.seeds.Set(ctx, key(roundId), &seed)
}

func (s *seedStore) Get(ctx context.Context, roundId uint64) (*domain.Seed, error) {
	return s.seeds.Get(ctx, key(roundId))
}

func (s *seedStore) Delete(ctx context.Context, roundId uint64) error {
	return s.seeds.Delete(ctx, key(roundId))
}

func (s *seedStore) Close() {
	if err := s.rdb.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis client")
	}
}

func key(roundId uint64) string {
	return strconv.FormatUint(roundId, 10)
}
