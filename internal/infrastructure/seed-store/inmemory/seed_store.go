package inmemoryseedstore

import (
	"context"
	"sync"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

type seedStore struct {
	seeds map[uint64]domain.Seed
	lock  *sync.RWMutex
}

func NewSeedStore() ports.SeedStore {
	return &seedStore{
		seeds: make(map[uint64]domain.Seed),
		lock:  &sync.RWMutex{},
	}
}

func (s *seedStore) Put(_ context.Context, roundId uint64, seed domain.Seed) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.seeds[roundId] = seed
	return nil
}

func (s *seedStore) Get(_ context.Context, roundId uint64) (*domain.Seed, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	seed, ok := s.seeds[roundId]
	if !ok {
		return nil, nil
	}
	return &seed, nil
}

func (s *seedStore) Delete(_ context.Context, roundId uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.seeds, roundId)
	return nil
}

func (s *seedStore) Close() {}
