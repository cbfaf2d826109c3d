package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
	badgerdb "github.com/spinwheel-network/spinwheel/internal/infrastructure/db/badger"
	sqlitedb "github.com/spinwheel-network/spinwheel/internal/infrastructure/db/sqlite"
)

var (
	eventStoreTypes = map[string]func(...interface{}) (domain.RoundEventRepository, error){
		"badger": badgerdb.NewRoundEventRepository,
	}
	roundStoreTypes = map[string]func(...interface{}) (domain.RoundRepository, error){
		"badger": badgerdb.NewRoundRepository,
		"sqlite": sqlitedb.NewRoundRepository,
	}
	gameStoreTypes = map[string]func(...interface{}) (domain.GameRepository, error){
		"badger": badgerdb.NewGameRepository,
		"sqlite": sqlitedb.NewGameRepository,
	}
	escrowStoreTypes = map[string]func(...interface{}) (domain.EscrowRepository, error){
		"badger": badgerdb.NewEscrowRepository,
		"sqlite": sqlitedb.NewEscrowRepository,
	}
	rewardPotStoreTypes = map[string]func(...interface{}) (domain.RewardPotRepository, error){
		"badger": badgerdb.NewRewardPotRepository,
		"sqlite": sqlitedb.NewRewardPotRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore     domain.RoundEventRepository
	roundStore     domain.RoundRepository
	gameStore      domain.GameRepository
	escrowStore    domain.EscrowRepository
	rewardPotStore domain.RewardPotRepository
	sqlDb          *sql.DB
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	eventStoreFactory, ok := eventStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid event store type: %s", config.EventStoreType)
	}
	roundStoreFactory, ok := roundStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	gameStoreFactory := gameStoreTypes[config.DataStoreType]
	escrowStoreFactory := escrowStoreTypes[config.DataStoreType]
	rewardPotStoreFactory := rewardPotStoreTypes[config.DataStoreType]

	dataStoreConfig := config.DataStoreConfig
	var sqlDb *sql.DB
	if config.DataStoreType == "sqlite" {
		db, err := openSqlite(config.DataStoreConfig)
		if err != nil {
			return nil, err
		}
		sqlDb = db
		dataStoreConfig = []interface{}{db}
	}

	svc := &service{sqlDb: sqlDb}
	var err error
	defer func() {
		if err != nil {
			svc.Close()
		}
	}()

	if svc.eventStore, err = eventStoreFactory(config.EventStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}
	if svc.roundStore, err = roundStoreFactory(dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to create round store: %w", err)
	}
	if svc.gameStore, err = gameStoreFactory(dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to create game store: %w", err)
	}
	if svc.escrowStore, err = escrowStoreFactory(dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to create escrow store: %w", err)
	}
	if svc.rewardPotStore, err = rewardPotStoreFactory(dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to create reward pot store: %w", err)
	}

	return svc, nil
}

func (s *service) RegisterEventsHandler(handler func(round *domain.Round)) {
	s.eventStore.RegisterEventsHandler(handler)
}

func (s *service) Events() domain.RoundEventRepository {
	return s.eventStore
}

func (s *service) Rounds() domain.RoundRepository {
	return s.roundStore
}

func (s *service) Game() domain.GameRepository {
	return s.gameStore
}

func (s *service) Escrows() domain.EscrowRepository {
	return s.escrowStore
}

func (s *service) RewardPots() domain.RewardPotRepository {
	return s.rewardPotStore
}

func (s *service) Close() {
	if s.eventStore != nil {
		s.eventStore.Close()
	}
	if s.roundStore != nil {
		s.roundStore.Close()
	}
	if s.gameStore != nil {
		s.gameStore.Close()
	}
	if s.escrowStore != nil {
		s.escrowStore.Close()
	}
	if s.rewardPotStore != nil {
		s.rewardPotStore.Close()
	}
	if s.sqlDb != nil {
		_ = s.sqlDb.Close()
	}
}

// openSqlite opens the database file under the configured directory, or an
// in-memory database if the directory is empty, and brings its schema up to
// date.
func openSqlite(config []interface{}) (*sql.DB, error) {
	if len(config) != 1 {
		return nil, errors.New("invalid sqlite config")
	}
	dbDir, ok := config[0].(string)
	if !ok {
		return nil, errors.New("invalid sqlite config, expected db directory at 0")
	}

	dbPath := ":memory:"
	if len(dbDir) > 0 {
		dbPath = filepath.Join(dbDir, sqliteDbFile)
	}
	db, err := sqlitedb.OpenDb(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := sqlitedb.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return db, nil
}
