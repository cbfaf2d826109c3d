package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

type service struct {
	// services
	repoManager ports.RepoManager
	values      ports.ValueLedger
	tokens      ports.TokenLedger
	scheduler   ports.SchedulerService
	seeds       ports.SeedStore
	notifier    ports.Notifier

	// config
	mintAuthority string
	escrowReserve uint64
	potReserve    uint64
	devMode       bool
	autopilot     AutopilotConfig

	locks *keyedLocks
	now   func() int64
}

func NewService(
	config Config,
	repoManager ports.RepoManager,
	valueLedger ports.ValueLedger, tokenLedger ports.TokenLedger,
	scheduler ports.SchedulerService, seedStore ports.SeedStore,
	notifier ports.Notifier,
) (Service, error) {
	if len(config.MintAuthority) <= 0 {
		return nil, fmt.Errorf("missing mint authority")
	}
	if config.Autopilot.Enabled {
		if config.Autopilot.RoundDuration < domain.MinRoundDuration ||
			config.Autopilot.RoundDuration > domain.MaxRoundDuration {
			return nil, fmt.Errorf(
				"autopilot round duration must be in range [%d, %d]",
				domain.MinRoundDuration, domain.MaxRoundDuration,
			)
		}
		if config.Autopilot.RoundInterval < 0 {
			return nil, fmt.Errorf("autopilot round interval must not be negative")
		}
	}

	svc := &service{
		repoManager:   repoManager,
		values:        valueLedger,
		tokens:        tokenLedger,
		scheduler:     scheduler,
		seeds:         seedStore,
		notifier:      notifier,
		mintAuthority: config.MintAuthority,
		escrowReserve: config.EscrowReserve,
		potReserve:    config.PotReserve,
		devMode:       config.DevMode,
		autopilot:     config.Autopilot,
		locks:         newKeyedLocks(),
		now:           func() int64 { return time.Now().Unix() },
	}

	repoManager.RegisterEventsHandler(svc.updateProjectionStore)

	return svc, nil
}

func (s *service) Start() error {
	log.Debug("starting scheduler")
	s.scheduler.Start()

	if !s.autopilot.Enabled {
		return nil
	}

	log.Debug("starting autopilot")
	if err := s.restoreAutoRounds(context.Background()); err != nil {
		return fmt.Errorf("failed to restore autopilot rounds: %s", err)
	}
	return s.scheduleAutoRound(s.now())
}

func (s *service) Stop() {
	s.scheduler.Stop()
	log.Debug("stopped scheduler")
	s.repoManager.Close()
	log.Debug("closed connection to db")
	s.seeds.Close()
	log.Debug("closed connection to seed store")
	s.notifier.Close()
}

func (s *service) InitGame(
	ctx context.Context, caller, houseWallet, rewardMint string, feeBps uint16,
) (*domain.GameConfig, error) {
	release := s.locks.acquire(gameLockKey)
	defer release()

	if _, err := s.repoManager.Game().Get(ctx); err == nil {
		return nil, domain.ErrInvalidGameState.Withf("game already initialized")
	} else if !errors.Is(err, domain.ErrGameNotInitialized) {
		return nil, err
	}

	game, err := domain.NewGameConfig(caller, houseWallet, rewardMint, feeBps, s.now())
	if err != nil {
		return nil, err
	}

	if len(rewardMint) <= 0 {
		return nil, domain.ErrInvalidGameState.Withf("missing reward mint")
	}
	ok, err := s.tokens.HasMint(ctx, rewardMint)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.tokens.CreateMint(
			ctx, rewardMint, s.mintAuthority, domain.RewardDecimals,
		); err != nil {
			return nil, fmt.Errorf("failed to create reward mint: %w", err)
		}
	}

	if err := s.repoManager.Game().Upsert(ctx, *game); err != nil {
		return nil, fmt.Errorf("failed to store game config: %w", err)
	}

	log.WithField("authority", caller).Info("game initialized")
	return game, nil
}

func (s *service) UpdateFee(
	ctx context.Context, caller string, feeBps uint16,
) (*domain.GameConfig, error) {
	return s.updateGame(ctx, func(game *domain.GameConfig) error {
		return game.UpdateFee(caller, feeBps, s.now())
	})
}

func (s *service) UpdateHouseWallet(
	ctx context.Context, caller, houseWallet string,
) (*domain.GameConfig, error) {
	return s.updateGame(ctx, func(game *domain.GameConfig) error {
		return game.UpdateHouseWallet(caller, houseWallet, s.now())
	})
}

func (s *service) SetRewardTransferFee(
	ctx context.Context, caller string, fee ports.TransferFeeConfig,
) error {
	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return err
	}
	if !game.IsAuthority(caller) {
		return domain.ErrUnauthorizedAccess
	}
	if fee.FeeBps > 10_000 {
		return domain.ErrInvalidHouseFeeConfig.Withf("transfer fee %d bps", fee.FeeBps)
	}
	return s.tokens.SetTransferFee(ctx, game.RewardMint, fee, s.mintAuthority)
}

func (s *service) GetGameConfig(ctx context.Context) (*domain.GameConfig, error) {
	return s.repoManager.Game().Get(ctx)
}

// GetRound reads the round projection and falls back to the event store for
// rounds whose projection is not written yet.
func (s *service) GetRound(ctx context.Context, roundId uint64) (*domain.Round, error) {
	round, err := s.repoManager.Rounds().GetRoundWithId(ctx, roundId)
	if err == nil {
		return round, nil
	}
	if !errors.Is(err, domain.ErrRoundNotFound) {
		return nil, err
	}
	return s.repoManager.Events().Load(ctx, roundId)
}

func (s *service) ListRounds(
	ctx context.Context, startedAfter, startedBefore int64,
) ([]uint64, error) {
	return s.repoManager.Rounds().GetRoundsIds(ctx, startedAfter, startedBefore)
}

func (s *service) GetEscrow(ctx context.Context, owner string) (*domain.EscrowAccount, error) {
	return s.repoManager.Escrows().Get(ctx, owner)
}

func (s *service) GetRewardPot(ctx context.Context, roundId uint64) (*domain.RewardPot, error) {
	return s.repoManager.RewardPots().Get(ctx, roundId)
}

func (s *service) GetEventsChannel(ctx context.Context) (<-chan domain.RoundEvent, error) {
	return s.notifier.Subscribe(ctx)
}

func (s *service) Airdrop(ctx context.Context, wallet string, amount uint64) error {
	if !s.devMode {
		return fmt.Errorf("airdrop is available only in dev mode")
	}
	if len(wallet) <= 0 || amount == 0 {
		return domain.ErrInvalidDepositAmount.Withf("airdrop of %d to %q", amount, wallet)
	}
	return s.values.Airdrop(ctx, walletAccount(wallet), amount)
}

func (s *service) updateGame(
	ctx context.Context, update func(*domain.GameConfig) error,
) (*domain.GameConfig, error) {
	release := s.locks.acquire(gameLockKey)
	defer release()

	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := update(game); err != nil {
		return nil, err
	}
	if err := s.repoManager.Game().Upsert(ctx, *game); err != nil {
		return nil, fmt.Errorf("failed to store game config: %w", err)
	}
	return game, nil
}

// saveRound appends the events to the round's stream and fans them out to
// subscribers.
func (s *service) saveRound(
	ctx context.Context, roundId uint64, events []domain.RoundEvent,
) (*domain.Round, error) {
	round, err := s.repoManager.Events().Save(ctx, roundId, events...)
	if err != nil {
		return nil, fmt.Errorf("failed to store round events: %w", err)
	}
	if err := s.notifier.Notify(ctx, events...); err != nil {
		log.WithError(err).WithField("round_id", roundId).Warn("failed to notify round events")
	}
	return round, nil
}

// updateProjectionStore writes the round read model. Rounds are published
// asynchronously by the event store, so stale versions are skipped.
func (s *service) updateProjectionStore(round *domain.Round) {
	ctx := context.Background()

	stored, err := s.repoManager.Rounds().GetRoundWithId(ctx, round.Id)
	if err != nil && !errors.Is(err, domain.ErrRoundNotFound) {
		log.WithError(err).WithField("round_id", round.Id).Warn("failed to get round projection")
		return
	}
	if stored != nil && stored.Version >= round.Version {
		return
	}

	if err := s.repoManager.Rounds().AddOrUpdateRound(ctx, *round); err != nil {
		log.WithError(err).WithField("round_id", round.Id).Warn("failed to update round projection")
		return
	}
	log.WithField("round_id", round.Id).Debugf("updated projection to %s", round.Status)
}
