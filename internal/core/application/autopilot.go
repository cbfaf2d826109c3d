package application

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

const (
	// settlementBackoff is the delay in seconds before the first retry of a
	// failed settlement, doubled at every further attempt.
	settlementBackoff     = int64(5)
	maxSettlementAttempts = 5
)

// unsettledStatuses are the statuses an autopilot round can be left in by a
// settlement that did not complete.
var unsettledStatuses = []domain.RoundStatus{
	domain.ActiveStatus,
	domain.FeeSettledStatus,
	domain.RewardPotCreatedStatus,
	domain.TokensMintedStatus,
}

// scheduleAt schedules task at the given unix time, or right away if that
// time is not in the future.
func (s *service) scheduleAt(at int64, task func()) error {
	if !s.scheduler.AfterNow(at) {
		at = s.now()
	}
	return s.scheduler.ScheduleTaskOnce(at, task)
}

// scheduleAutoRound schedules the start of the next autopilot round at the
// given unix time.
func (s *service) scheduleAutoRound(at int64) error {
	return s.scheduleAt(at, s.startAutoRound)
}

// scheduleAutoSettlement schedules the settlement of the round at the given
// unix time. Only the settlement of the latest autopilot round chains the
// start of the next one.
func (s *service) scheduleAutoSettlement(
	roundId uint64, at int64, chainNext bool, attempt int,
) error {
	return s.scheduleAt(at, func() {
		s.settleAutoRound(roundId, chainNext, attempt)
	})
}

// startAutoRound starts a new round committing to a freshly generated seed.
// The seed is stored before the round starts and revealed at settlement.
func (s *service) startAutoRound() {
	ctx := context.Background()
	retry := func() {
		if err := s.scheduleAutoRound(s.now() + s.autopilot.RoundInterval); err != nil {
			log.WithError(err).Error("failed to schedule next autopilot round")
		}
	}

	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		log.WithError(err).Warn("autopilot: failed to get game config")
		retry()
		return
	}

	seed, err := domain.NewRandomSeed()
	if err != nil {
		log.WithError(err).Warn("autopilot: failed to generate seed")
		retry()
		return
	}

	roundId := game.RoundCounter + 1
	if err := s.seeds.Put(ctx, roundId, seed); err != nil {
		log.WithError(err).Warn("autopilot: failed to store seed")
		retry()
		return
	}

	round, err := s.StartRound(
		ctx, game.Authority, seed, s.autopilot.RoundDuration, game.RoundCounter,
	)
	if err != nil {
		log.WithError(err).Warn("autopilot: failed to start round")
		if err := s.seeds.Delete(ctx, roundId); err != nil {
			log.WithError(err).Warn("autopilot: failed to delete unused seed")
		}
		retry()
		return
	}

	if err := s.scheduleAutoSettlement(round.Id, round.EndTime, true, 0); err != nil {
		log.WithError(err).WithField("round_id", round.Id).Error(
			"autopilot: failed to schedule round settlement",
		)
		retry()
	}
}

// settleAutoRound reveals the seed of an ended autopilot round and drives it
// through the whole settlement pipeline. A round nobody bet on is left
// active and its seed is discarded. Failed settlements are retried with an
// exponential backoff, the next round is chained by the first attempt only.
func (s *service) settleAutoRound(roundId uint64, chainNext bool, attempt int) {
	ctx := context.Background()
	logger := log.WithField("round_id", roundId)

	err := s.runSettlement(ctx, roundId)
	switch {
	case err == nil:
		logger.Info("autopilot: round settled")
	case errors.Is(err, domain.ErrRoundNotEnded):
		if err := s.scheduleAutoSettlement(roundId, s.now()+1, chainNext, attempt); err != nil {
			logger.WithError(err).Error("autopilot: failed to reschedule round settlement")
		}
		return
	case errors.Is(err, domain.ErrNoPlayers):
		logger.Info("autopilot: round has no players, left active")
		if err := s.seeds.Delete(ctx, roundId); err != nil {
			logger.WithError(err).Warn("autopilot: failed to delete seed")
		}
	default:
		if attempt+1 >= maxSettlementAttempts {
			logger.WithError(err).Errorf(
				"autopilot: giving up round settlement after %d attempts", attempt+1,
			)
			break
		}
		retryAt := s.now() + settlementBackoff<<attempt
		logger.WithError(err).Warnf("autopilot: failed to settle round, retrying at %d", retryAt)
		if err := s.scheduleAutoSettlement(roundId, retryAt, false, attempt+1); err != nil {
			logger.WithError(err).Error("autopilot: failed to reschedule round settlement")
		}
	}

	if !chainNext {
		return
	}
	if err := s.scheduleAutoRound(s.now() + s.autopilot.RoundInterval); err != nil {
		logger.WithError(err).Error("autopilot: failed to schedule next round")
	}
}

func (s *service) runSettlement(ctx context.Context, roundId uint64) error {
	game, err := s.repoManager.Game().Get(ctx)
	if err != nil {
		return err
	}

	round, err := s.repoManager.Events().Load(ctx, roundId)
	if err != nil {
		return err
	}

	if round.IsActive() {
		seed, err := s.seeds.Get(ctx, roundId)
		if err != nil {
			return fmt.Errorf("failed to get seed: %w", err)
		}
		if seed == nil {
			return fmt.Errorf("seed of round %d not found", roundId)
		}
		if round, err = s.FinalizeRound(ctx, game.Authority, roundId, *seed); err != nil {
			return err
		}
	}

	// Each step resumes where a previous failed attempt stopped.
	if round.Status == domain.FeeSettledStatus {
		if _, err := s.CreateRewardPot(ctx, game.Authority, roundId); err != nil {
			return err
		}
		round.Status = domain.RewardPotCreatedStatus
	}
	if round.Status == domain.RewardPotCreatedStatus {
		if _, err := s.MintRewardPot(ctx, game.Authority, roundId); err != nil {
			return err
		}
		round.Status = domain.TokensMintedStatus
	}
	if round.Status == domain.TokensMintedStatus {
		if _, err := s.CalculateEntitlements(ctx, game.Authority, roundId); err != nil {
			return err
		}
	}

	if err := s.seeds.Delete(ctx, roundId); err != nil {
		log.WithError(err).WithField("round_id", roundId).Warn("autopilot: failed to delete seed")
	}
	return nil
}

// restoreAutoRounds reschedules the settlement of autopilot rounds left
// unsettled by a previous run. Only rounds whose seed is still stored were
// started by the autopilot and are not done yet.
func (s *service) restoreAutoRounds(ctx context.Context) error {
	for _, status := range unsettledStatuses {
		rounds, err := s.repoManager.Rounds().GetRoundsWithStatus(ctx, status)
		if err != nil {
			return err
		}

		for _, round := range rounds {
			seed, err := s.seeds.Get(ctx, round.Id)
			if err != nil {
				return err
			}
			if seed == nil {
				continue
			}

			at := s.now()
			if round.IsActive() {
				at = round.EndTime
			}
			if err := s.scheduleAutoSettlement(round.Id, at, false, 0); err != nil {
				return err
			}
			log.WithField("round_id", round.Id).Debugf(
				"autopilot: restored settlement of %s round", round.Status,
			)
		}
	}
	return nil
}
