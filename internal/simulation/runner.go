package simulation

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

type RoundResult struct {
	Number       int
	RoundId      uint64
	TotalPot     uint64
	HouseFee     uint64
	Winner       string
	WinnerAmount uint64
	Claimed      uint64
	Rewards      map[string]uint64
}

type Report struct {
	Rounds []RoundResult
}

type Runner struct {
	client Client
	// sleep waits for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(client Client) *Runner {
	return &Runner{client, sleepCtx}
}

// Run sets up the game and the players of the scenario, then plays every
// round through to reward claiming.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) (*Report, error) {
	if err := r.setupGame(ctx, scenario.Game); err != nil {
		return nil, err
	}
	if err := r.setupPlayers(ctx, scenario.Players); err != nil {
		return nil, err
	}

	report := &Report{Rounds: make([]RoundResult, 0, len(scenario.Rounds))}
	for _, plan := range scenario.Rounds {
		result, err := r.playRound(ctx, scenario.Game.Authority, plan)
		if err != nil {
			return report, fmt.Errorf("round %d: %w", plan.Number, err)
		}
		report.Rounds = append(report.Rounds, *result)
	}
	return report, nil
}

func (r *Runner) setupGame(ctx context.Context, setup GameSetup) error {
	if setup.Airdrop > 0 {
		if err := r.client.Airdrop(ctx, setup.Authority, setup.Airdrop); err != nil {
			return fmt.Errorf("failed to airdrop to authority: %w", err)
		}
	}

	game, err := r.client.GetGame(ctx)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game != nil {
		if game.Authority != setup.Authority {
			return fmt.Errorf(
				"game already initialized by %s, scenario authority is %s",
				game.Authority, setup.Authority,
			)
		}
		return nil
	}

	if err := r.client.InitGame(ctx, setup); err != nil {
		return fmt.Errorf("failed to init game: %w", err)
	}
	log.WithField("authority", setup.Authority).Info("simulation: game initialized")
	return nil
}

func (r *Runner) setupPlayers(ctx context.Context, players []PlayerSetup) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range players {
		g.Go(func() error {
			if p.Airdrop > 0 {
				if err := r.client.Airdrop(gctx, p.Id, p.Airdrop); err != nil {
					return fmt.Errorf("failed to airdrop to %s: %w", p.Id, err)
				}
			}
			if err := r.client.Deposit(gctx, p.Id, p.Deposit); err != nil {
				return fmt.Errorf("failed to deposit for %s: %w", p.Id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Infof("simulation: %d players funded", len(players))
	return nil
}

func (r *Runner) playRound(
	ctx context.Context, authority string, plan RoundPlan,
) (*RoundResult, error) {
	game, err := r.client.GetGame(ctx)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game not initialized")
	}

	seed, err := domain.NewRandomSeed()
	if err != nil {
		return nil, err
	}
	round, err := r.client.StartRound(
		ctx, authority, seed, plan.Duration, game.RoundCounter+1,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start round: %w", err)
	}
	roundId := round.Id
	logger := log.WithField("round_id", roundId)
	logger.Infof("simulation: round %d started", plan.Number)

	g, gctx := errgroup.WithContext(ctx)
	for player, amount := range plan.Bets {
		g.Go(func() error {
			if err := r.client.PlaceBet(gctx, player, roundId, amount); err != nil {
				return fmt.Errorf("failed to place bet for %s: %w", player, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debugf("simulation: %d bets placed", len(plan.Bets))

	if err := r.sleep(ctx, time.Until(time.Unix(round.EndTime+1, 0))); err != nil {
		return nil, err
	}

	round, err = r.client.FinalizeRound(ctx, authority, roundId, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize round: %w", err)
	}
	logger.WithField("winner", round.Winner).Info("simulation: round finalized")

	claimed, err := r.client.ClaimWinnings(ctx, round.Winner, roundId)
	if err != nil {
		return nil, fmt.Errorf("failed to claim winnings: %w", err)
	}

	result := &RoundResult{
		Number:       plan.Number,
		RoundId:      roundId,
		TotalPot:     round.TotalPot,
		HouseFee:     round.HouseFee,
		Winner:       round.Winner,
		WinnerAmount: round.WinnerAmount,
		Claimed:      claimed,
		Rewards:      make(map[string]uint64),
	}
	if plan.SkipRewards {
		return result, nil
	}

	if err := r.client.CreateRewardPot(ctx, authority, roundId); err != nil {
		return nil, fmt.Errorf("failed to create reward pot: %w", err)
	}
	if err := r.client.MintRewardPot(ctx, authority, roundId); err != nil {
		return nil, fmt.Errorf("failed to mint rewards: %w", err)
	}
	if err := r.client.CalculateEntitlements(ctx, authority, roundId); err != nil {
		return nil, fmt.Errorf("failed to calculate entitlements: %w", err)
	}
	for _, player := range plan.Players() {
		amount, err := r.client.ClaimRewards(ctx, player, roundId)
		if err != nil {
			return nil, fmt.Errorf("failed to claim rewards for %s: %w", player, err)
		}
		result.Rewards[player] = amount
	}
	logger.Info("simulation: rewards claimed")

	return result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
