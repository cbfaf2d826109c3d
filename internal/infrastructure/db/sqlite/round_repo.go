package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

const selectRound = `
SELECT id, start_time, end_time, commitment, revealed_seed, status, total_pot,
	house_fee, winner_index, winner, winner_amount, winner_claimed,
	winnings_paid, reward_pot, total_reward_minted, version
FROM round`

const upsertRound = `
INSERT INTO round (
	id, start_time, end_time, commitment, revealed_seed, status, total_pot,
	house_fee, winner_index, winner, winner_amount, winner_claimed,
	winnings_paid, reward_pot, total_reward_minted, version
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	start_time = excluded.start_time,
	end_time = excluded.end_time,
	commitment = excluded.commitment,
	revealed_seed = excluded.revealed_seed,
	status = excluded.status,
	total_pot = excluded.total_pot,
	house_fee = excluded.house_fee,
	winner_index = excluded.winner_index,
	winner = excluded.winner,
	winner_amount = excluded.winner_amount,
	winner_claimed = excluded.winner_claimed,
	winnings_paid = excluded.winnings_paid,
	reward_pot = excluded.reward_pot,
	total_reward_minted = excluded.total_reward_minted,
	version = excluded.version`

type roundRepository struct {
	db *sql.DB
}

func NewRoundRepository(config ...interface{}) (domain.RoundRepository, error) {
	db, err := dbFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open round repository: %s", err)
	}
	return &roundRepository{db}, nil
}

func (r *roundRepository) AddOrUpdateRound(ctx context.Context, round domain.Round) error {
	txBody := func(tx *sql.Tx) error {
		var revealedSeed sql.NullString
		if round.RevealedSeed != nil {
			revealedSeed = sql.NullString{String: round.RevealedSeed.String(), Valid: true}
		}
		var winnerIndex sql.NullInt64
		if round.WinnerIndex != nil {
			winnerIndex = sql.NullInt64{Int64: int64(*round.WinnerIndex), Valid: true}
		}

		if _, err := tx.ExecContext(
			ctx, upsertRound,
			round.Id, round.StartTime, round.EndTime, round.Commitment.String(),
			revealedSeed, int64(round.Status), round.TotalPot, round.HouseFee,
			winnerIndex, round.Winner, round.WinnerAmount, round.WinnerClaimed,
			round.WinningsPaid, round.RewardPot, round.TotalRewardMinted,
			int64(round.Version),
		); err != nil {
			return fmt.Errorf("failed to upsert round: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx, "DELETE FROM bet WHERE round_id = ?", round.Id,
		); err != nil {
			return fmt.Errorf("failed to clear bets: %w", err)
		}
		for i, bet := range round.Bets {
			if _, err := tx.ExecContext(
				ctx,
				"INSERT INTO bet (round_id, position, player, amount) VALUES (?, ?, ?, ?)",
				round.Id, i, bet.Player, bet.Amount,
			); err != nil {
				return fmt.Errorf("failed to insert bet: %w", err)
			}
		}

		if _, err := tx.ExecContext(
			ctx, "DELETE FROM entitlement WHERE round_id = ?", round.Id,
		); err != nil {
			return fmt.Errorf("failed to clear entitlements: %w", err)
		}
		for i, e := range round.Entitlements {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO entitlement (round_id, position, player, stake, reward, claimed)
				VALUES (?, ?, ?, ?, ?, ?)`,
				round.Id, i, e.Player, e.Stake, e.Reward, e.Claimed,
			); err != nil {
				return fmt.Errorf("failed to insert entitlement: %w", err)
			}
		}
		return nil
	}

	return execTx(ctx, r.db, txBody)
}

func (r *roundRepository) GetRoundWithId(ctx context.Context, id uint64) (*domain.Round, error) {
	rounds, err := r.findRounds(ctx, "WHERE id = ?", id)
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
	conditions := []string{"status > ?"}
	args := []interface{}{int64(domain.UndefinedStatus)}
	if startedAfter > 0 {
		conditions = append(conditions, "start_time > ?")
		args = append(args, startedAfter)
	}
	if startedBefore > 0 {
		conditions = append(conditions, "start_time < ?")
		args = append(args, startedBefore)
	}

	query := fmt.Sprintf(
		"SELECT id FROM round WHERE %s ORDER BY id", strings.Join(conditions, " AND "),
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query round ids: %w", err)
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *roundRepository) GetRoundsWithStatus(
	ctx context.Context, status domain.RoundStatus,
) ([]domain.Round, error) {
	return r.findRounds(ctx, "WHERE status = ?", int64(status))
}

func (r *roundRepository) Close() {}

func (r *roundRepository) findRounds(
	ctx context.Context, where string, args ...interface{},
) ([]domain.Round, error) {
	rows, err := r.db.QueryContext(ctx, selectRound+" "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}

	rounds := make([]domain.Round, 0)
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rounds = append(rounds, *round)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// The pool holds a single connection, the round cursor must be released
	// before loading bets and entitlements.
	for i := range rounds {
		if err := r.loadBets(ctx, &rounds[i]); err != nil {
			return nil, err
		}
		if err := r.loadEntitlements(ctx, &rounds[i]); err != nil {
			return nil, err
		}
	}
	return rounds, nil
}

func (r *roundRepository) loadBets(ctx context.Context, round *domain.Round) error {
	rows, err := r.db.QueryContext(
		ctx, "SELECT player, amount FROM bet WHERE round_id = ? ORDER BY position", round.Id,
	)
	if err != nil {
		return fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	round.Bets = make([]domain.Bet, 0, domain.MaxPlayers)
	for rows.Next() {
		var bet domain.Bet
		if err := rows.Scan(&bet.Player, &bet.Amount); err != nil {
			return err
		}
		round.Bets = append(round.Bets, bet)
	}
	return rows.Err()
}

func (r *roundRepository) loadEntitlements(ctx context.Context, round *domain.Round) error {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT player, stake, reward, claimed FROM entitlement WHERE round_id = ? ORDER BY position",
		round.Id,
	)
	if err != nil {
		return fmt.Errorf("failed to query entitlements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.Entitlement
		if err := rows.Scan(&e.Player, &e.Stake, &e.Reward, &e.Claimed); err != nil {
			return err
		}
		round.Entitlements = append(round.Entitlements, e)
	}
	return rows.Err()
}

func scanRound(rows *sql.Rows) (*domain.Round, error) {
	var (
		round        domain.Round
		commitment   string
		revealedSeed sql.NullString
		status       int64
		winnerIndex  sql.NullInt64
		version      int64
	)
	if err := rows.Scan(
		&round.Id, &round.StartTime, &round.EndTime, &commitment, &revealedSeed,
		&status, &round.TotalPot, &round.HouseFee, &winnerIndex, &round.Winner,
		&round.WinnerAmount, &round.WinnerClaimed, &round.WinningsPaid,
		&round.RewardPot, &round.TotalRewardMinted, &version,
	); err != nil {
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}

	seed, err := domain.SeedFromHex(commitment)
	if err != nil {
		return nil, err
	}
	round.Commitment = seed
	if revealedSeed.Valid {
		seed, err := domain.SeedFromHex(revealedSeed.String)
		if err != nil {
			return nil, err
		}
		round.RevealedSeed = &seed
	}
	if winnerIndex.Valid {
		index := int(winnerIndex.Int64)
		round.WinnerIndex = &index
	}
	round.Status = domain.RoundStatus(status)
	round.Version = uint(version)
	return &round, nil
}
