package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

// Client is the subset of the daemon api the simulation drives.
type Client interface {
	// GetGame returns nil if the game is not initialized yet.
	GetGame(ctx context.Context) (*Game, error)
	InitGame(ctx context.Context, setup GameSetup) error
	Airdrop(ctx context.Context, wallet string, amount uint64) error
	Deposit(ctx context.Context, owner string, amount uint64) error

	StartRound(
		ctx context.Context, authority string,
		commitment domain.Seed, duration int64, expectedRoundId uint64,
	) (*Round, error)
	PlaceBet(ctx context.Context, player string, roundId, amount uint64) error
	FinalizeRound(
		ctx context.Context, authority string, roundId uint64, reveal domain.Seed,
	) (*Round, error)
	ClaimWinnings(ctx context.Context, player string, roundId uint64) (uint64, error)

	CreateRewardPot(ctx context.Context, authority string, roundId uint64) error
	MintRewardPot(ctx context.Context, authority string, roundId uint64) error
	CalculateEntitlements(ctx context.Context, authority string, roundId uint64) error
	ClaimRewards(ctx context.Context, player string, roundId uint64) (uint64, error)
}

type Game struct {
	Authority    string `json:"authority"`
	RoundCounter uint64 `json:"round_counter"`
}

type Round struct {
	Id           uint64 `json:"id"`
	EndTime      int64  `json:"end_time"`
	TotalPot     uint64 `json:"total_pot"`
	HouseFee     uint64 `json:"house_fee"`
	Winner       string `json:"winner"`
	WinnerAmount uint64 `json:"winner_amount"`
}

// ApiError is a non 2xx response of the daemon.
type ApiError struct {
	Status int
	Code   string
	Msg    string
}

func (e *ApiError) Error() string {
	if len(e.Code) > 0 {
		return fmt.Sprintf("%s (%s)", e.Msg, e.Code)
	}
	return fmt.Sprintf("%s (status %d)", e.Msg, e.Status)
}

type restClient struct {
	url    string
	client *http.Client
}

func NewRestClient(url string) Client {
	return &restClient{
		url:    strings.TrimSuffix(url, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *restClient) GetGame(ctx context.Context) (*Game, error) {
	var game Game
	if err := c.do(ctx, http.MethodGet, "/v1/game", "", nil, &game); err != nil {
		var apiErr *ApiError
		if errors.As(err, &apiErr) && apiErr.Code == domain.ErrGameNotInitialized.Code {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

func (c *restClient) InitGame(ctx context.Context, setup GameSetup) error {
	body := map[string]interface{}{
		"house_wallet": setup.HouseWallet,
		"reward_mint":  setup.RewardMint,
		"fee_bps":      setup.FeeBps,
	}
	return c.do(ctx, http.MethodPost, "/v1/game", setup.Authority, body, nil)
}

func (c *restClient) Airdrop(ctx context.Context, wallet string, amount uint64) error {
	body := map[string]interface{}{"wallet": wallet, "amount": amount}
	return c.do(ctx, http.MethodPost, "/v1/dev/airdrop", "", body, nil)
}

func (c *restClient) Deposit(ctx context.Context, owner string, amount uint64) error {
	body := map[string]interface{}{"amount": amount}
	return c.do(ctx, http.MethodPost, "/v1/escrow/deposit", owner, body, nil)
}

func (c *restClient) StartRound(
	ctx context.Context, authority string,
	commitment domain.Seed, duration int64, expectedRoundId uint64,
) (*Round, error) {
	body := map[string]interface{}{
		"commitment":        commitment,
		"duration":          duration,
		"expected_round_id": expectedRoundId,
	}
	var round Round
	if err := c.do(ctx, http.MethodPost, "/v1/rounds", authority, body, &round); err != nil {
		return nil, err
	}
	return &round, nil
}

func (c *restClient) PlaceBet(
	ctx context.Context, player string, roundId, amount uint64,
) error {
	body := map[string]interface{}{"amount": amount}
	return c.do(ctx, http.MethodPost, roundPath(roundId, "bets"), player, body, nil)
}

func (c *restClient) FinalizeRound(
	ctx context.Context, authority string, roundId uint64, reveal domain.Seed,
) (*Round, error) {
	body := map[string]interface{}{"revealed_seed": reveal}
	var round Round
	if err := c.do(
		ctx, http.MethodPost, roundPath(roundId, "finalize"), authority, body, &round,
	); err != nil {
		return nil, err
	}
	return &round, nil
}

func (c *restClient) ClaimWinnings(
	ctx context.Context, player string, roundId uint64,
) (uint64, error) {
	return c.claim(ctx, player, roundPath(roundId, "claim-winnings"))
}

func (c *restClient) CreateRewardPot(
	ctx context.Context, authority string, roundId uint64,
) error {
	return c.do(ctx, http.MethodPost, roundPath(roundId, "reward-pot"), authority, nil, nil)
}

func (c *restClient) MintRewardPot(
	ctx context.Context, authority string, roundId uint64,
) error {
	return c.do(ctx, http.MethodPost, roundPath(roundId, "reward-pot/mint"), authority, nil, nil)
}

func (c *restClient) CalculateEntitlements(
	ctx context.Context, authority string, roundId uint64,
) error {
	return c.do(ctx, http.MethodPost, roundPath(roundId, "entitlements"), authority, nil, nil)
}

func (c *restClient) ClaimRewards(
	ctx context.Context, player string, roundId uint64,
) (uint64, error) {
	return c.claim(ctx, player, roundPath(roundId, "claim-rewards"))
}

func (c *restClient) claim(ctx context.Context, caller, path string) (uint64, error) {
	var resp struct {
		Amount uint64 `json:"amount"`
	}
	if err := c.do(ctx, http.MethodPost, path, caller, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

func (c *restClient) do(
	ctx context.Context, method, path, caller string, body, result interface{},
) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(caller) > 0 {
		req.Header.Set("X-Caller-Id", caller)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.Unmarshal(buf, &errResp); err != nil || len(errResp.Error) <= 0 {
			errResp.Error = strings.TrimSpace(string(buf))
		}
		return &ApiError{Status: resp.StatusCode, Code: errResp.Code, Msg: errResp.Error}
	}

	if result == nil || len(buf) <= 0 {
		return nil
	}
	return json.Unmarshal(buf, result)
}

func roundPath(roundId uint64, action string) string {
	return fmt.Sprintf("/v1/rounds/%d/%s", roundId, action)
}
