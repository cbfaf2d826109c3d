package httpservice

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spinwheel-network/spinwheel/internal/core/application"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

type handler struct {
	svc application.Service
}

func (h *handler) getGame(c *gin.Context) {
	game, err := h.svc.GetGameConfig(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(game))
}

func (h *handler) initGame(c *gin.Context) {
	var req initGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	game, err := h.svc.InitGame(
		c.Request.Context(), caller(c), req.HouseWallet, req.RewardMint, req.FeeBps,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(game))
}

func (h *handler) updateFee(c *gin.Context) {
	var req updateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	game, err := h.svc.UpdateFee(c.Request.Context(), caller(c), req.FeeBps)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(game))
}

func (h *handler) updateHouseWallet(c *gin.Context) {
	var req updateHouseWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	game, err := h.svc.UpdateHouseWallet(c.Request.Context(), caller(c), req.HouseWallet)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(game))
}

func (h *handler) setRewardTransferFee(c *gin.Context) {
	var req transferFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.svc.SetRewardTransferFee(
		c.Request.Context(), caller(c),
		ports.TransferFeeConfig{FeeBps: req.FeeBps, MaxFee: req.MaxFee},
	); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getEscrow(c *gin.Context) {
	escrow, err := h.svc.GetEscrow(c.Request.Context(), c.Param("owner"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toEscrowResponse(escrow))
}

func (h *handler) deposit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	escrow, err := h.svc.Deposit(c.Request.Context(), caller(c), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toEscrowResponse(escrow))
}

func (h *handler) withdraw(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	escrow, err := h.svc.Withdraw(c.Request.Context(), caller(c), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toEscrowResponse(escrow))
}

func (h *handler) listRounds(c *gin.Context) {
	after, err := parseTimeQuery(c, "after")
	if err != nil {
		badRequest(c, err)
		return
	}
	before, err := parseTimeQuery(c, "before")
	if err != nil {
		badRequest(c, err)
		return
	}

	ids, err := h.svc.ListRounds(c.Request.Context(), after, before)
	if err != nil {
		fail(c, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	c.JSON(http.StatusOK, roundsResponse{Rounds: ids})
}

func (h *handler) startRound(c *gin.Context) {
	var req startRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	round, err := h.svc.StartRound(
		c.Request.Context(), caller(c), req.Commitment, req.Duration, req.ExpectedRoundId,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoundResponse(round))
}

func (h *handler) getRound(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	round, err := h.svc.GetRound(c.Request.Context(), roundId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoundResponse(round))
}

func (h *handler) placeBet(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	round, err := h.svc.PlaceBet(c.Request.Context(), caller(c), roundId, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoundResponse(round))
}

func (h *handler) finalizeRound(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req finalizeRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	round, err := h.svc.FinalizeRound(c.Request.Context(), caller(c), roundId, req.RevealedSeed)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoundResponse(round))
}

func (h *handler) claimWinnings(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	amount, err := h.svc.ClaimWinnings(c.Request.Context(), caller(c), roundId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, claimResponse{RoundId: roundId, Amount: amount})
}

func (h *handler) getRewardPot(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	pot, err := h.svc.GetRewardPot(c.Request.Context(), roundId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRewardPotResponse(pot))
}

func (h *handler) createRewardPot(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	pot, err := h.svc.CreateRewardPot(c.Request.Context(), caller(c), roundId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRewardPotResponse(pot))
}

func (h *handler) mintRewardPot(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	pot, err := h.svc.MintRewardPot(c.Request.Context(), caller(c), roundId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRewardPotResponse(pot))
}

func (h *handler) calculateEntitlements(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	round, err := h.svc.CalculateEntitlements(c.Request.Context(), caller(c), roundId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoundResponse(round))
}

func (h *handler) claimRewards(c *gin.Context) {
	roundId, err := parseRoundId(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	amount, err := h.svc.ClaimRewards(c.Request.Context(), caller(c), roundId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, claimResponse{RoundId: roundId, Amount: amount})
}

func (h *handler) airdrop(c *gin.Context) {
	var req airdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.svc.Airdrop(c.Request.Context(), req.Wallet, req.Amount); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// streamEvents pushes every committed round event to the client as a server
// sent event until the client goes away.
func (h *handler) streamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.svc.GetEventsChannel(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.GetType().String(), eventResponse{
				Type:    event.GetType().String(),
				RoundId: event.GetRoundId(),
				Event:   event,
			})
			return true
		}
	})
}

func parseRoundId(c *gin.Context) (uint64, error) {
	roundId, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid round id %q", c.Param("id"))
	}
	return roundId, nil
}

func parseTimeQuery(c *gin.Context, key string) (int64, error) {
	str := c.Query(key)
	if len(str) <= 0 {
		return 0, nil
	}
	t, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s timestamp %q", key, str)
	}
	return t, nil
}
