package httpservice

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spinwheel-network/spinwheel/internal/core/application"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func newRouter(svc application.Service, m *metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestId(), m.instrument())

	h := &handler{svc}

	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(m.handler()))

	v1 := router.Group("/v1")

	game := v1.Group("/game")
	game.GET("", h.getGame)
	game.POST("", h.initGame)
	game.POST("/fee", h.updateFee)
	game.POST("/house-wallet", h.updateHouseWallet)
	game.POST("/reward-transfer-fee", h.setRewardTransferFee)

	escrow := v1.Group("/escrow")
	escrow.GET("/:owner", h.getEscrow)
	escrow.POST("/deposit", h.deposit)
	escrow.POST("/withdraw", h.withdraw)

	rounds := v1.Group("/rounds")
	rounds.GET("", h.listRounds)
	rounds.POST("", h.startRound)
	rounds.GET("/:id", h.getRound)
	rounds.POST("/:id/bets", h.placeBet)
	rounds.POST("/:id/finalize", h.finalizeRound)
	rounds.POST("/:id/claim-winnings", h.claimWinnings)
	rounds.GET("/:id/reward-pot", h.getRewardPot)
	rounds.POST("/:id/reward-pot", h.createRewardPot)
	rounds.POST("/:id/reward-pot/mint", h.mintRewardPot)
	rounds.POST("/:id/entitlements", h.calculateEntitlements)
	rounds.POST("/:id/claim-rewards", h.claimRewards)

	v1.GET("/events", h.streamEvents)
	v1.POST("/dev/airdrop", h.airdrop)

	return router
}
