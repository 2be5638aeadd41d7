package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/tetlixi/backend/internal/api/handlers"
	"github.com/tetlixi/backend/internal/config"
	"github.com/tetlixi/backend/internal/middleware"
	"github.com/tetlixi/backend/internal/playguard"
	"github.com/tetlixi/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	guard := playguard.New(rdb, cfg)
	hub := ws.NewHub()

	// Synced bank logos are served from the local mirror
	router.Static("/banks", cfg.BankLogoDir)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Game endpoints
		v1.POST("/play", handlers.Play(db, guard, hub, cfg))
		v1.GET("/game/ws", handlers.PoolWebSocket(db, hub))

		// Claim endpoints
		claim := v1.Group("/claim")
		{
			claim.GET("/:claimId", handlers.GetClaim(db))
			claim.PATCH("/:claimId", handlers.UpdateClaim(db, cfg))
			claim.POST("/:claimId/double-or-nothing", handlers.PlayDoubleOrNothing(db, cfg))
		}

		// Public bank directory
		v1.GET("/banks", handlers.ListBanks(db))

		// Admin endpoints
		adminGroup := v1.Group("/admin")
		{
			adminGroup.POST("/login", handlers.AdminLogin(db, rdb, cfg))
			adminGroup.POST("/logout", handlers.AdminLogout(rdb))

			authed := adminGroup.Group("")
			authed.Use(handlers.AdminSessionMiddleware(rdb))
			{
				authed.GET("/me", handlers.AdminMe())
				authed.GET("/config", handlers.GetGameConfig(db))
				authed.PUT("/config", handlers.UpdateGameConfig(db))
				authed.GET("/pending", handlers.PendingClaims(db))
				authed.POST("/mark-paid/:claimId", handlers.MarkPaid(db, hub))
				authed.GET("/payout-qr/:claimId", handlers.PayoutQR(db))
				authed.POST("/reset", handlers.ResetGame(db, hub))
				authed.POST("/device-allowance", handlers.GrantDeviceAllowance(db, guard))
				authed.POST("/banks/sync", handlers.SyncBanks(db, cfg))
				authed.GET("/audit", handlers.AdminAuditLogs(db))
			}
		}
	}
}
