package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/config"
	"github.com/tetlixi/backend/internal/game"
	"github.com/tetlixi/backend/internal/playguard"
	"github.com/tetlixi/backend/internal/ws"
)

// Play opens one envelope: device gating, then the allocation engine.
func Play(db *sqlx.DB, guard *playguard.Guard, hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		device := guard.ResolveDevice(c)
		if device.IsNewDevice {
			guard.ApplyDeviceCookie(c, device.DeviceID)
		}

		consumedExtraPlay := false
		if device.AlreadyPlayed {
			ok, err := guard.ConsumeExtraPlay(ctx, device.DeviceID)
			if err != nil {
				log.Printf("[PLAY] Extra play check failed for device %s: %v", device.DeviceID, err)
			}
			if !ok {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "You already opened an envelope on this device"})
				return
			}
			consumedExtraPlay = true
		}

		gameCfg, err := game.GetOrCreateConfig(ctx, db)
		if err != nil {
			log.Printf("[PLAY] Failed to load game config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		result, err := game.ClaimRandomPrize(ctx, db, gameCfg, nil)
		if err != nil {
			if consumedExtraPlay {
				if refundErr := guard.RefundExtraPlay(ctx, device.DeviceID); refundErr != nil {
					log.Printf("[PLAY] Extra play refund failed for device %s: %v", device.DeviceID, refundErr)
				}
			}

			switch {
			case errors.Is(err, game.ErrGameDisabled):
				c.JSON(http.StatusForbidden, gin.H{"error": "Game is currently turned off by admin"})
			case errors.Is(err, game.ErrNoPrizeAvailable):
				c.JSON(http.StatusConflict, gin.H{"error": "No prizes left"})
			default:
				log.Printf("[PLAY] Allocation failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		token, err := issueClaimToken(cfg, result.ClaimID)
		if err != nil {
			log.Printf("[PLAY] Failed to issue claim token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		guard.MarkPlayed(ctx, c, device.DeviceID)
		broadcastPoolStatus(db, hub)

		c.JSON(http.StatusOK, gin.H{
			"claim_id":    result.ClaimID,
			"amount_vnd":  result.AmountVnd,
			"claim_token": token,
		})
	}
}

// broadcastPoolStatus pushes the live remaining-prize count to websocket
// subscribers. Best effort; failures only log.
func broadcastPoolStatus(db *sqlx.DB, hub *ws.Hub) {
	if hub == nil {
		return
	}
	status, err := game.GetPoolStatus(context.Background(), db)
	if err != nil {
		log.Printf("[WS] Failed to load pool status for broadcast: %v", err)
		return
	}
	hub.Broadcast(status)
}

// PoolWebSocket subscribes a client to live pool-status updates.
func PoolWebSocket(db *sqlx.DB, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := game.GetPoolStatus(c.Request.Context(), db)
		if err != nil {
			log.Printf("[WS] Failed to load initial pool status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if err := hub.Serve(c.Writer, c.Request, status); err != nil {
			log.Printf("[WS] Upgrade failed: %v", err)
		}
	}
}
