package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/admin"
	"github.com/tetlixi/backend/internal/banks"
	"github.com/tetlixi/backend/internal/config"
	"github.com/tetlixi/backend/internal/game"
	"github.com/tetlixi/backend/internal/models"
	"github.com/tetlixi/backend/internal/playguard"
	"github.com/tetlixi/backend/internal/vietqr"
	"github.com/tetlixi/backend/internal/ws"
)

// PendingClaims lists claims awaiting payout, oldest first.
func PendingClaims(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var claims []models.ClaimWithPrize
		err := db.SelectContext(c.Request.Context(), &claims, `
			SELECT c.id, c.prize_id, c.status, c.final_amount_vnd,
				c.double_or_nothing_played, c.double_or_nothing_outcome,
				c.winner_name, c.winner_phone, c.bank_bin, c.bank_account_no,
				c.transfer_note, c.claimed_at, c.paid_at, c.paid_ref,
				p.amount_vnd AS prize_amount_vnd, p.status AS prize_status
			FROM claims c
			JOIN prizes p ON p.id = c.prize_id
			WHERE c.status = $1
			ORDER BY c.claimed_at ASC
		`, models.ClaimStatusClaimed)
		if err != nil {
			log.Printf("[ADMIN] Failed to list pending claims: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending claims"})
			return
		}

		out := make([]gin.H, 0, len(claims))
		for i := range claims {
			claim := &claims[i]
			out = append(out, gin.H{
				"claim_id":        claim.ID,
				"status":          claim.Status,
				"amount_vnd":      claim.EffectiveAmountVnd(),
				"winner_name":     nullableString(claim.WinnerName),
				"winner_phone":    nullableString(claim.WinnerPhone),
				"bank_bin":        nullableString(claim.BankBin),
				"bank_account_no": nullableString(claim.BankAccountNo),
				"transfer_note":   nullableString(claim.TransferNote),
				"claimed_at":      claim.ClaimedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{"claims": out})
	}
}

// MarkPaid transitions a claim (and its prize) to PAID, with an optional
// bank reference. Claim and prize move together in one transaction.
func MarkPaid(db *sqlx.DB, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		adminUsername := c.GetString("admin_username")
		claimID := c.Param("claimId")

		var req struct {
			PaidRef string `json:"paid_ref"`
		}
		c.ShouldBindJSON(&req)

		paidRef := strings.TrimSpace(req.PaidRef)
		if len(paidRef) > 64 {
			paidRef = paidRef[:64]
		}

		claim, err := getClaimWithPrize(ctx, db, claimID)
		if err != nil {
			if errors.Is(err, game.ErrClaimNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
				return
			}
			log.Printf("[ADMIN] Failed to fetch claim for mark-paid: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if claim.Status != models.ClaimStatusClaimed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Claim is already paid"})
			return
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			log.Printf("[ADMIN] Failed to begin mark-paid tx: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx, `
			UPDATE claims SET status=$1, paid_at=NOW(), paid_ref=NULLIF($2, '')
			WHERE id=$3 AND status=$4
		`, models.ClaimStatusPaid, paidRef, claimID, models.ClaimStatusClaimed)
		if err != nil {
			log.Printf("[ADMIN] Failed to mark claim paid: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if rows, _ := res.RowsAffected(); rows != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Claim is already paid"})
			return
		}

		if _, err := tx.ExecContext(ctx, `UPDATE prizes SET status=$1 WHERE id=$2`,
			models.PrizeStatusPaid, claim.PrizeID); err != nil {
			log.Printf("[ADMIN] Failed to mark prize paid: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if err := tx.Commit(); err != nil {
			log.Printf("[ADMIN] Failed to commit mark-paid: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/mark-paid/"+claimID, "mark_paid",
			map[string]interface{}{"claim_id": claimID, "paid_ref": paidRef}, true)
		broadcastPoolStatus(db, hub)

		c.JSON(http.StatusOK, gin.H{"claim_id": claimID, "status": models.ClaimStatusPaid, "paid_ref": paidRef})
	}
}

// PayoutQR builds the VietQR transfer payload for a pending claim. The
// dashboard renders the scannable image from the payload text.
func PayoutQR(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		claimID := c.Param("claimId")

		claim, err := getClaimWithPrize(ctx, db, claimID)
		if err != nil {
			if errors.Is(err, game.ErrClaimNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
				return
			}
			log.Printf("[ADMIN] Failed to fetch claim for payout: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if claim.Status != models.ClaimStatusClaimed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Claim is already paid"})
			return
		}
		if !claim.BankBin.Valid || !claim.BankAccountNo.Valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Claim has no bank information yet"})
			return
		}

		transferNote := claim.TransferNote.String
		if !claim.TransferNote.Valid || transferNote == "" {
			transferNote = game.BuildDefaultTransferNote(claim.ID)
			if _, err := db.ExecContext(ctx, `UPDATE claims SET transfer_note=$1 WHERE id=$2`, transferNote, claimID); err != nil {
				log.Printf("[ADMIN] Failed to backfill transfer note for %s: %v", claimID, err)
			}
		}

		payload, err := vietqr.BuildPayload(vietqr.Input{
			BankBin:       claim.BankBin.String,
			BankAccountNo: claim.BankAccountNo.String,
			AmountVnd:     claim.EffectiveAmountVnd(),
			TransferNote:  transferNote,
		})
		if err != nil {
			if errors.Is(err, vietqr.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Encoding invariant violations are defects, not user input errors.
			log.Printf("[ADMIN] FATAL payout encoding defect for claim %s: %v", claimID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payout encoding failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"payload": payload})
	}
}

// ResetGame wipes all claims and prizes and reseeds the pool from config.
func ResetGame(db *sqlx.DB, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")

		result, err := game.ResetGame(c.Request.Context(), db, nil)
		if err != nil {
			log.Printf("[ADMIN] Game reset failed: %v", err)
			admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/reset", "reset_game", nil, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset game"})
			return
		}

		admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/reset", "reset_game",
			map[string]interface{}{"prize_count": result.PrizeCount}, true)
		broadcastPoolStatus(db, hub)

		c.JSON(http.StatusOK, result)
	}
}

// GrantDeviceAllowance grants a device extra plays past the played-once gate.
func GrantDeviceAllowance(db *sqlx.DB, guard *playguard.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")

		var req struct {
			DeviceID   string `json:"device_id" binding:"required"`
			ExtraPlays int64  `json:"extra_plays"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
			return
		}
		if req.ExtraPlays <= 0 {
			req.ExtraPlays = 1
		}

		balance, err := guard.GrantExtraPlays(c.Request.Context(), req.DeviceID, req.ExtraPlays)
		if err != nil {
			log.Printf("[ADMIN] Failed to grant extra plays: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant extra plays"})
			return
		}

		admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/device-allowance", "grant_extra_plays",
			map[string]interface{}{"device_id": req.DeviceID, "extra_plays": req.ExtraPlays}, true)

		c.JSON(http.StatusOK, gin.H{"device_id": req.DeviceID, "extra_plays_remaining": balance})
	}
}

// SyncBanks refreshes the bank directory from the public VietQR list.
func SyncBanks(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")

		result, err := banks.NewClient(cfg).Sync(c.Request.Context(), db)
		if err != nil {
			log.Printf("[ADMIN] Bank sync failed: %v", err)
			admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/banks/sync", "sync_banks", nil, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Bank sync failed"})
			return
		}

		admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/banks/sync", "sync_banks",
			map[string]interface{}{"total": result.Total, "logos_downloaded": result.LogosDownloaded}, true)

		c.JSON(http.StatusOK, result)
	}
}
