package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/config"
	"github.com/tetlixi/backend/internal/game"
	"github.com/tetlixi/backend/internal/models"
	"github.com/tetlixi/backend/internal/vietqr"
)

func getClaimWithPrize(ctx context.Context, db *sqlx.DB, claimID string) (*models.ClaimWithPrize, error) {
	if _, err := uuid.Parse(claimID); err != nil {
		return nil, game.ErrClaimNotFound
	}

	var claim models.ClaimWithPrize
	err := db.GetContext(ctx, &claim, `
		SELECT c.id, c.prize_id, c.status, c.final_amount_vnd,
			c.double_or_nothing_played, c.double_or_nothing_outcome,
			c.winner_name, c.winner_phone, c.bank_bin, c.bank_account_no,
			c.transfer_note, c.claimed_at, c.paid_at, c.paid_ref,
			p.amount_vnd AS prize_amount_vnd, p.status AS prize_status
		FROM claims c
		JOIN prizes p ON p.id = c.prize_id
		WHERE c.id = $1
	`, claimID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, game.ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}

func nullableString(ns sql.NullString) interface{} {
	if ns.Valid {
		return ns.String
	}
	return nil
}

// GetClaim returns claim details plus the wager settings the result page needs.
func GetClaim(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		claim, err := getClaimWithPrize(ctx, db, c.Param("claimId"))
		if err != nil {
			if errors.Is(err, game.ErrClaimNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
				return
			}
			log.Printf("[CLAIM] Failed to fetch claim: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		gameCfg, err := game.GetOrCreateConfig(ctx, db)
		if err != nil {
			log.Printf("[CLAIM] Failed to load game config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		var outcome interface{}
		if claim.DoubleOrNothingOutcome.Valid {
			outcome = claim.DoubleOrNothingOutcome.String
		}

		c.JSON(http.StatusOK, gin.H{
			"claim_id":                 claim.ID,
			"status":                   claim.Status,
			"amount_vnd":               claim.EffectiveAmountVnd(),
			"base_amount_vnd":          claim.PrizeAmountVnd,
			"winner_name":              nullableString(claim.WinnerName),
			"winner_phone":             nullableString(claim.WinnerPhone),
			"bank_bin":                 nullableString(claim.BankBin),
			"bank_account_no":          nullableString(claim.BankAccountNo),
			"transfer_note":            nullableString(claim.TransferNote),
			"double_or_nothing_played": claim.DoubleOrNothingPlayed,
			"double_or_nothing_outcome": outcome,
			"double_or_nothing_enabled": gameCfg.EnableDoubleOrNothing,
			"allow_double_or_nothing_once_per_claim": gameCfg.AllowDoubleOrNothingOncePerClaim,
			"claimed_at":   claim.ClaimedAt,
			"prize_status": claim.PrizeStatus,
		})
	}
}

// UpdateClaim stores the winner's bank details on an unpaid claim.
func UpdateClaim(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		claimID := c.Param("claimId")

		if !requireClaimToken(c, cfg, claimID) {
			return
		}

		var req struct {
			WinnerName    string `json:"winner_name"`
			WinnerPhone   string `json:"winner_phone"`
			BankBin       string `json:"bank_bin"`
			BankAccountNo string `json:"bank_account_no"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
			return
		}

		bankBin := vietqr.DigitsOnly(req.BankBin)
		bankAccountNo := vietqr.NormalizeAsciiAlnum(req.BankAccountNo, "")
		if bankBin == "" || bankAccountNo == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bank_bin and bank_account_no are required"})
			return
		}

		claim, err := getClaimWithPrize(ctx, db, claimID)
		if err != nil {
			if errors.Is(err, game.ErrClaimNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
				return
			}
			log.Printf("[CLAIM] Failed to fetch claim for update: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if claim.Status != models.ClaimStatusClaimed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Claim is already paid"})
			return
		}

		transferNote := claim.TransferNote.String
		if !claim.TransferNote.Valid || transferNote == "" {
			transferNote = game.BuildDefaultTransferNote(claim.ID)
		}

		_, err = db.ExecContext(ctx, `
			UPDATE claims
			SET winner_name=NULLIF($1, ''), winner_phone=NULLIF($2, ''),
				bank_bin=$3, bank_account_no=$4, transfer_note=$5
			WHERE id=$6
		`, strings.TrimSpace(req.WinnerName), strings.TrimSpace(req.WinnerPhone),
			bankBin, bankAccountNo, transferNote, claimID)
		if err != nil {
			log.Printf("[CLAIM] Failed to update claim %s: %v", claimID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"claim_id":        claimID,
			"status":          claim.Status,
			"bank_bin":        bankBin,
			"bank_account_no": bankAccountNo,
			"transfer_note":   transferNote,
		})
	}
}

// PlayDoubleOrNothing runs the one-shot wager on a claim.
func PlayDoubleOrNothing(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimID := c.Param("claimId")

		if !requireClaimToken(c, cfg, claimID) {
			return
		}

		if _, err := uuid.Parse(claimID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
			return
		}

		result, err := game.PlayDoubleOrNothing(c.Request.Context(), db, claimID, nil)
		if err != nil {
			switch {
			case errors.Is(err, game.ErrClaimNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
			case errors.Is(err, game.ErrWagerDisabled),
				errors.Is(err, game.ErrClaimAlreadyPaid),
				errors.Is(err, game.ErrWagerAlreadyPlayed):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				log.Printf("[WAGER] Double or nothing failed for claim %s: %v", claimID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"outcome":          result.Outcome,
			"final_amount_vnd": result.FinalAmountVnd,
			"played":           result.Played,
		})
	}
}
