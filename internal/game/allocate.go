package game

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/tetlixi/backend/internal/models"
	"github.com/tetlixi/backend/internal/vietqr"
)

// claimRetries bounds the allocation retry loop. Only lost races and
// serialization aborts are retried; pool exhaustion and disabled-game
// failures are terminal on the first attempt.
const claimRetries = 8

// TransferNotePrefix seeds the default transfer note generated at claim time.
const TransferNotePrefix = "CHUC MUNG NAM MOI - LIXI "

// ClaimResult is the successful outcome of ClaimRandomPrize.
type ClaimResult struct {
	ClaimID   string `json:"claim_id"`
	AmountVnd int64  `json:"amount_vnd"`
}

// attemptOutcome tags a single allocation attempt so the retry loop can
// branch explicitly instead of classifying opaque errors.
type attemptOutcome int

const (
	attemptSuccess attemptOutcome = iota
	attemptNoPrize
	attemptRetryable
	attemptFatal
)

// BuildDefaultTransferNote derives a stable transfer note from the prize
// identity: the note prefix plus the last ten characters of the id.
func BuildDefaultTransferNote(seed string) string {
	suffix := seed
	if len(suffix) > 10 {
		suffix = suffix[len(suffix)-10:]
	}
	return vietqr.NormalizeTransferNote(TransferNotePrefix+strings.ToUpper(suffix), "LIXI")
}

// ClaimRandomPrize picks one NEW prize uniformly at random, transitions it
// to CLAIMED and creates the owning claim, all inside one serializable
// transaction. Lost races re-run the whole attempt against the live prize
// set, up to claimRetries times.
func ClaimRandomPrize(ctx context.Context, db *sqlx.DB, cfg *models.GameConfig, rng RandomSource) (*ClaimResult, error) {
	if !cfg.IsGameEnabled {
		return nil, ErrGameDisabled
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	return runClaimAttempts(claimRetries, func() (*ClaimResult, attemptOutcome, error) {
		return claimOnce(ctx, db, rng)
	})
}

// runClaimAttempts loops an attempt function on retryable outcomes up to
// the cap. Terminal outcomes surface immediately; exhausting the cap
// surfaces as ErrAllocationExhausted.
func runClaimAttempts(maxAttempts int, attempt func() (*ClaimResult, attemptOutcome, error)) (*ClaimResult, error) {
	for i := 0; i < maxAttempts; i++ {
		res, outcome, err := attempt()
		switch outcome {
		case attemptSuccess:
			return res, nil
		case attemptNoPrize:
			return nil, ErrNoPrizeAvailable
		case attemptRetryable:
			log.Printf("[GAME] Claim attempt %d/%d lost a race, retrying: %v", i+1, maxAttempts, err)
			continue
		default:
			return nil, err
		}
	}
	return nil, ErrAllocationExhausted
}

func claimOnce(ctx context.Context, db *sqlx.DB, rng RandomSource) (*ClaimResult, attemptOutcome, error) {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, attemptFatal, err
	}
	defer tx.Rollback()

	var available int
	if err := tx.GetContext(ctx, &available, `SELECT COUNT(*) FROM prizes WHERE status=$1`, models.PrizeStatusNew); err != nil {
		return nil, classifyTxError(err), err
	}
	if available == 0 {
		return nil, attemptNoPrize, nil
	}

	// Stable seq ordering makes the random offset map to exactly one row.
	offset := rng.IntN(available)

	var prize models.Prize
	err = tx.GetContext(ctx, &prize, `
		SELECT id, seq, amount_vnd, status, created_at
		FROM prizes
		WHERE status=$1
		ORDER BY seq ASC
		OFFSET $2 LIMIT 1
	`, models.PrizeStatusNew, offset)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row vanished between count and select.
			return nil, attemptRetryable, err
		}
		return nil, classifyTxError(err), err
	}

	res, err := tx.ExecContext(ctx, `UPDATE prizes SET status=$1 WHERE id=$2 AND status=$3`,
		models.PrizeStatusClaimed, prize.ID, models.PrizeStatusNew)
	if err != nil {
		return nil, classifyTxError(err), err
	}
	if rows, _ := res.RowsAffected(); rows != 1 {
		return nil, attemptRetryable, errors.New("lost race while updating prize status")
	}

	claimID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO claims (id, prize_id, status, transfer_note, claimed_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, claimID, prize.ID, models.ClaimStatusClaimed, BuildDefaultTransferNote(prize.ID))
	if err != nil {
		return nil, classifyTxError(err), err
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyTxError(err), err
	}

	return &ClaimResult{ClaimID: claimID, AmountVnd: prize.AmountVnd}, attemptSuccess, nil
}

// classifyTxError maps Postgres failure modes onto attempt outcomes:
// serialization aborts and unique violations are contention, everything
// else is fatal.
func classifyTxError(err error) attemptOutcome {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return attemptRetryable
		case "23505": // unique_violation (claims.prize_id)
			return attemptRetryable
		}
	}
	return attemptFatal
}
