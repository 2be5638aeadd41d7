package game

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/models"
)

// WagerResult is the outcome of one double-or-nothing play.
type WagerResult struct {
	Outcome        string `json:"outcome"`
	FinalAmountVnd int64  `json:"final_amount_vnd"`
	Played         bool   `json:"played"`
}

// resolveWager applies the amount transformation for one Bernoulli trial.
// Win: current times the multiplier, capped. Lose: the flat floor,
// independent of current.
func resolveWager(cfg *models.GameConfig, current int64, rng RandomSource) (outcome string, final int64) {
	if rng.Float64() < cfg.DoubleOrNothingProbability {
		final = current * cfg.DoubleMultiplier
		if final > cfg.CapOnWinVnd {
			final = cfg.CapOnWinVnd
		}
		return models.OutcomeWin, final
	}
	return models.OutcomeLose, cfg.FloorOnLoseVnd
}

// PlayDoubleOrNothing applies the one-shot wager to a claim. All
// preconditions are checked inside one serializable transaction against
// the live config and the claim's current fields; every failure is a
// terminal policy violation, never retried.
func PlayDoubleOrNothing(ctx context.Context, db *sqlx.DB, claimID string, rng RandomSource) (*WagerResult, error) {
	if rng == nil {
		rng = DefaultRNG()
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	cfg, err := GetOrCreateConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	if !cfg.EnableDoubleOrNothing {
		return nil, ErrWagerDisabled
	}

	var claim models.ClaimWithPrize
	err = tx.GetContext(ctx, &claim, `
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
			return nil, ErrClaimNotFound
		}
		return nil, err
	}

	if claim.Status != models.ClaimStatusClaimed {
		return nil, ErrClaimAlreadyPaid
	}
	if cfg.AllowDoubleOrNothingOncePerClaim && claim.DoubleOrNothingPlayed {
		return nil, ErrWagerAlreadyPlayed
	}

	outcome, final := resolveWager(cfg, claim.EffectiveAmountVnd(), rng)

	_, err = tx.ExecContext(ctx, `
		UPDATE claims
		SET final_amount_vnd=$1, double_or_nothing_played=TRUE, double_or_nothing_outcome=$2
		WHERE id=$3
	`, final, outcome, claimID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &WagerResult{Outcome: outcome, FinalAmountVnd: final, Played: true}, nil
}
