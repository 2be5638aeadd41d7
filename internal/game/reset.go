package game

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/models"
)

// ResetResult reports the state of the pool after a reset.
type ResetResult struct {
	PrizeCount    int `json:"prize_count"`
	EnvelopeCount int `json:"envelope_count"`
}

// ResetGame wipes all claims and prizes and reseeds the pool from the
// current config's amount range.
func ResetGame(ctx context.Context, db *sqlx.DB, rng RandomSource) (*ResetResult, error) {
	if rng == nil {
		rng = DefaultRNG()
	}

	cfg, err := GetOrCreateConfig(ctx, db)
	if err != nil {
		return nil, err
	}

	amounts := GeneratePrizeAmounts(cfg, rng)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM claims`); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM prizes`); err != nil {
		return nil, err
	}

	for _, amount := range amounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prizes (id, amount_vnd, status, created_at)
			VALUES ($1, $2, $3, NOW())
		`, uuid.NewString(), amount, models.PrizeStatusNew); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[GAME] Pool reset: %d prizes seeded (envelopes=%d)", len(amounts), cfg.EnvelopeCount)

	return &ResetResult{PrizeCount: len(amounts), EnvelopeCount: cfg.EnvelopeCount}, nil
}

// PoolStatus reports how many prizes remain unclaimed.
type PoolStatus struct {
	TotalPrizes     int `db:"total_prizes" json:"total_prizes"`
	RemainingPrizes int `db:"remaining_prizes" json:"remaining_prizes"`
	EnvelopeCount   int `db:"-" json:"envelope_count"`
}

// GetPoolStatus counts the pool's total and NEW prizes.
func GetPoolStatus(ctx context.Context, db *sqlx.DB) (*PoolStatus, error) {
	cfg, err := GetOrCreateConfig(ctx, db)
	if err != nil {
		return nil, err
	}

	var status PoolStatus
	err = db.GetContext(ctx, &status, `
		SELECT COUNT(*) AS total_prizes,
			COUNT(*) FILTER (WHERE status=$1) AS remaining_prizes
		FROM prizes
	`, models.PrizeStatusNew)
	if err != nil {
		return nil, err
	}
	status.EnvelopeCount = cfg.EnvelopeCount

	return &status, nil
}
