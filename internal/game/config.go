package game

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/models"
)

// ConfigKey is the key of the singleton game_config row.
const ConfigKey = "default"

const (
	minStepVnd   = 1000
	minAmountVnd = 1000
	minFloorVnd  = 1000
)

// Defaults is the configuration created lazily on first access.
var Defaults = models.GameConfig{
	Key:                              ConfigKey,
	IsGameEnabled:                    true,
	EnvelopeCount:                    10,
	PrizeCount:                       10,
	MinAmountVnd:                     10000,
	MaxAmountVnd:                     200000,
	StepVnd:                          10000,
	EnableDoubleOrNothing:            false,
	DoubleOrNothingProbability:       0.5,
	DoubleMultiplier:                 2,
	FloorOnLoseVnd:                   10000,
	CapOnWinVnd:                      200000,
	AllowDoubleOrNothingOncePerClaim: true,
}

// DBTX is satisfied by *sqlx.DB and *sqlx.Tx so config access works both
// standalone and inside the engines' transactions.
type DBTX interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

const configColumns = `key, is_game_enabled, envelope_count, prize_count,
	min_amount_vnd, max_amount_vnd, step_vnd,
	enable_double_or_nothing, double_or_nothing_probability, double_multiplier,
	floor_on_lose_vnd, cap_on_win_vnd, allow_double_or_nothing_once_per_claim,
	bank_last_synced_at, created_at, updated_at`

// GetOrCreateConfig returns the singleton config row, inserting the
// defaults if it does not exist yet.
func GetOrCreateConfig(ctx context.Context, q DBTX) (*models.GameConfig, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO game_config (
			key, is_game_enabled, envelope_count, prize_count,
			min_amount_vnd, max_amount_vnd, step_vnd,
			enable_double_or_nothing, double_or_nothing_probability, double_multiplier,
			floor_on_lose_vnd, cap_on_win_vnd, allow_double_or_nothing_once_per_claim
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (key) DO NOTHING
	`, Defaults.Key, Defaults.IsGameEnabled, Defaults.EnvelopeCount, Defaults.PrizeCount,
		Defaults.MinAmountVnd, Defaults.MaxAmountVnd, Defaults.StepVnd,
		Defaults.EnableDoubleOrNothing, Defaults.DoubleOrNothingProbability, Defaults.DoubleMultiplier,
		Defaults.FloorOnLoseVnd, Defaults.CapOnWinVnd, Defaults.AllowDoubleOrNothingOncePerClaim)
	if err != nil {
		return nil, err
	}

	var cfg models.GameConfig
	if err := sqlx.GetContext(ctx, q, &cfg, `SELECT `+configColumns+` FROM game_config WHERE key=$1`, ConfigKey); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig normalizes the proposed input against the current config
// and persists the result. Every write goes through NormalizeConfig; the
// admin surface never bypasses it.
func UpdateConfig(ctx context.Context, db *sqlx.DB, input ConfigInput) (*models.GameConfig, error) {
	current, err := GetOrCreateConfig(ctx, db)
	if err != nil {
		return nil, err
	}

	next := NormalizeConfig(input, current)

	_, err = db.ExecContext(ctx, `
		UPDATE game_config SET
			is_game_enabled=$1, envelope_count=$2, prize_count=$3,
			min_amount_vnd=$4, max_amount_vnd=$5, step_vnd=$6,
			enable_double_or_nothing=$7, double_or_nothing_probability=$8, double_multiplier=$9,
			floor_on_lose_vnd=$10, cap_on_win_vnd=$11, allow_double_or_nothing_once_per_claim=$12,
			updated_at=NOW()
		WHERE key=$13
	`, next.IsGameEnabled, next.EnvelopeCount, next.PrizeCount,
		next.MinAmountVnd, next.MaxAmountVnd, next.StepVnd,
		next.EnableDoubleOrNothing, next.DoubleOrNothingProbability, next.DoubleMultiplier,
		next.FloorOnLoseVnd, next.CapOnWinVnd, next.AllowDoubleOrNothingOncePerClaim,
		ConfigKey)
	if err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now()
	return &next, nil
}

// SetBankLastSyncedAt stamps the bank directory sync time on the config row.
func SetBankLastSyncedAt(ctx context.Context, db *sqlx.DB, at time.Time) error {
	_, err := db.ExecContext(ctx, `UPDATE game_config SET bank_last_synced_at=$1, updated_at=NOW() WHERE key=$2`, at, ConfigKey)
	return err
}

// ConfigInput is a loosely-typed proposed update, as decoded from an
// admin JSON body. Values may arrive as numbers, strings or booleans;
// each field falls back to the current value when it is missing or
// unparseable.
type ConfigInput map[string]any

func intField(in ConfigInput, key string, fallback int64) int64 {
	v, ok := in[key]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case string:
		if strings.TrimSpace(t) == "" {
			return fallback
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int64(f)
		}
	}
	return fallback
}

func floatField(in ConfigInput, key string, fallback float64) float64 {
	v, ok := in[key]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if strings.TrimSpace(t) == "" {
			return fallback
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolField(in ConfigInput, key string, fallback bool) bool {
	v, ok := in[key]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if t == "true" {
			return true
		}
		if t == "false" {
			return false
		}
	}
	return fallback
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// alignRange clamps and aligns the amount range to the step: step and min
// forced to at least 1000 VND, max forced >= min, min rounded up and max
// rounded down to step multiples. If rounding inverts the order, both
// collapse to a single aligned value near the requested min.
func alignRange(minVnd, maxVnd, stepVnd int64) (alignedMin, alignedMax, step int64) {
	step = stepVnd
	if step < minStepVnd {
		step = minStepVnd
	}

	rawMin := minVnd
	if rawMin < minAmountVnd {
		rawMin = minAmountVnd
	}
	rawMax := maxVnd
	if rawMax < rawMin {
		rawMax = rawMin
	}

	alignedMin = ((rawMin + step - 1) / step) * step
	alignedMax = (rawMax / step) * step

	if alignedMin > alignedMax {
		safe := ((rawMin + step/2) / step) * step
		if safe < step {
			safe = step
		}
		alignedMin = safe
		alignedMax = safe
	}

	return alignedMin, alignedMax, step
}

// NormalizeConfig coerces a proposed update into an internally consistent
// config, falling back to the current value per field.
func NormalizeConfig(input ConfigInput, current *models.GameConfig) models.GameConfig {
	base := Defaults
	if current != nil {
		base = *current
	}

	next := base

	next.IsGameEnabled = boolField(input, "is_game_enabled", base.IsGameEnabled)

	envelopeCount := intField(input, "envelope_count", int64(base.EnvelopeCount))
	if envelopeCount < 1 {
		envelopeCount = 1
	}
	next.EnvelopeCount = int(envelopeCount)

	// Zero or invalid prize count falls back to the envelope count so a
	// config update can never produce an empty pool.
	prizeCount := intField(input, "prize_count", int64(base.PrizeCount))
	if prizeCount == 0 {
		prizeCount = envelopeCount
	}
	if prizeCount < 1 {
		prizeCount = 1
	}
	next.PrizeCount = int(prizeCount)

	next.MinAmountVnd, next.MaxAmountVnd, next.StepVnd = alignRange(
		intField(input, "min_amount_vnd", base.MinAmountVnd),
		intField(input, "max_amount_vnd", base.MaxAmountVnd),
		intField(input, "step_vnd", base.StepVnd),
	)

	next.EnableDoubleOrNothing = boolField(input, "enable_double_or_nothing", base.EnableDoubleOrNothing)
	next.DoubleOrNothingProbability = clampFloat(
		floatField(input, "double_or_nothing_probability", base.DoubleOrNothingProbability), 0, 1)

	multiplier := intField(input, "double_multiplier", base.DoubleMultiplier)
	if multiplier < 1 {
		multiplier = 1
	}
	next.DoubleMultiplier = multiplier

	floor := intField(input, "floor_on_lose_vnd", base.FloorOnLoseVnd)
	if floor < minFloorVnd {
		floor = minFloorVnd
	}
	next.FloorOnLoseVnd = floor

	capVnd := intField(input, "cap_on_win_vnd", base.CapOnWinVnd)
	if capVnd < next.MinAmountVnd {
		capVnd = next.MinAmountVnd
	}
	next.CapOnWinVnd = capVnd

	next.AllowDoubleOrNothingOncePerClaim = boolField(
		input, "allow_double_or_nothing_once_per_claim", base.AllowDoubleOrNothingOncePerClaim)

	return next
}

// GeneratePrizeAmounts samples prizeCount amounts uniformly, with
// replacement, from the aligned arithmetic sequence min, min+step, ..., max.
func GeneratePrizeAmounts(cfg *models.GameConfig, rng RandomSource) []int64 {
	alignedMin, alignedMax, step := alignRange(cfg.MinAmountVnd, cfg.MaxAmountVnd, cfg.StepVnd)

	var values []int64
	for amount := alignedMin; amount <= alignedMax; amount += step {
		values = append(values, amount)
	}
	if len(values) == 0 {
		values = []int64{alignedMin}
	}

	count := cfg.PrizeCount
	if count < 1 {
		count = 1
	}

	amounts := make([]int64, count)
	for i := range amounts {
		amounts[i] = values[rng.IntN(len(values))]
	}
	return amounts
}
