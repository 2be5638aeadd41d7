package game

import (
	"testing"

	"github.com/tetlixi/backend/internal/models"
)

func TestAlignRangeRoundsTowardTheInside(t *testing.T) {
	alignedMin, alignedMax, step := alignRange(15000, 48000, 10000)
	if alignedMin != 20000 || alignedMax != 40000 || step != 10000 {
		t.Errorf("alignRange(15000, 48000, 10000) = (%d, %d, %d), want (20000, 40000, 10000)", alignedMin, alignedMax, step)
	}
}

func TestAlignRangeCollapsesInvertedRange(t *testing.T) {
	// Rounding min up and max down inverts the order; both collapse to the
	// step multiple nearest the requested min.
	alignedMin, alignedMax, _ := alignRange(15000, 15500, 10000)
	if alignedMin != 20000 || alignedMax != 20000 {
		t.Errorf("alignRange(15000, 15500, 10000) = (%d, %d), want collapsed (20000, 20000)", alignedMin, alignedMax)
	}
}

func TestAlignRangeEnforcesFloors(t *testing.T) {
	alignedMin, alignedMax, step := alignRange(0, 0, 0)
	if step != 1000 {
		t.Errorf("step floor not applied: %d", step)
	}
	if alignedMin < 1000 || alignedMax < alignedMin {
		t.Errorf("range floor not applied: (%d, %d)", alignedMin, alignedMax)
	}
}

func TestNormalizeConfigPrizeCountDefaultsToEnvelopeCount(t *testing.T) {
	current := Defaults
	next := NormalizeConfig(ConfigInput{
		"envelope_count": float64(25),
		"prize_count":    float64(0),
	}, &current)

	if next.EnvelopeCount != 25 {
		t.Errorf("envelope_count = %d, want 25", next.EnvelopeCount)
	}
	if next.PrizeCount != 25 {
		t.Errorf("prize_count should follow envelope_count when zero, got %d", next.PrizeCount)
	}
}

func TestNormalizeConfigClampsProbability(t *testing.T) {
	current := Defaults
	for _, tc := range []struct {
		in   float64
		want float64
	}{
		{-0.5, 0}, {0.3, 0.3}, {1.7, 1},
	} {
		next := NormalizeConfig(ConfigInput{"double_or_nothing_probability": tc.in}, &current)
		if next.DoubleOrNothingProbability != tc.want {
			t.Errorf("probability %v normalized to %v, want %v", tc.in, next.DoubleOrNothingProbability, tc.want)
		}
	}
}

func TestNormalizeConfigCapNeverBelowMin(t *testing.T) {
	current := Defaults
	next := NormalizeConfig(ConfigInput{
		"min_amount_vnd": float64(50000),
		"max_amount_vnd": float64(100000),
		"cap_on_win_vnd": float64(2000),
	}, &current)

	if next.CapOnWinVnd != next.MinAmountVnd {
		t.Errorf("cap_on_win_vnd = %d, want raised to min %d", next.CapOnWinVnd, next.MinAmountVnd)
	}
}

func TestNormalizeConfigAcceptsStringNumbers(t *testing.T) {
	// Admin dashboards send form values as strings; they parse like numbers.
	current := Defaults
	next := NormalizeConfig(ConfigInput{
		"min_amount_vnd":  "20000",
		"max_amount_vnd":  "60000",
		"step_vnd":        "20000",
		"is_game_enabled": "false",
	}, &current)

	if next.MinAmountVnd != 20000 || next.MaxAmountVnd != 60000 || next.StepVnd != 20000 {
		t.Errorf("string amounts not parsed: min=%d max=%d step=%d", next.MinAmountVnd, next.MaxAmountVnd, next.StepVnd)
	}
	if next.IsGameEnabled {
		t.Error("is_game_enabled string \"false\" not applied")
	}
}

func TestNormalizeConfigUnparseableFallsBackToCurrent(t *testing.T) {
	current := Defaults
	current.MinAmountVnd = 30000
	current.MaxAmountVnd = 90000

	next := NormalizeConfig(ConfigInput{"min_amount_vnd": "lots"}, &current)
	if next.MinAmountVnd != 30000 {
		t.Errorf("unparseable min fell back to %d, want current 30000", next.MinAmountVnd)
	}
}

func TestGeneratePrizeAmountsBoundsAndAlignment(t *testing.T) {
	cfg := &models.GameConfig{
		PrizeCount:   200,
		MinAmountVnd: 15000,
		MaxAmountVnd: 95000,
		StepVnd:      10000,
	}
	rng := NewSeededRNG(42)

	amounts := GeneratePrizeAmounts(cfg, rng)
	if len(amounts) != 200 {
		t.Fatalf("expected 200 amounts, got %d", len(amounts))
	}

	// The working range is the aligned one: 20000..90000 in 10000 steps.
	for _, a := range amounts {
		if a < 20000 || a > 90000 {
			t.Errorf("amount %d outside aligned range [20000, 90000]", a)
		}
		if a%10000 != 0 {
			t.Errorf("amount %d not aligned to step", a)
		}
	}
}

func TestGeneratePrizeAmountsSingleValueRange(t *testing.T) {
	cfg := &models.GameConfig{
		PrizeCount:   5,
		MinAmountVnd: 50000,
		MaxAmountVnd: 50000,
		StepVnd:      10000,
	}
	amounts := GeneratePrizeAmounts(cfg, NewSeededRNG(1))
	for _, a := range amounts {
		if a != 50000 {
			t.Errorf("collapsed range should always yield 50000, got %d", a)
		}
	}
}
