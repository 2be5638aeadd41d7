package game

import (
	"testing"

	"github.com/tetlixi/backend/internal/models"
)

// alwaysRNG is a RandomSource whose Float64 is fixed, forcing one branch
// of the Bernoulli trial.
type alwaysRNG struct{ f float64 }

func (a alwaysRNG) Float64() float64 { return a.f }
func (a alwaysRNG) IntN(n int) int   { return 0 }

func wagerConfig() *models.GameConfig {
	cfg := Defaults
	cfg.EnableDoubleOrNothing = true
	cfg.DoubleMultiplier = 2
	cfg.FloorOnLoseVnd = 10000
	cfg.CapOnWinVnd = 200000
	return &cfg
}

func TestResolveWagerWinDoublesTheAmount(t *testing.T) {
	cfg := wagerConfig()
	cfg.DoubleOrNothingProbability = 1

	outcome, final := resolveWager(cfg, 50000, alwaysRNG{f: 0})
	if outcome != models.OutcomeWin {
		t.Errorf("outcome = %s, want %s", outcome, models.OutcomeWin)
	}
	if final != 100000 {
		t.Errorf("final = %d, want 100000", final)
	}
}

func TestResolveWagerWinIsCapped(t *testing.T) {
	cfg := wagerConfig()
	cfg.DoubleOrNothingProbability = 1
	cfg.CapOnWinVnd = 150000

	_, final := resolveWager(cfg, 120000, alwaysRNG{f: 0})
	if final != 150000 {
		t.Errorf("final = %d, want capped 150000", final)
	}
}

func TestResolveWagerLoseHitsTheFloor(t *testing.T) {
	cfg := wagerConfig()
	cfg.DoubleOrNothingProbability = 0
	cfg.FloorOnLoseVnd = 5000

	outcome, final := resolveWager(cfg, 180000, alwaysRNG{f: 0.99})
	if outcome != models.OutcomeLose {
		t.Errorf("outcome = %s, want %s", outcome, models.OutcomeLose)
	}
	// The floor is flat: it does not depend on the wagered amount.
	if final != 5000 {
		t.Errorf("final = %d, want floor 5000", final)
	}
}

func TestResolveWagerProbabilityBoundaries(t *testing.T) {
	cfg := wagerConfig()

	// p=1 wins on every draw, p=0 loses on every draw.
	cfg.DoubleOrNothingProbability = 1
	rng := NewSeededRNG(7)
	for i := 0; i < 100; i++ {
		if outcome, _ := resolveWager(cfg, 20000, rng); outcome != models.OutcomeWin {
			t.Fatalf("p=1 produced %s on draw %d", outcome, i)
		}
	}

	cfg.DoubleOrNothingProbability = 0
	for i := 0; i < 100; i++ {
		if outcome, _ := resolveWager(cfg, 20000, rng); outcome != models.OutcomeLose {
			t.Fatalf("p=0 produced %s on draw %d", outcome, i)
		}
	}
}

func TestResolveWagerMultiplierAboveTwo(t *testing.T) {
	cfg := wagerConfig()
	cfg.DoubleOrNothingProbability = 1
	cfg.DoubleMultiplier = 3
	cfg.CapOnWinVnd = 1000000

	_, final := resolveWager(cfg, 40000, alwaysRNG{f: 0})
	if final != 120000 {
		t.Errorf("final = %d, want 120000", final)
	}
}
