package game

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/tetlixi/backend/internal/models"
)

// testDB connects to TEST_DATABASE_URL, skipping when it is unset. The
// schema must already be migrated; the pool is reset per test.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func seedPool(t *testing.T, db *sqlx.DB, prizeCount int) *models.GameConfig {
	t.Helper()
	ctx := context.Background()

	if _, err := UpdateConfig(ctx, db, ConfigInput{
		"is_game_enabled": true,
		"envelope_count":  float64(prizeCount),
		"prize_count":     float64(prizeCount),
		"min_amount_vnd":  float64(10000),
		"max_amount_vnd":  float64(50000),
		"step_vnd":        float64(10000),
	}); err != nil {
		t.Fatalf("failed to set test config: %v", err)
	}
	if _, err := ResetGame(ctx, db, NewSeededRNG(99)); err != nil {
		t.Fatalf("failed to reset pool: %v", err)
	}

	cfg, err := GetOrCreateConfig(ctx, db)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func TestClaimRandomPrizeExactlyOnce(t *testing.T) {
	db := testDB(t)
	const prizeCount = 10
	cfg := seedPool(t, db, prizeCount)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < prizeCount; i++ {
		res, err := ClaimRandomPrize(ctx, db, cfg, nil)
		if err != nil {
			t.Fatalf("claim %d failed: %v", i, err)
		}
		if seen[res.ClaimID] {
			t.Fatalf("duplicate claim id %s", res.ClaimID)
		}
		seen[res.ClaimID] = true
	}

	if _, err := ClaimRandomPrize(ctx, db, cfg, nil); !errors.Is(err, ErrNoPrizeAvailable) {
		t.Errorf("expected ErrNoPrizeAvailable on empty pool, got %v", err)
	}

	var remaining int
	if err := db.Get(&remaining, `SELECT COUNT(*) FROM prizes WHERE status=$1`, models.PrizeStatusNew); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("%d prizes left NEW after draining the pool", remaining)
	}
}

func TestClaimRandomPrizeConcurrent(t *testing.T) {
	db := testDB(t)
	const prizeCount = 20
	const claimers = 30
	cfg := seedPool(t, db, prizeCount)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		claimIDs  []string
		exhausted int
	)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ClaimRandomPrize(ctx, db, cfg, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				claimIDs = append(claimIDs, res.ClaimID)
			case errors.Is(err, ErrNoPrizeAvailable), errors.Is(err, ErrAllocationExhausted):
				exhausted++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(claimIDs)+exhausted != claimers {
		t.Errorf("accounted for %d of %d claimers", len(claimIDs)+exhausted, claimers)
	}
	if len(claimIDs) > prizeCount {
		t.Errorf("%d successful claims from a %d-prize pool", len(claimIDs), prizeCount)
	}

	// Every claimed prize has exactly one claim.
	var orphaned int
	if err := db.Get(&orphaned, `
		SELECT COUNT(*) FROM prizes p
		WHERE p.status=$1 AND NOT EXISTS (SELECT 1 FROM claims c WHERE c.prize_id = p.id)
	`, models.PrizeStatusClaimed); err != nil {
		t.Fatalf("orphan check failed: %v", err)
	}
	if orphaned != 0 {
		t.Errorf("%d CLAIMED prizes have no claim row", orphaned)
	}

	unique := make(map[string]bool)
	for _, id := range claimIDs {
		if unique[id] {
			t.Errorf("duplicate claim id %s", id)
		}
		unique[id] = true
	}
}

func TestClaimRandomPrizeRespectsDisabledGame(t *testing.T) {
	db := testDB(t)
	cfg := seedPool(t, db, 5)
	cfg.IsGameEnabled = false

	if _, err := ClaimRandomPrize(context.Background(), db, cfg, nil); !errors.Is(err, ErrGameDisabled) {
		t.Errorf("expected ErrGameDisabled, got %v", err)
	}
}

func TestPlayDoubleOrNothingOncePerClaim(t *testing.T) {
	db := testDB(t)
	cfg := seedPool(t, db, 3)
	ctx := context.Background()

	if _, err := UpdateConfig(ctx, db, ConfigInput{
		"enable_double_or_nothing":      true,
		"double_or_nothing_probability": float64(1),
		"cap_on_win_vnd":                float64(1000000),
	}); err != nil {
		t.Fatalf("failed to enable wager: %v", err)
	}

	res, err := ClaimRandomPrize(ctx, db, cfg, nil)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	wager, err := PlayDoubleOrNothing(ctx, db, res.ClaimID, NewSeededRNG(1))
	if err != nil {
		t.Fatalf("wager failed: %v", err)
	}
	if wager.Outcome != models.OutcomeWin {
		t.Errorf("p=1 wager lost")
	}
	if wager.FinalAmountVnd != res.AmountVnd*2 {
		t.Errorf("final = %d, want %d", wager.FinalAmountVnd, res.AmountVnd*2)
	}

	if _, err := PlayDoubleOrNothing(ctx, db, res.ClaimID, NewSeededRNG(1)); !errors.Is(err, ErrWagerAlreadyPlayed) {
		t.Errorf("expected ErrWagerAlreadyPlayed on second wager, got %v", err)
	}
}
