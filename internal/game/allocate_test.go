package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestRunClaimAttemptsSuccessFirstTry(t *testing.T) {
	want := &ClaimResult{ClaimID: "abc", AmountVnd: 50000}
	calls := 0

	res, err := runClaimAttempts(8, func() (*ClaimResult, attemptOutcome, error) {
		calls++
		return want, attemptSuccess, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if calls != 1 {
		t.Errorf("attempt called %d times, want 1", calls)
	}
}

func TestRunClaimAttemptsNoPrizeIsTerminal(t *testing.T) {
	calls := 0
	_, err := runClaimAttempts(8, func() (*ClaimResult, attemptOutcome, error) {
		calls++
		return nil, attemptNoPrize, nil
	})
	if !errors.Is(err, ErrNoPrizeAvailable) {
		t.Errorf("expected ErrNoPrizeAvailable, got %v", err)
	}
	if calls != 1 {
		t.Errorf("pool exhaustion should not retry, got %d calls", calls)
	}
}

func TestRunClaimAttemptsRetriesThenSucceeds(t *testing.T) {
	calls := 0
	res, err := runClaimAttempts(8, func() (*ClaimResult, attemptOutcome, error) {
		calls++
		if calls < 3 {
			return nil, attemptRetryable, errors.New("lost race")
		}
		return &ClaimResult{ClaimID: "later", AmountVnd: 10000}, attemptSuccess, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ClaimID != "later" {
		t.Errorf("result = %+v", res)
	}
	if calls != 3 {
		t.Errorf("attempt called %d times, want 3", calls)
	}
}

func TestRunClaimAttemptsExhaustsRetryBudget(t *testing.T) {
	calls := 0
	_, err := runClaimAttempts(8, func() (*ClaimResult, attemptOutcome, error) {
		calls++
		return nil, attemptRetryable, errors.New("still losing")
	})
	if !errors.Is(err, ErrAllocationExhausted) {
		t.Errorf("expected ErrAllocationExhausted, got %v", err)
	}
	if calls != 8 {
		t.Errorf("attempt called %d times, want 8", calls)
	}
}

func TestRunClaimAttemptsFatalSurfacesImmediately(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	_, err := runClaimAttempts(8, func() (*ClaimResult, attemptOutcome, error) {
		calls++
		return nil, attemptFatal, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected fatal error to surface, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fatal error should not retry, got %d calls", calls)
	}
}

func TestClassifyTxError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want attemptOutcome
	}{
		{"serialization failure", &pq.Error{Code: "40001"}, attemptRetryable},
		{"deadlock", &pq.Error{Code: "40P01"}, attemptRetryable},
		{"unique violation", &pq.Error{Code: "23505"}, attemptRetryable},
		{"syntax error", &pq.Error{Code: "42601"}, attemptFatal},
		{"plain error", errors.New("boom"), attemptFatal},
	}
	for _, tc := range cases {
		if got := classifyTxError(tc.err); got != tc.want {
			t.Errorf("%s: classifyTxError = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestBuildDefaultTransferNote(t *testing.T) {
	note := BuildDefaultTransferNote("a1b2c3d4-e5f6-7890-abcd-ef0123456789")
	if !strings.HasPrefix(note, "CHUC MUNG NAM MOI - LIXI ") {
		t.Errorf("note missing prefix: %q", note)
	}
	// Only the last ten characters of the id make it in, uppercased, with
	// the note alphabet applied.
	if !strings.HasSuffix(note, "0123456789") {
		t.Errorf("note missing id suffix: %q", note)
	}
	if len(note) > 50 {
		t.Errorf("note exceeds 50 chars: %d", len(note))
	}
}

func TestBuildDefaultTransferNoteShortSeed(t *testing.T) {
	note := BuildDefaultTransferNote("ab12")
	if !strings.HasSuffix(note, "AB12") {
		t.Errorf("short seed not used whole: %q", note)
	}
}
