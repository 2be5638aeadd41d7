package game

import "errors"

// Terminal domain errors. None of these are retried; the API layer maps
// each to a distinct status code.
var (
	// ErrGameDisabled means the admin has turned the game off.
	ErrGameDisabled = errors.New("game is currently disabled")

	// ErrNoPrizeAvailable means the pool is exhausted. Terminal: the
	// allocation loop never retries it.
	ErrNoPrizeAvailable = errors.New("no prizes left")

	// ErrAllocationExhausted is returned when every allocation attempt
	// lost a race and the retry cap was hit.
	ErrAllocationExhausted = errors.New("unable to allocate prize after retries")

	// ErrClaimNotFound means the claim id does not exist.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrClaimAlreadyPaid rejects mutations on a paid claim.
	ErrClaimAlreadyPaid = errors.New("claim is already paid")

	// ErrWagerDisabled means double-or-nothing is off in config.
	ErrWagerDisabled = errors.New("double or nothing is disabled")

	// ErrWagerAlreadyPlayed enforces the once-per-claim policy.
	ErrWagerAlreadyPlayed = errors.New("double or nothing already played")
)
