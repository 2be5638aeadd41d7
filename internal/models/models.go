package models

import (
	"database/sql"
	"time"
)

// Prize lifecycle statuses. A prize only ever moves forward:
// NEW -> CLAIMED -> PAID.
const (
	PrizeStatusNew     = "NEW"
	PrizeStatusClaimed = "CLAIMED"
	PrizeStatusPaid    = "PAID"
)

// Claim statuses.
const (
	ClaimStatusClaimed = "CLAIMED"
	ClaimStatusPaid    = "PAID"
)

// Double-or-nothing outcomes.
const (
	OutcomeWin  = "WIN"
	OutcomeLose = "LOSE"
)

// GameConfig is the singleton configuration row (key = 'default')
type GameConfig struct {
	Key                              string       `db:"key" json:"key"`
	IsGameEnabled                    bool         `db:"is_game_enabled" json:"is_game_enabled"`
	EnvelopeCount                    int          `db:"envelope_count" json:"envelope_count"`
	PrizeCount                       int          `db:"prize_count" json:"prize_count"`
	MinAmountVnd                     int64        `db:"min_amount_vnd" json:"min_amount_vnd"`
	MaxAmountVnd                     int64        `db:"max_amount_vnd" json:"max_amount_vnd"`
	StepVnd                          int64        `db:"step_vnd" json:"step_vnd"`
	EnableDoubleOrNothing            bool         `db:"enable_double_or_nothing" json:"enable_double_or_nothing"`
	DoubleOrNothingProbability       float64      `db:"double_or_nothing_probability" json:"double_or_nothing_probability"`
	DoubleMultiplier                 int64        `db:"double_multiplier" json:"double_multiplier"`
	FloorOnLoseVnd                   int64        `db:"floor_on_lose_vnd" json:"floor_on_lose_vnd"`
	CapOnWinVnd                      int64        `db:"cap_on_win_vnd" json:"cap_on_win_vnd"`
	AllowDoubleOrNothingOncePerClaim bool         `db:"allow_double_or_nothing_once_per_claim" json:"allow_double_or_nothing_once_per_claim"`
	BankLastSyncedAt                 sql.NullTime `db:"bank_last_synced_at" json:"bank_last_synced_at,omitempty"`
	CreatedAt                        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt                        time.Time    `db:"updated_at" json:"updated_at"`
}

// Prize is one envelope's cash prize. Seq gives the stable creation
// ordering the allocation engine selects against.
type Prize struct {
	ID        string    `db:"id" json:"id"`
	Seq       int64     `db:"seq" json:"seq"`
	AmountVnd int64     `db:"amount_vnd" json:"amount_vnd"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Claim is the record granted to the participant who opened an envelope.
// At most one claim ever references a prize (claims.prize_id is unique).
type Claim struct {
	ID                     string         `db:"id" json:"id"`
	PrizeID                string         `db:"prize_id" json:"prize_id"`
	Status                 string         `db:"status" json:"status"`
	FinalAmountVnd         sql.NullInt64  `db:"final_amount_vnd" json:"final_amount_vnd,omitempty"`
	DoubleOrNothingPlayed  bool           `db:"double_or_nothing_played" json:"double_or_nothing_played"`
	DoubleOrNothingOutcome sql.NullString `db:"double_or_nothing_outcome" json:"double_or_nothing_outcome,omitempty"`
	WinnerName             sql.NullString `db:"winner_name" json:"winner_name,omitempty"`
	WinnerPhone            sql.NullString `db:"winner_phone" json:"winner_phone,omitempty"`
	BankBin                sql.NullString `db:"bank_bin" json:"bank_bin,omitempty"`
	BankAccountNo          sql.NullString `db:"bank_account_no" json:"bank_account_no,omitempty"`
	TransferNote           sql.NullString `db:"transfer_note" json:"transfer_note,omitempty"`
	ClaimedAt              time.Time      `db:"claimed_at" json:"claimed_at"`
	PaidAt                 sql.NullTime   `db:"paid_at" json:"paid_at,omitempty"`
	PaidRef                sql.NullString `db:"paid_ref" json:"paid_ref,omitempty"`
}

// ClaimWithPrize joins a claim with its owning prize.
type ClaimWithPrize struct {
	Claim
	PrizeAmountVnd int64  `db:"prize_amount_vnd" json:"prize_amount_vnd"`
	PrizeStatus    string `db:"prize_status" json:"prize_status"`
}

// EffectiveAmountVnd is the payable amount: the wager override when set,
// otherwise the prize's base amount.
func (c *ClaimWithPrize) EffectiveAmountVnd() int64 {
	if c.FinalAmountVnd.Valid {
		return c.FinalAmountVnd.Int64
	}
	return c.PrizeAmountVnd
}

// Bank is a directory entry synced from the VietQR bank list.
type Bank struct {
	Bin           string         `db:"bin" json:"bin"`
	Name          string         `db:"name" json:"name"`
	ShortName     string         `db:"short_name" json:"short_name"`
	Code          sql.NullString `db:"code" json:"code,omitempty"`
	SwiftCode     sql.NullString `db:"swift_code" json:"swift_code,omitempty"`
	LogoURL       sql.NullString `db:"logo_url" json:"logo_url,omitempty"`
	LocalLogoPath sql.NullString `db:"local_logo_path" json:"local_logo_path,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAccount is a dashboard operator account.
type AdminAccount struct {
	Username     string    `db:"username" json:"username"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	PasscodeHash string    `db:"passcode_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AdminAudit is one audit log row for an admin action.
type AdminAudit struct {
	ID            int64     `db:"id" json:"id"`
	AdminUsername string    `db:"admin_username" json:"admin_username"`
	IP            string    `db:"ip" json:"ip"`
	Route         string    `db:"route" json:"route"`
	Action        string    `db:"action" json:"action"`
	Details       []byte    `db:"details" json:"details,omitempty"`
	Success       bool      `db:"success" json:"success"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
