package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// GetAdminAccount retrieves an admin account by username
func GetAdminAccount(db *sqlx.DB, username string) (*models.AdminAccount, error) {
	var account models.AdminAccount
	err := db.Get(&account, `SELECT username, display_name, passcode_hash, created_at, updated_at FROM admin_accounts WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAdminAccount creates or updates an admin account (used for seeding)
func CreateAdminAccount(db *sqlx.DB, username, displayName, plainPasscode string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPasscode), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash passcode: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO admin_accounts (username, display_name, passcode_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			passcode_hash = EXCLUDED.passcode_hash,
			updated_at = NOW()
	`, username, displayName, string(hashed))

	return err
}

// ValidateAdminCredentials checks a username/passcode pair
func ValidateAdminCredentials(db *sqlx.DB, username, passcode string) (*models.AdminAccount, error) {
	account, err := GetAdminAccount(db, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin account not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasscodeHash), []byte(passcode)) != nil {
		return nil, fmt.Errorf("invalid passcode")
	}

	return account, nil
}

// LogAdminAction records an admin action in the audit log
func LogAdminAction(db *sqlx.DB, adminUsername, ip, route, action string, details map[string]interface{}, success bool) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("Failed to marshal admin audit details: %v", err)
		detailsJSON = []byte("{}")
	}
	if details == nil {
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO admin_audit (admin_username, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, adminUsername, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("Failed to log admin action: %v", err)
	}

	return err
}

// GetAdminAuditLogs retrieves recent admin audit logs with pagination
func GetAdminAuditLogs(db *sqlx.DB, limit, offset int) ([]models.AdminAudit, error) {
	var logs []models.AdminAudit
	err := db.Select(&logs, `
		SELECT id, admin_username, ip, route, action, details, success, created_at
		FROM admin_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return logs, err
}
