// Package banks syncs the VietQR bank directory (names, BINs, logos) used
// by the claim form. The payout codec itself only ever needs the raw BIN.
package banks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/config"
	"github.com/tetlixi/backend/internal/game"
	"github.com/tetlixi/backend/internal/models"
)

// Client fetches the public bank directory and mirrors logos locally.
type Client struct {
	directoryURL string
	logoDir      string
	logoTTL      time.Duration
	httpClient   *http.Client
}

// NewClient creates a bank-directory client from config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		directoryURL: cfg.BankDirectoryURL,
		logoDir:      cfg.BankLogoDir,
		logoTTL:      time.Duration(cfg.BankLogoTTLDays) * 24 * time.Hour,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.BankSyncTimeoutMS) * time.Millisecond},
	}
}

// SyncResult summarizes one directory sync run.
type SyncResult struct {
	Total           int       `json:"total"`
	LogosDownloaded int       `json:"logos_downloaded"`
	LastSyncedAt    time.Time `json:"last_synced_at"`
}

type directoryBank struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Code      string `json:"code"`
	Bin       string `json:"bin"`
	SwiftCode string `json:"swift_code"`
	Logo      string `json:"logo"`
}

type directoryResponse struct {
	Data []directoryBank `json:"data"`
}

// Sync fetches the directory and upserts every bank row. Logo downloads
// are best effort and skipped while the previous sync is still fresh.
func (c *Client) Sync(ctx context.Context, db *sqlx.DB) (*SyncResult, error) {
	cfg, err := game.GetOrCreateConfig(ctx, db)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	isFresh := cfg.BankLastSyncedAt.Valid && now.Sub(cfg.BankLastSyncedAt.Time) < c.logoTTL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.directoryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bank directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bank directory returned status %d", resp.StatusCode)
	}

	var payload directoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode bank directory: %w", err)
	}

	logosDownloaded := 0

	for _, bank := range payload.Data {
		bin := strings.TrimSpace(bank.Bin)
		shortName := strings.TrimSpace(bank.ShortName)
		name := strings.TrimSpace(bank.Name)
		if bin == "" || shortName == "" || name == "" {
			continue
		}

		var localLogoPath string
		db.GetContext(ctx, &localLogoPath, `SELECT COALESCE(local_logo_path, '') FROM banks WHERE bin=$1`, bin)

		logoURL := strings.TrimSpace(bank.Logo)
		if logoURL != "" {
			skip := isFresh && localLogoPath != "" && fileExists(filepath.Join(c.logoDir, filepath.Base(localLogoPath)))
			if !skip {
				if downloaded, err := c.downloadLogo(ctx, bin, logoURL); err != nil {
					log.Printf("[BANKS] Logo download failed for %s: %v", bin, err)
				} else {
					localLogoPath = downloaded
					logosDownloaded++
				}
			}
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO banks (bin, name, short_name, code, swift_code, logo_url, local_logo_path, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NOW(), NOW())
			ON CONFLICT (bin) DO UPDATE SET
				name = EXCLUDED.name,
				short_name = EXCLUDED.short_name,
				code = EXCLUDED.code,
				swift_code = EXCLUDED.swift_code,
				logo_url = EXCLUDED.logo_url,
				local_logo_path = COALESCE(EXCLUDED.local_logo_path, banks.local_logo_path),
				updated_at = NOW()
		`, bin, name, shortName, strings.TrimSpace(bank.Code), strings.TrimSpace(bank.SwiftCode), logoURL, localLogoPath)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert bank %s: %w", bin, err)
		}
	}

	if err := game.SetBankLastSyncedAt(ctx, db, now); err != nil {
		return nil, err
	}

	log.Printf("[BANKS] Directory synced: %d banks, %d logos downloaded", len(payload.Data), logosDownloaded)

	return &SyncResult{Total: len(payload.Data), LogosDownloaded: logosDownloaded, LastSyncedAt: now}, nil
}

// downloadLogo mirrors a bank logo into the local public directory and
// returns its serving path.
func (c *Client) downloadLogo(ctx context.Context, bin, logoURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logo fetch returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(c.logoDir, 0o755); err != nil {
		return "", err
	}

	filename := bin + logoExt(logoURL)
	absolute := filepath.Join(c.logoDir, filename)

	out, err := os.Create(absolute)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", err
	}

	return "/banks/" + filename, nil
}

func logoExt(logoURL string) string {
	u, err := url.Parse(logoURL)
	if err != nil {
		return ".png"
	}
	switch {
	case strings.HasSuffix(strings.ToLower(u.Path), ".jpg"), strings.HasSuffix(strings.ToLower(u.Path), ".jpeg"):
		return ".jpg"
	case strings.HasSuffix(strings.ToLower(u.Path), ".webp"):
		return ".webp"
	case strings.HasSuffix(strings.ToLower(u.Path), ".svg"):
		return ".svg"
	}
	return ".png"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// List returns the directory ordered by short name, then BIN.
func List(ctx context.Context, db *sqlx.DB) ([]models.Bank, error) {
	var banks []models.Bank
	err := db.SelectContext(ctx, &banks, `
		SELECT bin, name, short_name, code, swift_code, logo_url, local_logo_path, created_at, updated_at
		FROM banks
		ORDER BY short_name ASC, bin ASC
	`)
	return banks, err
}
