package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/tetlixi/backend/internal/admin"
	"github.com/tetlixi/backend/internal/config"
)

const adminCookieName = "admin_session"

// AdminLogin validates credentials and creates a Redis-backed session cookie
func AdminLogin(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Passcode string `json:"passcode" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		username := strings.TrimSpace(req.Username)

		account, err := admin.ValidateAdminCredentials(db, username, req.Passcode)
		if err != nil {
			log.Printf("[ADMIN] Login failed for username %s: %v", username, err)
			admin.LogAdminAction(db, username, c.ClientIP(), "/api/v1/admin/login", "login", nil, false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		tokenBytes := make([]byte, 32)
		if _, err := rand.Read(tokenBytes); err != nil {
			log.Printf("[ADMIN] Failed to generate session token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		sessionToken := hex.EncodeToString(tokenBytes)

		sessionTTL := time.Duration(cfg.SessionTimeoutMin) * time.Minute
		sessionKey := fmt.Sprintf("admin_session:%s", sessionToken)
		if err := rdb.Set(context.Background(), sessionKey, account.Username, sessionTTL).Err(); err != nil {
			log.Printf("[ADMIN] Failed to store session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		c.SetCookie(adminCookieName, sessionToken, int(sessionTTL.Seconds()), "/api/v1/admin", "", cfg.Environment == "production", true)

		admin.LogAdminAction(db, username, c.ClientIP(), "/api/v1/admin/login", "login", nil, true)
		c.JSON(http.StatusOK, gin.H{"username": account.Username, "display_name": account.DisplayName})
	}
}

// AdminLogout destroys the session
func AdminLogout(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(adminCookieName); err == nil && token != "" {
			rdb.Del(context.Background(), fmt.Sprintf("admin_session:%s", token))
		}
		c.SetCookie(adminCookieName, "", -1, "/api/v1/admin", "", false, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// AdminMe returns the current admin session info
func AdminMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("admin_username")})
	}
}

// AdminSessionMiddleware validates the admin session cookie against Redis
func AdminSessionMiddleware(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		username, err := rdb.Get(context.Background(), fmt.Sprintf("admin_session:%s", token)).Result()
		if err != nil || username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			c.Abort()
			return
		}

		c.Set("admin_username", username)
		c.Next()
	}
}

// AdminAuditLogs returns recent audit entries with pagination
func AdminAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit < 1 || limit > 200 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"logs": logs})
	}
}
