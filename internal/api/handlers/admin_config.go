package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/admin"
	"github.com/tetlixi/backend/internal/game"
)

// GetGameConfig returns the current (lazily created) game configuration
func GetGameConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := game.GetOrCreateConfig(c.Request.Context(), db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch game config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"config": cfg})
	}
}

// UpdateGameConfig applies a proposed config update through the
// normalization contract. Loosely-typed values are accepted; anything
// unparseable falls back to the current value.
func UpdateGameConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")

		var input game.ConfigInput
		if err := c.BindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
			return
		}

		updated, err := game.UpdateConfig(c.Request.Context(), db, input)
		if err != nil {
			log.Printf("[ADMIN] Failed to update game config: %v", err)
			admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/config", "update_config", map[string]interface{}{"input": input}, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update config"})
			return
		}

		admin.LogAdminAction(db, adminUsername, c.ClientIP(), "/api/v1/admin/config", "update_config", map[string]interface{}{"input": input}, true)
		c.JSON(http.StatusOK, gin.H{"config": updated})
	}
}
