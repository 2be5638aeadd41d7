package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/tetlixi/backend/internal/banks"
)

// ListBanks returns the public bank directory for the claim form.
func ListBanks(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := banks.List(c.Request.Context(), db)
		if err != nil {
			log.Printf("[BANKS] Failed to list banks: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banks"})
			return
		}

		out := make([]gin.H, 0, len(list))
		for _, b := range list {
			out = append(out, gin.H{
				"bin":             b.Bin,
				"name":            b.Name,
				"short_name":      b.ShortName,
				"code":            nullableString(b.Code),
				"logo_url":        nullableString(b.LogoURL),
				"local_logo_path": nullableString(b.LocalLogoPath),
			})
		}

		c.JSON(http.StatusOK, gin.H{"banks": out})
	}
}
