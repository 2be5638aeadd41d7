package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/tetlixi/backend/internal/config"
)

// issueClaimToken mints the bearer token returned with a fresh claim.
// Claim mutation endpoints require it; possession of the claim URL alone
// is not authorization.
func issueClaimToken(cfg *config.Config, claimID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   claimID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ClaimTokenTTLHours) * time.Hour)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func parseClaimToken(cfg *config.Config, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid claim token")
	}
	return claims.Subject, nil
}

// requireClaimToken aborts with 401 unless the request carries a valid
// bearer token for the given claim. Returns true when authorized.
func requireClaimToken(c *gin.Context, cfg *config.Config, claimID string) bool {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenString == "" || tokenString == header {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Claim token required"})
		c.Abort()
		return false
	}

	subject, err := parseClaimToken(cfg, tokenString)
	if err != nil || subject != claimID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid claim token"})
		c.Abort()
		return false
	}

	return true
}
