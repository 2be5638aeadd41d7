// Package playguard gates allocation attempts per device: a long-lived
// device cookie identifies the browser, a played flag enforces one open
// per device, and admin-granted extra plays are consumed atomically.
// The allocation engine itself does no session bookkeeping.
package playguard

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tetlixi/backend/internal/config"
)

const (
	DeviceCookieName = "tet_device_id"
	PlayedCookieName = "tet_played_once"
)

// Guard tracks played-once state and extra-play allowances in Redis.
type Guard struct {
	rdb *redis.Client
	cfg *config.Config
}

func New(rdb *redis.Client, cfg *config.Config) *Guard {
	return &Guard{rdb: rdb, cfg: cfg}
}

// DeviceContext describes the calling device for one request.
type DeviceContext struct {
	DeviceID      string
	IsNewDevice   bool
	AlreadyPlayed bool
}

func playedKey(deviceID string) string { return fmt.Sprintf("played:%s", deviceID) }
func extraKey(deviceID string) string  { return fmt.Sprintf("extra_plays:%s", deviceID) }

// ResolveDevice reads or mints the device id and checks the played state
// from both the cookie and the Redis flag.
func (g *Guard) ResolveDevice(c *gin.Context) DeviceContext {
	deviceID, err := c.Cookie(DeviceCookieName)
	isNew := err != nil || deviceID == ""
	if isNew {
		deviceID = uuid.NewString()
	}

	played := false
	if v, err := c.Cookie(PlayedCookieName); err == nil && v == "1" {
		played = true
	}
	if !played && !isNew {
		if n, err := g.rdb.Exists(context.Background(), playedKey(deviceID)).Result(); err == nil && n > 0 {
			played = true
		}
	}

	return DeviceContext{DeviceID: deviceID, IsNewDevice: isNew, AlreadyPlayed: played}
}

// ApplyDeviceCookie sets the long-lived device identity cookie.
func (g *Guard) ApplyDeviceCookie(c *gin.Context, deviceID string) {
	maxAge := g.cfg.DeviceCookieMaxAgeDays * 24 * 60 * 60
	c.SetCookie(DeviceCookieName, deviceID, maxAge, "/", "", g.cfg.Environment == "production", true)
}

// MarkPlayed records the play in both the cookie and Redis.
func (g *Guard) MarkPlayed(ctx context.Context, c *gin.Context, deviceID string) {
	maxAge := g.cfg.PlayedCookieMaxAgeDays * 24 * 60 * 60
	c.SetCookie(PlayedCookieName, "1", maxAge, "/", "", g.cfg.Environment == "production", true)
	g.rdb.Set(ctx, playedKey(deviceID), "1", time.Duration(maxAge)*time.Second)
}

// ConsumeExtraPlay atomically spends one admin-granted extra play.
func (g *Guard) ConsumeExtraPlay(ctx context.Context, deviceID string) (bool, error) {
	remaining, err := g.rdb.Decr(ctx, extraKey(deviceID)).Result()
	if err != nil {
		return false, err
	}
	if remaining < 0 {
		// Nothing to spend; undo the decrement.
		g.rdb.Incr(ctx, extraKey(deviceID))
		return false, nil
	}
	return true, nil
}

// RefundExtraPlay returns a consumed play after a failed allocation.
func (g *Guard) RefundExtraPlay(ctx context.Context, deviceID string) error {
	return g.rdb.Incr(ctx, extraKey(deviceID)).Err()
}

// GrantExtraPlays adds admin-granted plays and returns the new balance.
func (g *Guard) GrantExtraPlays(ctx context.Context, deviceID string, n int64) (int64, error) {
	return g.rdb.IncrBy(ctx, extraKey(deviceID), n).Result()
}
