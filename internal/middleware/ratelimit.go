package middleware

// Token bucket rate limiter backed by Redis.  The bucket state lives
// in a Redis hash and is updated atomically by a Lua script, so
// multiple instances of the server share one budget per key.

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/theatre-booking/internal/config"
)

// tokenBucketScript refills the bucket based on elapsed time, then
// attempts to take one token.  Returns {allowed, remaining}.
var tokenBucketScript = redis.NewScript(`
local key      = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill   = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now      = tonumber(ARGV[4])
local ttl      = tonumber(ARGV[5])

local state  = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts     = tonumber(state[2])

if tokens == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed > 0 then
  local refilled = math.floor(elapsed / interval) * refill
  if refilled > 0 then
    tokens = math.min(capacity, tokens + refilled)
    ts = ts + math.floor(elapsed / interval) * interval
  end
end

local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HMSET', key, 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', key, ttl)
return {allowed, tokens}
`)

// RateLimit enforces a per-caller request budget.  A nil Redis client
// or disabled config yields a pass-through.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || !cfg.Enabled {
			return next
		}
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
			defer cancel()

			res, err := tokenBucketScript.Run(ctx, rdb, []string{key},
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				time.Now().UnixMilli(),
				cfg.TTL.Milliseconds(),
			).Int64Slice()
			if err != nil {
				// fail open when Redis is unreachable
				return next(c)
			}

			allowed := len(res) > 0 && res[0] == 1
			remaining := int64(0)
			if len(res) > 1 {
				remaining = res[1]
			}
			if cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
				c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			}
			if !allowed {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

// rateKey composes the bucket key from the client IP and, when the
// caller is authenticated, the user id and route.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	key := cfg.Prefix + ":" + c.RealIP()
	if cfg.KeyStrategy == "ip_user_route" {
		if uid := currentUserID(c); uid != 0 {
			key += ":u" + strconv.FormatUint(uid, 10)
		}
		key += ":" + c.Request().Method + c.Path()
	}
	return key
}

// currentUserID pulls the authenticated user id out of the context.
// Returns 0 for anonymous callers.
func currentUserID(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return v
	case int64:
		return uint64(v)
	case int:
		return uint64(v)
	case float64:
		return uint64(v)
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0
		}
		return id
	default:
		return 0
	}
}
