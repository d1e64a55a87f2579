package middleware

// Response cache for public catalogue reads.  Successful responses to
// configured methods are stored in Redis under a key derived from the
// route and query string; later identical requests are served from the
// cache until the TTL expires.  Redis being down disables the cache
// rather than failing requests.

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/theatre-booking/internal/config"
)

// cachedResponse is the envelope stored in Redis.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter duplicates the response body into a buffer while it
// streams to the client.
type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// ResponseCache returns a middleware that serves eligible requests
// from Redis.  A nil client or disabled config yields a pass-through.
func ResponseCache(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || !cfg.Enabled {
			return next
		}
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}

			key := cacheKey(cfg, c)
			ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
			defer cancel()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var stored cachedResponse
				if json.Unmarshal(raw, &stored) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(stored.Status, stored.ContentType, stored.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() <= cfg.MaxBodyBytes {
				stored := cachedResponse{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        cw.buf.Bytes(),
				}
				if raw, err := json.Marshal(stored); err == nil {
					setCtx, setCancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
					defer setCancel()
					_ = rdb.Set(setCtx, key, raw, cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}

// cacheKey hashes the request path (and, depending on strategy, the
// query string) into a fixed-length Redis key.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	req := c.Request()
	src := req.Method + "|" + req.URL.Path
	if cfg.KeyStrategy == "route_query" {
		src += "?" + req.URL.RawQuery
	}
	sum := sha256.Sum256([]byte(src))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}
