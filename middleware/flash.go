package middleware

import (
	"encoding/json"
	"time"

	"coursehub/config"
	"coursehub/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashErrors  = "errors"
	FlashOld     = "old"

	flashPrefix = "flash:"
)

// Sessions backs flash messages. InitSessions swaps in a shared storage.
var Sessions = newSessionStore(nil, false)

func newSessionStore(storage fiber.Storage, secure bool) *session.Store {
	cfg := session.Config{
		Expiration:     2 * time.Hour,
		KeyLookup:      "cookie:coursehub_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   secure,
	}
	if storage != nil {
		cfg.Storage = storage
	}
	return session.New(cfg)
}

// InitSessions configures the session cookie and, when storage is non-nil,
// keeps session data there instead of process memory.
func InitSessions(storage fiber.Storage) {
	Sessions = newSessionStore(storage, config.Current().CookieSecure)
}

func setFlashValue(c *fiber.Ctx, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	sess, err := Sessions.Get(c)
	if err != nil {
		logger.Log.Warn("session unavailable, flash dropped", "key", key, "error", err)
		return
	}
	sess.Set(flashPrefix+key, string(raw))
	if err := sess.Save(); err != nil {
		logger.Log.Warn("session save failed", "error", err)
	}
}

// SetFlash stores a one-shot message for the next request.
func SetFlash(c *fiber.Ctx, key, message string) {
	setFlashValue(c, key, message)
}

// SetFlashMap stores field keyed data (errors, old input). Empty maps are skipped.
func SetFlashMap(c *fiber.Ctx, key string, values map[string]string) {
	if len(values) == 0 {
		return
	}
	setFlashValue(c, key, values)
}

// ConsumeFlash returns and clears every pending flash value.
func ConsumeFlash(c *fiber.Ctx) map[string]interface{} {
	out := map[string]interface{}{}
	sess, err := Sessions.Get(c)
	if err != nil {
		return out
	}
	for _, key := range []string{FlashSuccess, FlashError, FlashErrors, FlashOld} {
		raw, ok := sess.Get(flashPrefix + key).(string)
		if !ok {
			continue
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			out[key] = v
		}
		sess.Delete(flashPrefix + key)
	}
	if len(out) > 0 {
		_ = sess.Save()
	}
	return out
}
