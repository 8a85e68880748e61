package main

import (
	"net/http/httptest"
	"strings"
	"testing"

	"coursehub/config"
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T) string {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		middleware.SetFlash(c, middleware.FlashSuccess, "saved")
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	for _, raw := range resp.Header.Values(fiber.HeaderSetCookie) {
		if strings.HasPrefix(raw, "coursehub_session=") {
			return strings.ToLower(raw)
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

func TestInitSharedStorageFallsBackWithSecureCookies(t *testing.T) {
	prevCfg, prevSessions := config.AppConfig, middleware.Sessions
	t.Cleanup(func() {
		config.AppConfig = prevCfg
		middleware.Sessions = prevSessions
	})

	cfg := config.FromEnv()
	cfg.CookieSecure = true
	cfg.RedisAddr = "127.0.0.1:1"
	config.AppConfig = cfg

	client := initSharedStorage(cfg)
	assert.Nil(t, client)
	assert.Contains(t, sessionCookie(t), "secure")
}

func TestInitSharedStorageWithoutRedis(t *testing.T) {
	prevCfg, prevSessions := config.AppConfig, middleware.Sessions
	t.Cleanup(func() {
		config.AppConfig = prevCfg
		middleware.Sessions = prevSessions
	})

	cfg := config.FromEnv()
	cfg.CookieSecure = true
	cfg.RedisAddr = ""
	config.AppConfig = cfg

	assert.Nil(t, initSharedStorage(cfg))
	assert.Contains(t, sessionCookie(t), "secure")
}
