package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWantsJSON(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"xhr", map[string]string{"X-Requested-With": "XMLHttpRequest", "Content-Type": fiber.MIMEApplicationForm}, true},
		{"accept json", map[string]string{"Accept": "application/json"}, true},
		{"browser form", map[string]string{"Accept": "text/html,application/xhtml+xml", "Content-Type": fiber.MIMEApplicationForm}, false},
		{"multipart form", map[string]string{"Content-Type": fiber.MIMEMultipartForm + "; boundary=x"}, false},
		{"json body", map[string]string{"Content-Type": fiber.MIMEApplicationJSON}, true},
		{"bare api call", map[string]string{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var got bool
			app.Post("/", func(c *fiber.Ctx) error {
				got = WantsJSON(c)
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			_, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFailureRedirectsBrowsersToSameHostReferer(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return Failure(c, fiber.StatusNotFound, "Course not found!")
	})

	for referer, want := range map[string]string{
		"http://example.com/courses?page=2": "/courses?page=2",
		"https://evil.test/phish":           "/",
		"":                                  "/",
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, want, resp.Header.Get("Location"), referer)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Post("/set", func(c *fiber.Ctx) error {
		SetFlash(c, FlashSuccess, "Saved.")
		SetFlashMap(c, FlashErrors, map[string]string{"title": "required"})
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/get", func(c *fiber.Ctx) error {
		return c.JSON(ConsumeFlash(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/set", nil), -1)
	require.NoError(t, err)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	get := func() map[string]interface{} {
		req := httptest.NewRequest(http.MethodGet, "/get", nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		var out map[string]interface{}
		require.NoError(t, decodeJSON(resp, &out))
		return out
	}

	first := get()
	assert.Equal(t, "Saved.", first[FlashSuccess])
	assert.Equal(t, map[string]interface{}{"title": "required"}, first[FlashErrors])
	assert.Empty(t, get())
}
