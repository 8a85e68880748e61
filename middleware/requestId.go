package middleware

import (
	"context"
	"time"

	"coursehub/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags every request with an id, bounds its user context by
// timeout and logs failed requests with their duration.
func RequestID(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = utils.UUIDv4()
		}
		c.Set(HeaderRequestID, id)
		c.Locals("requestId", id)

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
			logger.Log.Warn("request failed",
				"request_id", id,
				"method", c.Method(),
				"path", c.OriginalURL(),
				"status", c.Response().StatusCode(),
				"duration", time.Since(start).String(),
				"error", err,
			)
		}
		return err
	}
}
