package router

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func HttpRealIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		xForwardedFor := c.Get(http.CanonicalHeaderKey("X-Forwarded-For"))
		if xForwardedFor != "" {
			first, _, _ := strings.Cut(xForwardedFor, ",")
			c.Locals("remote_ip", strings.TrimSpace(first))
		} else if xRealIP := c.Get(http.CanonicalHeaderKey("X-Real-IP")); xRealIP != "" {
			c.Locals("remote_ip", strings.TrimSpace(xRealIP))
		}
		return c.Next()
	}
}

// HttpRequestID reuses an incoming X-Request-ID or assigns a new one.
func HttpRequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("request_id", requestID)
		c.Set(fiber.HeaderXRequestID, requestID)
		return c.Next()
	}
}
