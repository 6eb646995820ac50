package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

// HeadersMiddleware sets the browser hardening headers. API responses carry
// clinical text, so they are never cached.
func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	connectSrc := buildConnectSrc(cfg.AllowedOrigins)

	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "no-referrer")

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			c.Set(fiber.HeaderCacheControl, "no-store")
			c.Set("Pragma", "no-cache")
		}

		csp := "default-src 'none'; " +
			"connect-src 'self'" + connectSrc + "; " +
			"frame-ancestors 'none'; " +
			"base-uri 'none'; " +
			"form-action 'none'"
		c.Set("Content-Security-Policy", csp)

		return c.Next()
	}
}

func buildConnectSrc(origins []string) string {
	var b strings.Builder
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(origin)
	}
	return b.String()
}
