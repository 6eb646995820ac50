package security

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(HeadersMiddleware(HeadersConfig{AllowedOrigins: []string{"https://app.example.com", "*"}}))
	app.Get("/api/v1/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("m") })

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Contains(t, resp.Header.Get("Strict-Transport-Security"), "max-age")
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "connect-src 'self' https://app.example.com;")

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Cache-Control"))
}

func TestHeadersMiddlewareDevelopmentSkipsHSTS(t *testing.T) {
	app := fiber.New()
	app.Use(HeadersMiddleware(HeadersConfig{IsDevelopment: true}))
	app.Get("/", func(c *fiber.Ctx) error { return nil })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
}
