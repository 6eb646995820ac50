package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LocalsKey holds the validated *AnalyzeRequest for downstream handlers.
const LocalsKey = "analyze_request"

var patientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

type Config struct {
	MaxTextLength       int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

type AnalyzeRequest struct {
	Text      string `json:"text"`
	PatientID string `json:"patient_id,omitempty"`
}

// Middleware checks request content types and validates analyze bodies.
// Clinical text is free-form, so content is never pattern-filtered; only
// NUL bytes are stripped.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = 50000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{fiber.MIMEApplicationJSON, fiber.MIMEMultipartForm}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get(fiber.HeaderContentType)
			if contentType != "" && !allowedType(contentType, cfg.AllowedContentTypes) {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if c.Method() == fiber.MethodPost && c.Path() == "/api/v1/analyze" {
			var req AnalyzeRequest
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			req.Text = sanitizeString(req.Text)
			if strings.TrimSpace(req.Text) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Text is required and must be a non-empty string",
				})
			}

			if !utf8.ValidString(req.Text) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Text must be valid UTF-8",
				})
			}

			// Over-long text is truncated by the processor; only reject
			// bodies far beyond what would be analyzed.
			if utf8.RuneCountInString(req.Text) > 4*cfg.MaxTextLength {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "Text exceeds maximum length",
				})
			}

			req.PatientID = strings.TrimSpace(req.PatientID)
			if req.PatientID != "" && !patientIDPattern.MatchString(req.PatientID) {
				cfg.Logger.Warn("Rejected malformed patient id", zap.String("ip", c.IP()))
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid patient_id",
				})
			}

			c.Locals(LocalsKey, &req)
		}

		return c.Next()
	}
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func ValidPatientID(id string) bool {
	return patientIDPattern.MatchString(id)
}

func sanitizeString(input string) string {
	return strings.ReplaceAll(input, "\x00", "")
}
