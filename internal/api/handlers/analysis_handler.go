package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/ingestion"
	"github.com/AmartyaKumar11/X-NOSIS/internal/middleware/validation"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/models"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/sqlite"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultUploadLimit  = 5 * 1024 * 1024
)

type Analyzer interface {
	Analyze(ctx context.Context, in ingestion.Input) (*ingestion.Output, error)
}

type AnalysisReader interface {
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, patientID string, limit int) ([]models.AnalysisRecord, error)
}

type AnalysisHandler struct {
	processor   Analyzer
	store       AnalysisReader
	uploadLimit int64
}

// NewAnalysisHandler returns the analysis routes. store may be nil when
// results are not persisted; history routes then answer 503.
func NewAnalysisHandler(processor Analyzer, store AnalysisReader, uploadLimit int64) *AnalysisHandler {
	if uploadLimit <= 0 {
		uploadLimit = defaultUploadLimit
	}
	return &AnalysisHandler{
		processor:   processor,
		store:       store,
		uploadLimit: uploadLimit,
	}
}

func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	req, ok := c.Locals(validation.LocalsKey).(*validation.AnalyzeRequest)
	if !ok {
		req = &validation.AnalyzeRequest{}
		if err := c.BodyParser(req); err != nil {
			logger.Error("Failed to parse request body", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	return h.run(c, ingestion.Input{
		Text:        req.Text,
		ContentType: ingestion.ContentTypePlain,
		PatientID:   req.PatientID,
		Channel:     "text",
	})
}

func (h *AnalysisHandler) AnalyzeFile(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Multipart field 'file' is required",
		})
	}

	declared := fh.Header.Get(fiber.HeaderContentType)
	if !ingestion.SupportedContentType(declared) {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "Only text/plain and text/html uploads are supported",
		})
	}
	if fh.Size > h.uploadLimit {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File exceeds maximum size",
		})
	}

	patientID := c.FormValue("patient_id")
	if patientID != "" && !validation.ValidPatientID(patientID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid patient_id",
		})
	}

	f, err := fh.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.uploadLimit))
	if err != nil {
		logger.Error("Failed to read uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	return h.run(c, ingestion.Input{
		Text:        string(data),
		ContentType: ingestion.DetectContentType(declared, fh.Filename),
		PatientID:   patientID,
		Channel:     "file",
	})
}

func (h *AnalysisHandler) run(c *fiber.Ctx, in ingestion.Input) error {
	out, err := h.processor.Analyze(c.UserContext(), in)
	if errors.Is(err, ingestion.ErrEmptyInput) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is required",
		})
	}
	if err != nil {
		logger.Error("Failed to analyze text", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze text",
		})
	}

	return c.JSON(out)
}

func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	if h.store == nil {
		return storeUnavailable(c)
	}

	record, err := h.store.GetAnalysis(c.UserContext(), c.Params("id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis not found",
		})
	}
	if err != nil {
		logger.Error("Failed to load analysis", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis",
		})
	}

	return c.JSON(fiber.Map{
		"analysis_id": record.ID,
		"patient_id":  record.PatientID,
		"created_at":  record.CreatedAt.UTC().Format(time.RFC3339),
		"results":     json.RawMessage(record.Result),
	})
}

func (h *AnalysisHandler) ListAnalyses(c *fiber.Ctx) error {
	if h.store == nil {
		return storeUnavailable(c)
	}

	patientID := c.Query("patient_id")
	if patientID != "" && !validation.ValidPatientID(patientID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid patient_id",
		})
	}

	limit, err := parseLimit(c.Query("limit"), defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	records, err := h.store.ListAnalyses(c.UserContext(), patientID, limit)
	if err != nil {
		logger.Error("Failed to list analyses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list analyses",
		})
	}

	if records == nil {
		records = []models.AnalysisRecord{}
	}
	return c.JSON(fiber.Map{
		"analyses": records,
		"count":    len(records),
	})
}

func storeUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "Analysis history is not enabled",
	})
}

func parseLimit(raw string, def, ceiling int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid limit")
	}
	if n > ceiling {
		n = ceiling
	}
	return n, nil
}
