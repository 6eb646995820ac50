package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/ingestion"
	"github.com/AmartyaKumar11/X-NOSIS/internal/middleware/validation"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

const wsAnalyzeTimeout = 30 * time.Second

type wsRequest struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	ContentType string `json:"content_type"`
	PatientID   string `json:"patient_id"`
}

// jsonConn is the part of *websocket.Conn the stream uses.
type jsonConn interface {
	WriteJSON(v interface{}) error
}

type messageConn interface {
	jsonConn
	ReadJSON(v interface{}) error
}

type WebSocketHandler struct {
	processor Analyzer
}

func NewWebSocketHandler(processor Analyzer) *WebSocketHandler {
	return &WebSocketHandler{
		processor: processor,
	}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	h.serve(c)
}

// serve handles messages until the peer disconnects or a write fails.
func (h *WebSocketHandler) serve(c messageConn) {
	for {
		var msg wsRequest
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Failed to read WebSocket message", zap.Error(err))
			}
			return
		}

		if msg.Type != "analyze" {
			if err := h.sendError(c, "Unsupported message type"); err != nil {
				logger.Debug("Failed to write WebSocket message", zap.Error(err))
				return
			}
			continue
		}

		if err := h.streamAnalysis(c, msg); err != nil {
			logger.Error("Failed to stream analysis", zap.Error(err))
			return
		}
	}
}

func (h *WebSocketHandler) streamAnalysis(c jsonConn, msg wsRequest) error {
	if msg.PatientID != "" && !validation.ValidPatientID(msg.PatientID) {
		return h.sendError(c, "Invalid patient_id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsAnalyzeTimeout)
	defer cancel()

	if err := h.send(c, "status", fiber.Map{"content": "Analyzing text..."}); err != nil {
		return err
	}

	contentType := ingestion.ContentTypePlain
	if msg.ContentType == ingestion.ContentTypeHTML {
		contentType = ingestion.ContentTypeHTML
	}

	out, err := h.processor.Analyze(ctx, ingestion.Input{
		Text:        msg.Text,
		ContentType: contentType,
		PatientID:   msg.PatientID,
		Channel:     "websocket",
	})
	if errors.Is(err, ingestion.ErrEmptyInput) {
		return h.sendError(c, "Text is required")
	}
	if err != nil {
		logger.Error("Failed to analyze text", zap.Error(err))
		return h.sendError(c, "Failed to analyze text")
	}

	for _, entity := range out.Result.MedicalEntities {
		if err := h.send(c, "entity", fiber.Map{"entity": entity}); err != nil {
			return err
		}
	}

	res := out.Result
	return h.send(c, "complete", fiber.Map{
		"analysis_id":            out.AnalysisID,
		"cached":                 out.Cached,
		"summary":                res.Summary,
		"entity_counts":          res.EntityCounts,
		"critical_findings":      res.CriticalFindings,
		"differential_diagnosis": res.DifferentialDiagnosis,
		"confidence_score":       res.ConfidenceScore,
		"processing_metadata":    res.ProcessingMetadata,
	})
}

func (h *WebSocketHandler) send(c jsonConn, msgType string, body fiber.Map) error {
	body["type"] = msgType
	return c.WriteJSON(body)
}

func (h *WebSocketHandler) sendError(c jsonConn, errorMsg string) error {
	return c.WriteJSON(fiber.Map{
		"type":  "error",
		"error": errorMsg,
	})
}
