package handler

import (
	"errors"
	"net/http"
	"site-functions/internal/capture/processor"
	"site-functions/internal/observability"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	processor processor.CaptureProcessor
	logger    *observability.Logger
}

func New(processor processor.CaptureProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

type CaptureRequest struct {
	Email          string                    `json:"email"`
	SessionContext *processor.SessionContext `json:"sessionContext"`
}

type CaptureResponse struct {
	Success bool              `json:"success"`
	Results processor.Results `json:"results"`
}

// HandleCapture handles ANY /functions/therapy-capture
func (h *Handler) HandleCapture(c *gin.Context) {
	ctx := c.Request.Context()

	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")

	switch c.Request.Method {
	case http.MethodOptions:
		c.AbortWithStatus(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "failed to parse capture request", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	results, err := h.processor.Capture(ctx, processor.Capture{Email: req.Email, Session: req.SessionContext})
	if err != nil {
		if errors.Is(err, processor.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email required"})
			return
		}
		h.logger.Error(ctx, "capture failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, CaptureResponse{Success: true, Results: results})
}
