package handler

import (
	"net/http"
	"site-functions/internal/observability"
	"site-functions/internal/signatures/processor"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	processor processor.SignatureProcessor
	logger    *observability.Logger
}

func New(processor processor.SignatureProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

type SignResponse struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message"`
	SignatureRecord processor.Record `json:"signatureRecord"`
}

// HandleSign handles ANY /functions/sign-contract
func (h *Handler) HandleSign(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	var req processor.Signature
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "failed to parse signature", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process signature"})
		return
	}

	record, _ := h.processor.Sign(ctx, req, signerIP(c))

	c.JSON(http.StatusOK, SignResponse{
		Success:         true,
		Message:         "Agreement signed successfully",
		SignatureRecord: record,
	})
}

// signerIP keeps the whole forwarding chain for the audit trail
func signerIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}
