package handler

import (
	"errors"
	"net/http"
	"site-functions/internal/apierrors"
	"site-functions/internal/llmproxy/processor"
	"site-functions/internal/observability"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	processor processor.LLMProxyProcessor
	logger    *observability.Logger
}

func New(processor processor.LLMProxyProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

type CompletionRequest struct {
	Prompt string `json:"prompt"`
}

type CompletionResponse struct {
	Response string `json:"response"`
}

// HandleComplete handles ANY /functions/llm-proxy
func (h *Handler) HandleComplete(c *gin.Context) {
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

	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "failed to parse completion request", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	text, err := h.processor.Complete(ctx, req.Prompt)
	if err != nil {
		var apiErr *apierrors.Error
		switch {
		case errors.Is(err, processor.ErrPromptRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		case errors.Is(err, apierrors.ErrConfiguration):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "API not configured"})
		case errors.As(err, &apiErr) && apiErr.Code == apierrors.CodeUpstreamRejected:
			c.JSON(apiErr.StatusCode, gin.H{"error": "API request failed"})
		default:
			h.logger.Error(ctx, "completion failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, CompletionResponse{Response: text})
}
