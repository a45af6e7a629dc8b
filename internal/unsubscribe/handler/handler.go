package handler

import (
	"errors"
	"net/http"
	"site-functions/internal/apierrors"
	"site-functions/internal/observability"
	"site-functions/internal/unsubscribe/processor"

	"github.com/gin-gonic/gin"
)

const (
	successPath = "/newsletter/unsubscribed.html"
	errorPath   = "/newsletter/error.html?type="
)

type Handler struct {
	processor processor.UnsubscribeProcessor
	logger    *observability.Logger
}

func New(processor processor.UnsubscribeProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// HandleUnsubscribe handles GET /functions/unsubscribe?email=<base64>&token=<hex>
func (h *Handler) HandleUnsubscribe(c *gin.Context) {
	ctx := c.Request.Context()

	ip := c.GetHeader("X-Forwarded-For")
	if ip == "" {
		ip = c.GetHeader("Client-IP")
	}

	_, err := h.processor.Unsubscribe(ctx, c.Query("email"), c.Query("token"), ip)
	if err != nil {
		c.Redirect(http.StatusFound, errorPath+errorType(err))
		return
	}

	c.Redirect(http.StatusFound, successPath)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, processor.ErrMissingParameters):
		return "missing"
	case errors.Is(err, apierrors.ErrConfiguration):
		return "config"
	default:
		return "invalid"
	}
}
