package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"site-functions/internal/apierrors"
	"site-functions/internal/newsletter/processor"
	"site-functions/internal/observability"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	processor processor.NewsletterProcessor
	logger    *observability.Logger
	sendToken string
	now       func() time.Time
}

func New(processor processor.NewsletterProcessor, logger *observability.Logger, sendToken string) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
		sendToken: sendToken,
		now:       time.Now,
	}
}

// RequireSendToken admits a request only if it carries "Authorization: Bearer <token>"
// matching the configured send token. With no token configured nobody is admitted.
func (h *Handler) RequireSendToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.sendToken == "" {
			h.logger.Warn(c.Request.Context(), "newsletter send refused: no send token configured")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Newsletter sending is disabled"})
			return
		}

		presented, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(h.sendToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// HandleSend handles POST /functions/newsletter-send
func (h *Handler) HandleSend(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.processor.Run(ctx, h.now())
	if err != nil {
		// missing content is the one failure answered in plain text
		if errors.Is(err, processor.ErrContentMissing) {
			c.String(http.StatusBadRequest, "Newsletter missing content")
			return
		}
		h.logger.Error(ctx, "newsletter send failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apierrors.MapError(err).Message})
		return
	}

	switch result.State {
	case processor.StateNoOp:
		c.String(http.StatusOK, "No newsletters to send")
	case processor.StateAlreadyClaimed:
		c.String(http.StatusOK, "Newsletter already being sent")
	default:
		c.JSON(http.StatusOK, result.Report)
	}
}

type PreviewRequest struct {
	ID string `uri:"id" binding:"required,max=128"`
}

// HandlePreview handles GET /functions/newsletter-preview/:id
func (h *Handler) HandlePreview(c *gin.Context) {
	ctx := c.Request.Context()

	var req PreviewRequest
	if err := c.ShouldBindUri(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	html, err := h.processor.Preview(ctx, req.ID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
