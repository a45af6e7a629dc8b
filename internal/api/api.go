package api

import (
	"net/http"
	captureHandler "site-functions/internal/capture/handler"
	llmHandler "site-functions/internal/llmproxy/handler"
	newsletterHandler "site-functions/internal/newsletter/handler"
	"site-functions/internal/observability"
	"site-functions/internal/ratelimit"
	signatureHandler "site-functions/internal/signatures/handler"
	unsubscribeHandler "site-functions/internal/unsubscribe/handler"

	"github.com/gin-gonic/gin"
)

type API struct {
	router             *gin.RouterGroup
	newsletterHandler  newsletterHandler.Handler
	llmProxyHandler    llmHandler.Handler
	llmLimiter         *ratelimit.Service
	captureHandler     captureHandler.Handler
	signatureHandler   signatureHandler.Handler
	unsubscribeHandler unsubscribeHandler.Handler
}

func New(
	router *gin.RouterGroup,
	newsletterHandler newsletterHandler.Handler,
	llmProxyHandler llmHandler.Handler,
	llmLimiter *ratelimit.Service,
	captureHandler captureHandler.Handler,
	signatureHandler signatureHandler.Handler,
	unsubscribeHandler unsubscribeHandler.Handler,
) API {
	return API{
		router:             router,
		newsletterHandler:  newsletterHandler,
		llmProxyHandler:    llmProxyHandler,
		llmLimiter:         llmLimiter,
		captureHandler:     captureHandler,
		signatureHandler:   signatureHandler,
		unsubscribeHandler: unsubscribeHandler,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.router.GET("/metrics", observability.MetricsHandler())

	functionsGroup := a.router.Group("/functions")
	{
		functionsGroup.POST("/newsletter-send", a.newsletterHandler.RequireSendToken(), a.newsletterHandler.HandleSend)
		functionsGroup.GET("/newsletter-preview/:id", a.newsletterHandler.HandlePreview)
		functionsGroup.GET("/unsubscribe", a.unsubscribeHandler.HandleUnsubscribe)

		// These answer their own preflight and 405s
		functionsGroup.Any("/llm-proxy", a.llmLimiter.Middleware(), a.llmProxyHandler.HandleComplete)
		functionsGroup.Any("/therapy-capture", a.captureHandler.HandleCapture)
		functionsGroup.Any("/sign-contract", a.signatureHandler.HandleSign)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
