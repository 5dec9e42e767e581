package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/handler/api"
	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, cartHandler *api.CartHandler, checkoutHandler *api.CheckoutHandler, webhookHandler *api.WebhookHandler, identity *middleware.IdentityMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cartHandler, checkoutHandler, webhookHandler, identity)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cartHandler *api.CartHandler, checkoutHandler *api.CheckoutHandler, webhookHandler *api.WebhookHandler, identity *middleware.IdentityMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Webhooks authenticate by signature, not by actor identity.
		apiGroup.POST("/webhooks/payments/:tenantId", webhookHandler.HandlePaymentEvent)

		storefront := apiGroup.Group("")
		storefront.Use(identity.Identify())
		{
			cart := storefront.Group("/cart")
			addRoutes(cart, []route{
				{Method: http.MethodGet, Path: "", Handler: cartHandler.GetCart},
				{Method: http.MethodDelete, Path: "", Handler: cartHandler.ClearCart},
				{Method: http.MethodPost, Path: "/items", Handler: cartHandler.AddItem},
				{Method: http.MethodPatch, Path: "/items/:productId", Handler: cartHandler.UpdateItem},
				{Method: http.MethodDelete, Path: "/items/:productId", Handler: cartHandler.RemoveItem},
				{Method: http.MethodPost, Path: "/discount", Handler: cartHandler.ApplyDiscount},
				{Method: http.MethodDelete, Path: "/discount", Handler: cartHandler.RemoveDiscount},
				{Method: http.MethodPost, Path: "/merge", Handler: cartHandler.MergeCart},
			})

			addRoutes(storefront, []route{
				{Method: http.MethodPost, Path: "/checkout", Handler: checkoutHandler.InitiateCheckout},
				{Method: http.MethodGet, Path: "/orders", Handler: checkoutHandler.ListOrders},
				{Method: http.MethodGet, Path: "/orders/:id", Handler: checkoutHandler.GetOrder},
				{Method: http.MethodPost, Path: "/orders/:id/cancel", Handler: checkoutHandler.CancelCheckout},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
