package app

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/server/http/middleware"
	mongostorage "github.com/omnicart/fulfillment/internal/storage/mongo"
	"github.com/omnicart/fulfillment/internal/storage/redisdedup"
)

// PaymentModule wires the payment service HTTP surface and lifecycle. The
// service is driven by the order topic; HTTP only exposes readiness.
var PaymentModule = fx.Options(
	fx.Provide(
		newPaymentRouter,
		newHTTPServer,
	),
	fx.Invoke(registerServerLifecycle),
)

type paymentRouterParams struct {
	fx.In

	Storage *mongostorage.Storage
	Dedup   *redisdedup.Store
	Logger  *slog.Logger
}

func newPaymentRouter(p paymentRouterParams) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))

	engine.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := p.Storage.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		if err := p.Dedup.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return engine
}
