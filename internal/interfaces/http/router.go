// Package http wires the voucher handlers into a gin engine.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	voucherHandlers "github.com/lnpos/voucherd/internal/interfaces/http/handlers/voucher"
	"github.com/lnpos/voucherd/internal/interfaces/http/middleware"
	"github.com/lnpos/voucherd/internal/shared/logger"
	"github.com/lnpos/voucherd/internal/shared/utils"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether the durable store is reachable.
type HealthCheck func(ctx context.Context) error

// Router represents the HTTP router configuration
type Router struct {
	engine         *gin.Engine
	voucherHandler *voucherHandlers.VoucherHandler
	healthCheck    HealthCheck
	allowedOrigins []string
	logger         logger.Interface
}

func NewRouter(
	voucherHandler *voucherHandlers.VoucherHandler,
	healthCheck HealthCheck,
	allowedOrigins []string,
	log logger.Interface,
) *Router {
	return &Router{
		engine:         gin.New(),
		voucherHandler: voucherHandler,
		healthCheck:    healthCheck,
		allowedOrigins: allowedOrigins,
		logger:         log,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	if len(r.allowedOrigins) > 0 {
		r.engine.Use(middleware.CORS(r.allowedOrigins))
	}

	r.engine.GET("/health", r.health)

	api := r.engine.Group("/api/v1")
	api.Use(middleware.NoStore())

	vouchers := api.Group("/vouchers")
	{
		vouchers.POST("", r.voucherHandler.CreateVoucher)
		vouchers.GET("", r.voucherHandler.ListVouchers)
		vouchers.GET("/stats", r.voucherHandler.GetStats)
		vouchers.GET("/:id", r.voucherHandler.GetVoucher)
		vouchers.GET("/:id/status", r.voucherHandler.GetVoucherStatus)
		vouchers.GET("/:id/issuer-ref", r.voucherHandler.RevealIssuerRef)
		vouchers.POST("/:id/claim", r.voucherHandler.ClaimVoucher)
		vouchers.POST("/:id/unclaim", r.voucherHandler.UnclaimVoucher)
		vouchers.POST("/:id/cancel", r.voucherHandler.CancelVoucher)
	}

	api.GET("/wallets/:wallet_id/unclaimed-count", r.voucherHandler.GetUnclaimedCount)
	api.GET("/expiry-presets", r.voucherHandler.ListExpiryPresets)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) health(c *gin.Context) {
	if r.healthCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := r.healthCheck(ctx); err != nil {
			r.logger.Warnw("health check failed", "error", err)
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"status": "ok"})
}
