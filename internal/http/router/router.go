package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/talent-backend/internal/config"
	"github.com/ignatzorin/talent-backend/internal/http/handlers"
	"github.com/ignatzorin/talent-backend/internal/http/middleware"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	jobHandler *handlers.JobHandler,
	proposalHandler *handlers.ProposalHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	disputeHandler *handlers.DisputeHandler,
	reviewHandler *handlers.ReviewHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	api.GET("/ws", wsHandler.Handle)

	// Публичные витрины
	api.GET("/jobs/job/:id", middleware.UUIDValidator("id"), jobHandler.Get)
	api.GET("/reviews/seller/:id", middleware.UUIDValidator("id"), reviewHandler.ListBySeller)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/media/files", mediaHandler.Upload)
		protected.DELETE("/media/files/:id", middleware.UUIDValidator("id"), mediaHandler.Delete)

		// Объявления ведёт покупатель
		buyer := protected.Group("/")
		buyer.Use(middleware.RequireRole(models.RoleBuyer))
		{
			buyer.POST("/jobs/post", jobHandler.Post)
			buyer.POST("/jobs/draft", jobHandler.Draft)
			buyer.GET("/jobs/buyer", jobHandler.ListMine)
			buyer.PUT("/jobs/job/:id", middleware.UUIDValidator("id"), jobHandler.Update)
			buyer.PATCH("/jobs/job/:id/status", middleware.UUIDValidator("id"), jobHandler.ChangeStatus)
			buyer.DELETE("/jobs/job/:id", middleware.UUIDValidator("id"), jobHandler.Delete)

			buyer.GET("/proposals/job/:jobId", middleware.UUIDValidator("jobId"), proposalHandler.ListByJob)
			buyer.GET("/proposals/buyer/:id", middleware.UUIDValidator("id"), proposalHandler.ListByBuyer)
			buyer.PATCH("/proposals/:id/decision", middleware.UUIDValidator("id"), proposalHandler.SetDecision)

			buyer.POST("/orders", orderHandler.Create)
			buyer.GET("/orders/buyer", orderHandler.ListForBuyer)
			buyer.GET("/orders/buyer/:id", middleware.UUIDValidator("id"), orderHandler.Get)
			buyer.PATCH("/orders/:id/complete", middleware.UUIDValidator("id"), orderHandler.Complete)
			buyer.PATCH("/orders/:id/cancel", middleware.UUIDValidator("id"), orderHandler.Cancel)

			buyer.POST("/payments/process", paymentHandler.Process)

			buyer.POST("/disputes/order/:orderId", middleware.UUIDValidator("orderId"), disputeHandler.Create)
			buyer.POST("/reviews/order/:orderId", middleware.UUIDValidator("orderId"), reviewHandler.Create)
		}

		// Откликается и сдаёт работу исполнитель
		seller := protected.Group("/")
		seller.Use(middleware.RequireRole(models.RoleSeller))
		{
			seller.POST("/proposals/job/:jobId", middleware.UUIDValidator("jobId"), proposalHandler.Create)
			seller.GET("/proposals/my", proposalHandler.ListMine)
			seller.GET("/orders/seller", orderHandler.ListForSeller)
			seller.PATCH("/orders/:id/deliver", middleware.UUIDValidator("id"), orderHandler.Deliver)
		}

		// Обе стороны заказа
		protected.GET("/payments/check/:orderId", middleware.UUIDValidator("orderId"), paymentHandler.Check)
		protected.GET("/payments/order/:orderId", middleware.UUIDValidator("orderId"), paymentHandler.GetByOrder)
		protected.GET("/disputes/order/:orderId", middleware.UUIDValidator("orderId"), disputeHandler.ListByOrder)
		protected.GET("/reviews/order/:orderId", middleware.UUIDValidator("orderId"), reviewHandler.GetByOrder)
		protected.PATCH("/disputes/:id/status", middleware.UUIDValidator("id"), disputeHandler.UpdateStatus)
	}

	return r
}
