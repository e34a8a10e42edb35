package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"placement-backoffice/config"
	"placement-backoffice/internal/delivery/http/middleware"
	"placement-backoffice/internal/delivery/http/response"
	"placement-backoffice/internal/domain"
)

type RouterDeps struct {
	ApplicationUC     domain.ApplicationUsecase
	CancellationUC    domain.CancellationUsecase
	GuarantorChangeUC domain.GuarantorChangeUsecase
	SettingsUC        domain.SettingsUsecase
	Config            *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limit:  deps.Config.RateLimitGlobalThreshold,
		Window: time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second,
	}))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Config))
	{
		NewApplicationHandler(protected, deps.ApplicationUC)
		NewCancellationHandler(protected, deps.CancellationUC)
		NewGuarantorChangeHandler(protected, deps.GuarantorChangeUC)
		NewSettingsHandler(protected, deps.SettingsUC)
	}

	return r
}
