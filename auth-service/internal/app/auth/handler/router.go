package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookstore/pkg/logger"
	"bookstore/pkg/metrics"

	"bookstore/auth-service/internal/app/auth/entity"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(authHandler *AuthHandler, userHandler *UserHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("auth-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "auth-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты (без аутентификации)
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Защищенные эндпоинты (требуют аутентификации)
		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", authHandler.GetMe)
			protected.PATCH("/me", authHandler.UpdateMe)
			protected.POST("/logout", authHandler.Logout)
		}
	}

	// Управление пользователями - только менеджер по продажам
	users := router.Group("/users")
	users.Use(authMiddleware.Authenticate())
	{
		users.PATCH("/:id/type", authMiddleware.RequireUserType(entity.UserTypeSales), userHandler.UpdateUserType)
		users.PATCH("/:id/address", userHandler.UpdateAddress)
	}

	// Внутренний batch-эндпоинт для межсервисных запросов store-service.
	// Доступен только внутри сети, снаружи закрыт на уровне ingress
	internal := router.Group("/internal")
	{
		internal.POST("/users/lookup", userHandler.LookupUsers)
	}

	return router
}
