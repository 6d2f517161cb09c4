package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookstore/pkg/logger"
	"bookstore/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	bookHandler *BookHandler,
	orderHandler *OrderHandler,
	reviewHandler *ReviewHandler,
	wishlistHandler *WishlistHandler,
	refundHandler *RefundHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("store-service"))

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
			"service": "store-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	books := api.Group("/books")
	{
		// Каталог доступен без аутентификации
		books.GET("", bookHandler.GetAllBooks)
		books.GET("/categories", bookHandler.GetCategories)
		books.GET("/:id", bookHandler.GetBook)

		// Управление каталогом - только менеджер по товарам
		manage := books.Group("")
		manage.Use(authMiddleware.Authenticate())
		manage.Use(authMiddleware.RequireUserType("product"))
		{
			manage.POST("", bookHandler.CreateBook)
			manage.DELETE("/:id", bookHandler.DeleteBook)
			manage.PATCH("/:id/stock", bookHandler.UpdateStock)
			manage.PATCH("/:id/price", bookHandler.UpdatePrice)
			manage.POST("/discount", bookHandler.ApplyDiscount)
		}

		// Списание остатков вызывается после оформления заказа
		decrease := books.Group("")
		decrease.Use(authMiddleware.Authenticate())
		{
			decrease.POST("/decrease-stock", bookHandler.DecreaseStock)
		}
	}

	orders := api.Group("/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/user/:user_id", orderHandler.GetUserOrders)
		orders.GET("/check-purchase/:user_id/:book_id", orderHandler.CheckPurchase)
		orders.PATCH("/:order_id/status", authMiddleware.RequireUserType("sales"), orderHandler.UpdateStatus)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/book/:book_id", reviewHandler.GetBookReviews)

		protected := comments.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", reviewHandler.CreateComment)

			// Модерация - только менеджер по товарам
			moderation := protected.Group("")
			moderation.Use(authMiddleware.RequireUserType("product"))
			{
				moderation.GET("", reviewHandler.GetAllComments)
				moderation.GET("/pending", reviewHandler.GetPendingComments)
				moderation.PATCH("/:id/approval", reviewHandler.SetApproval)
				moderation.DELETE("/:id", reviewHandler.DeleteComment)
			}
		}
	}

	ratings := api.Group("/ratings")
	{
		ratings.GET("/book/:book_id/average", reviewHandler.GetBookAverage)

		protected := ratings.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", reviewHandler.CreateRating)
			protected.GET("/order/:order_id", reviewHandler.GetRatingsByOrder)
			protected.GET("/user/:user_id", reviewHandler.GetRatingsByUser)
		}
	}

	wishlist := api.Group("/wishlist")
	wishlist.Use(authMiddleware.Authenticate())
	{
		wishlist.POST("", wishlistHandler.Add)
		wishlist.GET("/user/:user_id", wishlistHandler.GetUserWishlist)
		wishlist.DELETE("/:id", wishlistHandler.Remove)
	}

	refunds := api.Group("/refund-requests")
	refunds.Use(authMiddleware.Authenticate())
	{
		refunds.POST("", refundHandler.Create)
		refunds.GET("/user/:user_id", refundHandler.GetByUser)

		// Решения по возвратам - только менеджер по продажам
		sales := refunds.Group("")
		sales.Use(authMiddleware.RequireUserType("sales"))
		{
			sales.GET("", refundHandler.GetAll)
			sales.PATCH("/:id/status", refundHandler.UpdateStatus)
		}
	}

	return router
}
