package routes

import (
	"slices"
	"time"

	"milk-backend/config"
	"milk-backend/controllers"
	"milk-backend/metrics"
	"milk-backend/realtime"
	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps are the services the router hands to its controllers.
type Deps struct {
	Config       *config.Config
	Log          logrus.FieldLogger
	Tokens       *utils.TokenIssuer
	AuthLimiter  *utils.RateLimiter
	Hub          *realtime.Hub
	Accounts     *services.AccountService
	Ledger       *services.LedgerService
	Orders       *services.OrderService
	Reservations *services.ReservationService
	Promotions   *services.PromotionService
	Products     *services.ProductService
	Stats        *services.StatsService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := d.Config.AllowedOrigins()
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return len(origins) == 0 || slices.Contains(origins, origin)
		},
		MaxAge: 12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(d.Log))

	authController := &controllers.AuthController{Accounts: d.Accounts}
	profileController := &controllers.ProfileController{Accounts: d.Accounts}
	milkpointsController := &controllers.MilkpointsController{Ledger: d.Ledger}
	promotionController := &controllers.PromotionController{Promotions: d.Promotions}
	productController := &controllers.ProductController{Products: d.Products}
	reservationController := &controllers.ReservationController{Reservations: d.Reservations}
	orderController := &controllers.OrderController{Orders: d.Orders, Log: d.Log}
	dashboardController := &controllers.DashboardController{Stats: d.Stats}

	requireSession := utils.AuthMiddleware(d.Tokens)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			limited := auth.Group("")
			if d.AuthLimiter != nil {
				limited.Use(d.AuthLimiter.Middleware())
			}
			limited.POST("/register", authController.Register)
			limited.POST("/login", authController.Login)

			auth.GET("/me", requireSession, authController.Me)
		}

		api.POST("/user/profile", requireSession, profileController.UpdateProfile)

		milkpoints := api.Group("/milkpoints")
		{
			milkpoints.POST("/adjust", milkpointsController.Adjust)
			milkpoints.GET("/:milkId", milkpointsController.Get)
			milkpoints.GET("/:milkId/qr", milkpointsController.Card)
		}

		api.GET("/data", promotionController.Data)
		api.GET("/happy", promotionController.Get)
		api.POST("/happy", promotionController.Set)

		api.GET("/products", productController.List)

		reservations := api.Group("/rezerwacje")
		{
			reservations.GET("", reservationController.List)
			reservations.POST("", reservationController.Create)
			reservations.DELETE("/:id", reservationController.Delete)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", orderController.Create)
			orders.GET("/my", orderController.My)
		}

		api.GET("/admin/stats", dashboardController.GetStats)
		api.GET("/health", controllers.Health)
	}

	if d.Hub != nil {
		r.GET("/ws", d.Hub.ServeWS)
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.NoRoute(controllers.SPA(d.Config.PublicDir))

	return r
}
