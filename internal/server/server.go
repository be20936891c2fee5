package server

import (
	"context"
	"net/http"

	"dojobook/internal/auth"
	"dojobook/internal/booking"
	"dojobook/internal/class"
	"dojobook/internal/config"
	"dojobook/internal/email"
	"dojobook/internal/membership"
	"dojobook/internal/plan"
	"dojobook/internal/trial"
	"dojobook/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	planRepo := plan.NewRepository(db)
	classRepo := class.NewRepository(db)
	trialRepo := trial.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	trialService := trial.NewService(trialRepo)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	membershipService := membership.NewService(membershipRepo, planRepo, userRepo, emailService)
	bookingService := booking.NewService(bookingRepo, classRepo, userRepo, planRepo, membershipRepo, trialService, emailService)

	userHandler := user.NewHandler(userService)
	planHandler := plan.NewHandler(planRepo)
	classHandler := class.NewHandler(classRepo)
	trialHandler := trial.NewHandler(trialService)
	membershipHandler := membership.NewHandler(membershipService)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/classes", classHandler.ListClasses)
		protected.GET("/classes/:classID", classHandler.GetClass)
		protected.GET("/classes/:classID/eligibility", bookingHandler.CheckEligibility)
		protected.POST("/classes/:classID/book", bookingHandler.BookClass)

		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)

		protected.GET("/plans", planHandler.ListPlans)
		protected.GET("/plans/:planID", planHandler.GetPlan)

		protected.POST("/memberships", membershipHandler.RequestMembership)
		protected.GET("/memberships/me", membershipHandler.MyMemberships)
		protected.POST("/memberships/:membershipID/cancel", membershipHandler.CancelMembership)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/classes", classHandler.CreateClass)
		admin.PUT("/classes/:classID", classHandler.UpdateClass)
		admin.GET("/classes/:classID/bookings", bookingHandler.ListBookingsByClass)

		admin.POST("/plans", planHandler.CreatePlan)
		admin.PUT("/plans/:planID", planHandler.UpdatePlan)

		admin.GET("/memberships/pending", membershipHandler.ListPending)
		admin.POST("/memberships/:membershipID/approve", membershipHandler.Approve)
		admin.POST("/memberships/:membershipID/reject", membershipHandler.Reject)
		admin.POST("/memberships/process-upgrades", membershipHandler.ProcessUpgrades)

		admin.GET("/trial-settings", trialHandler.GetSettings)
		admin.PUT("/trial-settings", trialHandler.UpdateSettings)
		admin.POST("/trial-reset", trialHandler.ResetTrial)
		admin.GET("/trial-audit", trialHandler.Audit)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
