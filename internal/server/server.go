package server

import (
	"context"
	"net/http"
	"time"

	"bookwise/internal/auth"
	"bookwise/internal/booking"
	"bookwise/internal/calendar"
	"bookwise/internal/config"
	"bookwise/internal/directory"
	"bookwise/internal/notify"
	"bookwise/internal/schedule"
	"bookwise/internal/staff"
	"bookwise/internal/waitlist"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	notify *notify.Service
}

func New(db *sqlx.DB, cfg *config.Config, notifyService *notify.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	RegisterValidators()

	bookingRepo := booking.NewRepository(db)
	staffRepo := staff.NewRepository(db)
	directoryRepo := directory.NewRepository(db)
	waitlistRepo := waitlist.NewRepository(db)
	scheduleRepo := schedule.NewRepository(db)
	calendarRepo := calendar.NewRepository(db)

	detector := booking.NewDetector(bookingRepo, staffRepo, directoryRepo)
	finder := booking.NewSlotFinder(detector)

	// The promotion creator writes bookings on the waitlist's behalf; the
	// waitlist service in turn is the booking service's promoter. Wiring
	// them through interfaces here keeps the two packages acyclic.
	promotionCreator := booking.NewPromotionCreator(bookingRepo)
	waitlistService := waitlist.NewService(waitlistRepo, directoryRepo, promotionCreator, notifyService)
	bookingService := booking.NewService(bookingRepo, directoryRepo, detector, waitlistService, notifyService)

	engine := schedule.NewEngine(scheduleRepo)
	scheduleService := schedule.NewService(scheduleRepo, engine, bookingRepo, directoryRepo)

	defaultHorizon := time.Duration(cfg.MaterializeHorizonDays) * 24 * time.Hour

	bookingHandler := booking.NewHandler(bookingService, finder)
	waitlistHandler := waitlist.NewHandler(waitlistService)
	scheduleHandler := schedule.NewHandler(scheduleService, defaultHorizon)
	calendarHandler := calendar.NewHandler(calendarRepo)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.POST("/bookings", bookingHandler.Create)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.GET("/bookings/:bookingID", bookingHandler.Get)
		protected.PATCH("/bookings/:bookingID", bookingHandler.Update)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.Cancel)

		protected.GET("/availability/slots", bookingHandler.AvailableSlots)

		protected.POST("/services/:serviceID/waitlist", waitlistHandler.Join)
		protected.GET("/services/:serviceID/waitlist/position", waitlistHandler.Position)
		protected.DELETE("/waitlist/:entryID", waitlistHandler.Leave)

		protected.GET("/calendar", calendarHandler.Events)
		protected.GET("/calendar/day", calendarHandler.Day)
		protected.GET("/calendar/week", calendarHandler.Week)

		protected.GET("/schedules/:scheduleID", scheduleHandler.Get)
		protected.GET("/schedules/:scheduleID/occurrences", scheduleHandler.Occurrences)
	}

	staffOnly := auth.RequireRole("staff")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, staffOnly)
	{
		admin.POST("/bookings/:bookingID/status", bookingHandler.Transition)

		admin.GET("/services/:serviceID/waitlist", waitlistHandler.ListByService)
		admin.PUT("/waitlist/:entryID/position", waitlistHandler.Reorder)
		admin.POST("/waitlist/:entryID/notify", waitlistHandler.Notify)

		admin.POST("/schedules", scheduleHandler.Create)
		admin.PUT("/schedules/:scheduleID", scheduleHandler.Update)
		admin.DELETE("/schedules/:scheduleID", scheduleHandler.Delete)
		admin.GET("/services/:serviceID/schedules", scheduleHandler.ListByService)
		admin.POST("/schedules/:scheduleID/materialize", scheduleHandler.Materialize)
		admin.POST("/schedules/:scheduleID/exceptions", scheduleHandler.AddException)
		admin.GET("/schedules/:scheduleID/exceptions", scheduleHandler.ListExceptions)
		admin.DELETE("/schedules/:scheduleID/exceptions/:exceptionID", scheduleHandler.RemoveException)
	}

	router.GET("/health", Health(notifyService))
	router.GET("/test-notification", TestNotification(notifyService))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		notify: notifyService,
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

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
