package main

import (
	"context"
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"net/http"
	"opsched/cmd/internal/config"
	"opsched/cmd/internal/domain/sqlite"
	"opsched/cmd/internal/domain/sqlite/repository"
	"opsched/cmd/internal/notify"
	"opsched/cmd/internal/ratelimit"
	"opsched/cmd/internal/routes"
	"opsched/cmd/internal/scheduling"
	"opsched/cmd/internal/service"
	"opsched/cmd/internal/store"
	"opsched/cmd/internal/telemetry"
	"opsched/cmd/internal/utils/validators"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	validate := validators.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracing: ", err)
	}

	// Persistence is optional; without a path everything lives in memory
	var eventPersist store.EventPersistence
	var linkPersist store.LinkPersistence
	if cfg.DatabasePath != "" {
		db, err := sqlite.Init(cfg.DatabasePath)
		if err != nil {
			log.Fatal("failed to initialize database: ", err)
		}
		eventPersist = repository.NewEventRepository(db)
		linkPersist = repository.NewLinkRepository(db)
	} else {
		log.Warn("DATABASE_PATH is empty, events and links will not survive a restart")
	}

	// Stores
	eventStore := store.NewEventStore(eventPersist, store.WithLocation(cfg.Location))
	if err := eventStore.Load(); err != nil {
		log.Fatal("failed to load events: ", err)
	}
	linkStore := store.NewLinkStore(linkPersist, cfg.LinkBaseURL)
	if err := linkStore.Load(); err != nil {
		log.Fatal("failed to load scheduling links: ", err)
	}

	// Change hooks
	notifiers := notify.Fanout{notify.LogNotifier{}}
	if len(cfg.KafkaBrokers) > 0 {
		kn := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kn.Close()
		notifiers = append(notifiers, kn)
	}

	// Getting services
	eventService := service.NewEventService(eventStore, notifiers, validate)
	suggester := scheduling.NewSuggester(eventService.Conflicts, time.Now, cfg.SlotStep)
	suggestionService := service.NewSuggestionService(suggester, cfg.BusinessHours, validate)
	calendarService := service.NewCalendarService(eventStore, cfg.Location)
	linkService := service.NewLinkService(linkStore, eventService.Conflicts, eventService, validate)

	// Getting routes
	eventRoutes := routes.NewEventDefault(eventService)
	calendarRoutes := routes.NewCalendarDefault(calendarService, suggestionService)
	linkRoutes := routes.NewLinkDefault(linkService)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	if cfg.RateLimitRPS > 0 {
		limiterStore, closeLimiter, err := ratelimit.NewStore(cfg.RedisURL, cfg.RateLimitRPS)
		if err != nil {
			log.Fatal("failed to initialize rate limiter: ", err)
		}
		defer closeLimiter()
		e.Use(ratelimit.Middleware(limiterStore))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Events
	e.GET("/api/events", eventRoutes.GetEvents)
	e.POST("/api/events", eventRoutes.CreateEvent)
	e.GET("/api/events/:id", eventRoutes.GetEvent)
	e.PATCH("/api/events/:id", eventRoutes.UpdateEvent)
	e.DELETE("/api/events/:id", eventRoutes.DeleteEvent)
	e.GET("/api/conflicts", eventRoutes.GetConflicts)

	// Calendar views and free slots
	e.GET("/api/calendar/day", calendarRoutes.GetDay)
	e.GET("/api/calendar/week", calendarRoutes.GetWeek)
	e.GET("/api/calendar/month", calendarRoutes.GetMonth)
	e.GET("/api/suggestions", calendarRoutes.GetSuggestions)

	// Scheduling links
	e.GET("/api/links", linkRoutes.GetLinks)
	e.POST("/api/links", linkRoutes.CreateLink)
	e.GET("/api/links/:id", linkRoutes.GetLink)
	e.PATCH("/api/links/:id", linkRoutes.UpdateLink)
	e.DELETE("/api/links/:id", linkRoutes.DeleteLink)
	e.POST("/api/links/:id/validate", linkRoutes.ValidateBooking)
	e.POST("/api/links/:id/bookings", linkRoutes.CreateBooking)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           telemetry.Handler(e),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped: ", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down server: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Errorf("failed to flush traces: %v", err)
	}
}
