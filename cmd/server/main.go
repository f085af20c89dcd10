package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/festopiya/stall-booking/internal/config"
	"github.com/festopiya/stall-booking/internal/database"
	"github.com/festopiya/stall-booking/internal/handler"
	"github.com/festopiya/stall-booking/internal/middleware"
	"github.com/festopiya/stall-booking/internal/payment"
	"github.com/festopiya/stall-booking/internal/queue"
	"github.com/festopiya/stall-booking/internal/repository"
	"github.com/festopiya/stall-booking/internal/router"
	"github.com/festopiya/stall-booking/internal/service"
	"github.com/festopiya/stall-booking/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "stall-booking", cfg.OTLPEndpoint)
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Printf("redis unavailable at %s; running without cache and rate limit", cfg.Redis.Address())
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	profiles := repository.NewProfileRepo(db)
	catalog := repository.NewEventCache(events, rdb, cfg.EventCacheTTL)

	svc := service.NewBookingService(catalog, bookings, profiles, queue.NewPublisher(cfg.RabbitURL))
	payee := payment.Payee{VPA: cfg.UPIPayeeVPA, Name: cfg.UPIPayeeName}
	if payee.VPA == "" {
		log.Printf("UPI_PAYEE_VPA not set; payment links will be unavailable")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb))

	eventH := handler.NewEventHandler(events, bookings, cfg.RequestTimeout)
	bookingH := handler.NewBookingHandler(svc, payee, cfg.RequestTimeout)
	profileH := handler.NewProfileHandler(profiles, cfg.RequestTimeout)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, eventH, middleware.NewRedisCache(cfg.Cache, rdb))
	router.RegisterOrganizer(e, eventH, bookingH, cfg.JWTSecret)
	router.RegisterVendor(e, eventH, bookingH, profileH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
