package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/config"
	"github.com/sporthub/sporthub-api/internal/database"
	"github.com/sporthub/sporthub-api/internal/handler"
	"github.com/sporthub/sporthub-api/internal/middleware"
	"github.com/sporthub/sporthub-api/internal/payment"
	"github.com/sporthub/sporthub-api/internal/queue"
	"github.com/sporthub/sporthub-api/internal/repository"
	"github.com/sporthub/sporthub-api/internal/router"
	"github.com/sporthub/sporthub-api/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the public browse cache; both
	// fail open when it is absent.
	rdb := config.NewRedisClient()

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	facilities := repository.NewFacilityRepo(db)
	events := repository.NewEventRepo(db)
	coaches := repository.NewCoachRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	memberships := repository.NewMembershipRepo(db)

	gateway := payment.NewClient(cfg.RazorpayURL, cfg.RazorpayKeyID, cfg.RazorpaySecret)

	// handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	browseH := handler.NewBrowseHandler(facilities, events, coaches, bookings)
	bookingH := handler.NewBookingHandler(cfg, bookings, facilities, events, coaches, memberships)
	paymentH := handler.NewPaymentHandler(cfg, gateway, payments, bookings, events, memberships)
	membershipH := handler.NewMembershipHandler(memberships)
	adminBookingH := handler.NewAdminBookingHandler(bookings, events)
	adminCatalogH := handler.NewAdminCatalogHandler(facilities, events, coaches, memberships)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, browseH, membershipH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterBookings(e, bookingH, paymentH, membershipH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminBookingH, adminCatalogH, cfg.JWTSecret)

	// background hold expiry sweep
	sweeper := worker.NewSweeper(bookings, events, memberships, cfg.SweepInterval)
	go sweeper.Run(context.Background())

	// booking.confirmed consumer writes logs/booking.log
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
