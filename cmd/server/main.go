package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-seat-booking/internal/booking"
	"github.com/iliyamo/venue-seat-booking/internal/config"
	"github.com/iliyamo/venue-seat-booking/internal/database"
	"github.com/iliyamo/venue-seat-booking/internal/handler"
	"github.com/iliyamo/venue-seat-booking/internal/middleware"
	"github.com/iliyamo/venue-seat-booking/internal/queue"
	"github.com/iliyamo/venue-seat-booking/internal/repository"
	"github.com/iliyamo/venue-seat-booking/internal/router"
	"github.com/iliyamo/venue-seat-booking/internal/venue"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	layout, err := venue.New(cfg.TotalSeats, cfg.SeatsPerRow)
	if err != nil {
		log.Fatalf("invalid venue layout: %v", err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema init failed: %v", err)
	}

	seatRepo := repository.NewSeatRepo(db)
	if err := seatRepo.Seed(ctx, layout); err != nil {
		log.Fatalf("seat seeding failed: %v", err)
	}

	coordinator := booking.NewCoordinator(seatRepo, layout, cfg.BookAttempts, cfg.BookBackoff)
	bookingHandler := handler.NewBookingHandler(coordinator, layout)
	authHandler := handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))

	// Redis is optional: without it rate limiting and caching degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and layout cache disabled")
	}

	// Background consumer appends booked events to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterBooking(e, bookingHandler, cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, seats=%d, rows=%d)", addr, cfg.Env, layout.TotalSeats(), layout.Rows())
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
