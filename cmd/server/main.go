package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/parkhaus/parking-ticket-service/internal/config"
	"github.com/parkhaus/parking-ticket-service/internal/database"
	"github.com/parkhaus/parking-ticket-service/internal/handler"
	"github.com/parkhaus/parking-ticket-service/internal/middleware"
	"github.com/parkhaus/parking-ticket-service/internal/queue"
	"github.com/parkhaus/parking-ticket-service/internal/repository"
	"github.com/parkhaus/parking-ticket-service/internal/router"
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Bootstrap(ctx, db); err != nil {
		cancel()
		log.Fatalf("bootstrap: %v", err)
	}
	cancel()

	facilityRepo := repository.NewFacilityRepo(db)
	priceRepo := repository.NewPriceRepo(db)
	ticketRepo := repository.NewTicketRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	tickets := handler.NewTicketHandler(facilityRepo, priceRepo, ticketRepo, paymentRepo)
	payments := handler.NewPaymentHandler(ticketRepo, paymentRepo)
	freeSpaces := handler.NewFreeSpacesHandler(facilityRepo)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and GET response caching.  Both
	// degrade to pass-through when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, tickets, payments, freeSpaces)

	// Background consumer mirroring lifecycle events into logs/parking.log.
	go func() {
		if err := queue.StartEventsConsumer(); err != nil {
			log.Printf("parking-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
