package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotel-booking-engine/config"
	"hotel-booking-engine/controllers"
	"hotel-booking-engine/routes"
	"hotel-booking-engine/scheduler"
	"hotel-booking-engine/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("config.DB is nil after ConnectDatabase()")
	}
	log.Println("database connection established and migrations applied")

	// Initialize services
	availabilityService := services.NewAvailabilityService(db)
	pricingService := services.NewPricingService(db)
	promotionService := services.NewPromotionService(db)
	catalogService := services.NewCatalogService(db)
	bookingService := services.NewBookingService(db, availabilityService, pricingService, promotionService, services.NewLogNotifier())

	// Initialize controllers
	bookingController := controllers.NewBookingController(bookingService, availabilityService, pricingService, promotionService, catalogService)
	catalogController := controllers.NewCatalogController(catalogService)

	// Pending-hold expiry job
	holdTTL := 30 * time.Minute
	if raw := os.Getenv("BOOKING_HOLD_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid BOOKING_HOLD_TTL %q: %v", raw, err)
		}
		holdTTL = parsed
	}
	sched := scheduler.New(bookingService, holdTTL)
	sched.Start()

	router := routes.SetupRouter(bookingController, catalogController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, shutting down server...")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped gracefully")
}
