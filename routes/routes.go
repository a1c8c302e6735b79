package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-booking-engine/controllers"
	"hotel-booking-engine/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	bc *controllers.BookingController,
	cc *controllers.CatalogController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/rooms", cc.ListRooms)
		api.GET("/rooms/:id", cc.GetRoom)
		api.GET("/promotions", cc.ListPromotions)

		api.GET("/availability", bc.CheckAvailability)

		bookings := api.Group("/bookings")
		{
			bookings.POST("/quote", bc.Quote)
			bookings.POST("", bc.ConfirmBooking)
			bookings.GET("", bc.ListBookings)
			bookings.GET("/:id", bc.GetBooking)
			bookings.POST("/:id/confirm", bc.Confirm)
			bookings.POST("/:id/payments", bc.RecordPayment)
			bookings.POST("/:id/pay", bc.Pay)
			bookings.POST("/:id/complete", bc.Complete)
			bookings.POST("/:id/cancel", bc.Cancel)
			bookings.POST("/:id/fees", bc.AppendFee)
		}
	}

	return r
}
