package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Rohith-2027/cab-booking-backend/internal/database"
	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
	"github.com/Rohith-2027/cab-booking-backend/internal/handlers"
	"github.com/Rohith-2027/cab-booking-backend/internal/middleware"
	"github.com/Rohith-2027/cab-booking-backend/internal/models"
	"github.com/Rohith-2027/cab-booking-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	database.InitDB()
	services.InitRedis()

	hub := services.NewHub()
	go hub.Run()

	engine := dispatch.NewEngine(database.DB, nil)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(database.DB))
			auth.POST("/login", handlers.Login(database.DB))
		}

		// Provider webhooks carry no user token.
		api.GET("/payments/mock-provider/:id/success", handlers.MockProviderSuccess(engine, hub))

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/ws", handlers.HandleWebSocket(hub))
			protected.GET("/notifications", handlers.GetUserNotifications(database.DB))
			protected.GET("/bookings/:id", handlers.GetBookingDetails(database.DB))
			protected.POST("/bookings/:id/emergency-cancel", handlers.EmergencyCancelBooking(engine, hub))

			customer := protected.Group("/customer")
			customer.Use(middleware.RequireRoles(models.RoleCustomer))
			{
				customer.POST("/bookings", handlers.CreateBooking(engine))
				customer.GET("/bookings", handlers.GetCustomerBookings(database.DB))
				customer.POST("/bookings/:id/cancel", handlers.CancelBooking(engine))
				customer.POST("/bookings/:id/pay", handlers.InitiateOnlinePayment(engine))
				customer.POST("/bookings/:id/verify-payment", handlers.VerifyOnlinePayment(engine))
			}

			vendor := protected.Group("/vendor")
			vendor.Use(middleware.RequireRoles(models.RoleVendor))
			{
				vendor.GET("/bookings", handlers.GetVendorBookings(database.DB))
				vendor.POST("/bookings/:id/accept", handlers.AcceptBooking(engine, hub))
				vendor.POST("/bookings/:id/assign", handlers.AssignBooking(engine, hub))
				vendor.GET("/drivers", handlers.GetVendorDrivers(database.DB))
				vendor.GET("/drivers/available", handlers.GetAvailableDrivers(database.DB))
				vendor.GET("/vehicles/available", handlers.GetAvailableVehicles(database.DB))
				vendor.GET("/history", handlers.GetVendorHistory(database.DB))
				vendor.GET("/payments", handlers.GetVendorPayments(database.DB))
			}

			driver := protected.Group("/driver")
			driver.Use(middleware.RequireRoles(models.RoleDriver))
			{
				driver.GET("/trips", handlers.GetDriverQueue(database.DB))
				driver.POST("/trips/:id/start", handlers.StartTrip(engine, hub))
				driver.POST("/trips/:id/end", handlers.EndTrip(engine, hub))
				driver.POST("/trips/:id/confirm-cash", handlers.ConfirmCashPayment(engine, hub))
				driver.GET("/history", handlers.GetDriverHistory(database.DB))
				driver.GET("/availability", handlers.GetDriverAvailability(database.DB))
				driver.PUT("/availability", handlers.SetDriverAvailability(engine))
				driver.POST("/shifts", handlers.CreateShift(engine))
				driver.GET("/shifts", handlers.GetDriverShifts(database.DB))
				driver.POST("/shifts/:id/end", handlers.EndShift(engine))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
