package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
	"github.com/Rohith-2027/cab-booking-backend/internal/middleware"
	"github.com/Rohith-2027/cab-booking-backend/internal/models"
	"github.com/Rohith-2027/cab-booking-backend/internal/services"
)

// GetDriverQueue returns the driver's active trips plus completed cash
// trips still waiting on a cash confirmation.
func GetDriverQueue(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var active []models.Booking
		if err := db.Where("driver_id = ? AND status IN ?", actor.ID,
			[]models.BookingStatus{models.BookingStatusAssigned, models.BookingStatusStarted}).
			Order("target_pickup_time ASC").
			Find(&active).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
			return
		}

		var pendingCash []models.Booking
		if err := db.Joins("JOIN payments ON payments.booking_id = bookings.id").
			Where("bookings.driver_id = ? AND bookings.status = ? AND bookings.payment_mode = ? AND payments.status = ?",
				actor.ID, models.BookingStatusCompleted, models.PaymentModeCash, models.PaymentStatusPending).
			Find(&pendingCash).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"activeTrips":             active,
			"pendingCashConfirmation": pendingCash,
		})
	}
}

func StartTrip(engine *dispatch.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		result, err := engine.StartTrip(c.Request.Context(), middleware.CurrentActor(c), bookingID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		hub.BroadcastToUser(result.CustomerID, services.EventTripStarted, gin.H{"bookingId": result.BookingID})

		c.JSON(http.StatusOK, gin.H{"message": "Trip started successfully"})
	}
}

func EndTrip(engine *dispatch.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		result, err := engine.EndTrip(c.Request.Context(), middleware.CurrentActor(c), bookingID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		services.CacheDriverAvailability(c.Request.Context(), result.DriverID, true)
		hub.BroadcastToUser(result.CustomerID, services.EventTripCompleted, gin.H{
			"bookingId":   result.BookingID,
			"paymentMode": result.PaymentMode,
		})

		c.JSON(http.StatusOK, gin.H{"message": "Trip completed successfully"})
	}
}

// GetDriverHistory lists the driver's settled trips. Cash trips only
// count once the payment is confirmed.
func GetDriverHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var bookings []models.Booking
		if err := db.Joins("JOIN payments ON payments.booking_id = bookings.id").
			Where("bookings.driver_id = ? AND bookings.status = ? AND payments.status = ?",
				actor.ID, models.BookingStatusCompleted, models.PaymentStatusPaid).
			Order("bookings.completed_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

func GetDriverAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		if available, hit, err := services.GetCachedDriverAvailability(c.Request.Context(), actor.ID); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"isAvailable": available})
			return
		}

		var driver models.Driver
		if err := db.Where("user_id = ?", actor.ID).First(&driver).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}

		services.CacheDriverAvailability(c.Request.Context(), actor.ID, driver.IsAvailable)
		c.JSON(http.StatusOK, gin.H{"isAvailable": driver.IsAvailable})
	}
}

type SetAvailabilityInput struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

func SetDriverAvailability(engine *dispatch.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SetAvailabilityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		actor := middleware.CurrentActor(c)
		if err := engine.SetDriverAvailability(c.Request.Context(), actor, *input.IsAvailable); err != nil {
			respondDispatchError(c, err)
			return
		}

		services.CacheDriverAvailability(c.Request.Context(), actor.ID, *input.IsAvailable)
		c.JSON(http.StatusOK, gin.H{"message": "Availability updated", "isAvailable": *input.IsAvailable})
	}
}
