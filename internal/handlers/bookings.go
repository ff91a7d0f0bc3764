package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
	"github.com/Rohith-2027/cab-booking-backend/internal/middleware"
	"github.com/Rohith-2027/cab-booking-backend/internal/models"
	"github.com/Rohith-2027/cab-booking-backend/internal/services"
)

type CreateBookingInput struct {
	PickupLocation        string              `json:"pickupLocation" binding:"required"`
	DropLocation          string              `json:"dropLocation" binding:"required"`
	RequestedVehicleClass models.VehicleClass `json:"requestedVehicleClass" binding:"required"`
	DistanceKm            float64             `json:"distanceKm" binding:"required"`
	TargetPickupTime      time.Time           `json:"targetPickupTime" binding:"required"`
	PaymentMode           models.PaymentMode  `json:"paymentMode" binding:"required"`
}

func CreateBooking(engine *dispatch.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		booking, err := engine.CreateBooking(c.Request.Context(), middleware.CurrentActor(c), dispatch.CreateBookingInput{
			PickupLocation:        input.PickupLocation,
			DropLocation:          input.DropLocation,
			RequestedVehicleClass: input.RequestedVehicleClass,
			DistanceKm:            input.DistanceKm,
			TargetPickupTime:      input.TargetPickupTime,
			PaymentMode:           input.PaymentMode,
		})
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Booking created successfully",
			"booking": booking,
		})
	}
}

func CancelBooking(engine *dispatch.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		if err := engine.CancelByCustomer(c.Request.Context(), middleware.CurrentActor(c), bookingID); err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
	}
}

func GetCustomerBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var bookings []models.Booking
		if err := db.Where("customer_id = ?", actor.ID).
			Order("created_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

func GetBookingDetails(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}
		actor := middleware.CurrentActor(c)

		var booking models.Booking
		if err := db.First(&booking, bookingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		if !bookingVisibleTo(&booking, actor) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a party to this booking"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

type EmergencyCancelInput struct {
	Reason string `json:"reason" binding:"required"`
}

func EmergencyCancelBooking(engine *dispatch.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var input EmergencyCancelInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := engine.EmergencyCancel(c.Request.Context(), middleware.CurrentActor(c), bookingID, input.Reason)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		payload := gin.H{"bookingId": result.BookingID, "reason": input.Reason}
		hub.BroadcastToUser(result.CustomerID, services.EventBookingCancelled, payload)
		if result.DriverID != nil {
			hub.BroadcastToUser(*result.DriverID, services.EventBookingCancelled, payload)
			services.InvalidateDriverAvailability(c.Request.Context(), *result.DriverID)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled due to emergency"})
	}
}

func bookingVisibleTo(b *models.Booking, actor models.Actor) bool {
	switch actor.Role {
	case models.RoleCustomer:
		return b.CustomerID == actor.ID
	case models.RoleVendor:
		return b.VendorID != nil && *b.VendorID == actor.ID
	case models.RoleDriver:
		return b.DriverID != nil && *b.DriverID == actor.ID
	}
	return false
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, err
	}
	return uint(id), nil
}
