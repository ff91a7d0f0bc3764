package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
	"github.com/Rohith-2027/cab-booking-backend/internal/middleware"
	"github.com/Rohith-2027/cab-booking-backend/internal/models"
	"github.com/Rohith-2027/cab-booking-backend/internal/services"
)

// highPriorityWindow flags open bookings whose pickup is close enough
// that vendors should act on them first.
const highPriorityWindow = 3 * time.Hour

type openBookingView struct {
	models.Booking
	Priority string `json:"priority"`
}

// GetVendorBookings returns the open market (unclaimed requested
// bookings) plus the vendor's own accepted and assigned bookings.
func GetVendorBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var open []models.Booking
		if err := db.Where("status = ? AND vendor_id IS NULL", models.BookingStatusRequested).
			Order("target_pickup_time ASC").
			Find(&open).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		now := time.Now()
		openViews := make([]openBookingView, 0, len(open))
		for _, b := range open {
			priority := "NORMAL"
			if b.TargetPickupTime.Sub(now) <= highPriorityWindow {
				priority = "HIGH"
			}
			openViews = append(openViews, openBookingView{Booking: b, Priority: priority})
		}

		var mine []models.Booking
		if err := db.Where("vendor_id = ? AND status IN ?", actor.ID,
			[]models.BookingStatus{models.BookingStatusAccepted, models.BookingStatusAssigned, models.BookingStatusStarted}).
			Order("target_pickup_time ASC").
			Find(&mine).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"openBookings":   openViews,
			"activeBookings": mine,
		})
	}
}

func AcceptBooking(engine *dispatch.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		result, err := engine.Accept(c.Request.Context(), middleware.CurrentActor(c), bookingID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		hub.BroadcastToUser(result.CustomerID, services.EventBookingAccepted, gin.H{
			"bookingId": result.BookingID,
			"fare":      result.Fare,
		})

		c.JSON(http.StatusOK, gin.H{
			"message": "Booking accepted successfully",
			"fare":    result.Fare,
		})
	}
}

type AssignBookingInput struct {
	DriverID  uint `json:"driverId" binding:"required"`
	VehicleID uint `json:"vehicleId" binding:"required"`
}

func AssignBooking(engine *dispatch.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var input AssignBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := engine.Assign(c.Request.Context(), middleware.CurrentActor(c), bookingID, input.DriverID, input.VehicleID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		services.CacheDriverAvailability(c.Request.Context(), result.DriverID, false)
		hub.BroadcastToUser(result.DriverID, services.EventBookingAssigned, gin.H{"bookingId": result.BookingID})
		hub.BroadcastToUser(result.CustomerID, services.EventBookingAssigned, gin.H{
			"bookingId": result.BookingID,
			"driverId":  result.DriverID,
			"vehicleId": result.VehicleID,
		})

		c.JSON(http.StatusOK, gin.H{"message": "Driver and vehicle assigned successfully"})
	}
}

type vendorDriverView struct {
	models.Driver
	InActiveShift bool `json:"inActiveShift"`
}

// GetVendorDrivers lists the vendor's drivers with a flag showing
// whether each one currently has a shift covering this moment.
func GetVendorDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var drivers []models.Driver
		if err := db.Where("vendor_id = ?", actor.ID).Find(&drivers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drivers"})
			return
		}

		now := time.Now()
		views := make([]vendorDriverView, 0, len(drivers))
		for _, d := range drivers {
			var shifts []models.DriverShift
			db.Where("driver_id = ? AND is_active = ? AND shift_start <= ? AND shift_end > ?",
				d.UserID, true, now, now).
				Limit(1).
				Find(&shifts)
			views = append(views, vendorDriverView{Driver: d, InActiveShift: len(shifts) > 0})
		}

		c.JSON(http.StatusOK, gin.H{"drivers": views})
	}
}

func GetAvailableDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var drivers []models.Driver
		if err := db.Where("vendor_id = ? AND is_available = ?", actor.ID, true).
			Find(&drivers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drivers"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"drivers": drivers})
	}
}

func GetAvailableVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		query := db.Where("vendor_id = ? AND is_available = ?", actor.ID, true)
		if class := c.Query("vehicleType"); class != "" {
			query = query.Where("vehicle_type = ?", class)
		}

		var vehicles []models.Vehicle
		if err := query.Find(&vehicles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
	}
}

func GetVendorHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var bookings []models.Booking
		if err := db.Where("vendor_id = ? AND status IN ?", actor.ID,
			[]models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled}).
			Order("updated_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

// GetVendorPayments lists payments on the vendor's bookings along with
// the earned total from settled ones.
func GetVendorPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var payments []models.Payment
		if err := db.Joins("JOIN bookings ON bookings.id = payments.booking_id").
			Where("bookings.vendor_id = ?", actor.ID).
			Find(&payments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
			return
		}

		var total float64
		for _, p := range payments {
			if p.Status == models.PaymentStatusPaid {
				total += p.Amount
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"payments":    payments,
			"totalEarned": total,
		})
	}
}
