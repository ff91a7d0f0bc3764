package dispatch

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// CreateBookingInput carries the six fields a rider must supply.
type CreateBookingInput struct {
	PickupLocation        string
	DropLocation          string
	RequestedVehicleClass models.VehicleClass
	DistanceKm            float64
	TargetPickupTime      time.Time
	PaymentMode           models.PaymentMode
}

func validateCreateInput(in CreateBookingInput, now time.Time) error {
	if in.PickupLocation == "" {
		return InvalidInputError{Field: "pickup_location", Msg: "required"}
	}
	if in.DropLocation == "" {
		return InvalidInputError{Field: "drop_location", Msg: "required"}
	}
	if !models.ValidVehicleClass(in.RequestedVehicleClass) {
		return InvalidInputError{Field: "requested_vehicle_class", Msg: "invalid vehicle class"}
	}
	if !models.ValidPaymentMode(in.PaymentMode) {
		return InvalidInputError{Field: "payment_mode", Msg: "invalid payment mode"}
	}
	if in.DistanceKm <= 0 {
		return InvalidInputError{Field: "distance_km", Msg: "must be positive"}
	}
	if in.TargetPickupTime.IsZero() {
		return InvalidInputError{Field: "target_pickup_time", Msg: "required"}
	}
	if !in.TargetPickupTime.After(now) {
		return InvalidInputError{Field: "target_pickup_time", Msg: "pickup time must be in the future"}
	}
	return nil
}

// CreateBooking inserts a new booking in status requested. Any
// validation failure writes nothing.
func (e *Engine) CreateBooking(ctx context.Context, actor models.Actor, in CreateBookingInput) (*models.Booking, error) {
	if actor.Role != models.RoleCustomer {
		return nil, UnauthorizedError{Msg: "only customers can create bookings"}
	}
	if err := validateCreateInput(in, time.Now()); err != nil {
		return nil, err
	}

	booking := models.Booking{
		CustomerID:            actor.ID,
		PickupLocation:        in.PickupLocation,
		DropLocation:          in.DropLocation,
		RequestedVehicleClass: in.RequestedVehicleClass,
		DistanceKm:            in.DistanceKm,
		TargetPickupTime:      in.TargetPickupTime,
		PaymentMode:           in.PaymentMode,
		Status:                models.BookingStatusRequested,
	}
	if err := e.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, asDispatchError(err)
	}
	return &booking, nil
}

// CancelByCustomer cancels a booking that is still waiting for a
// vendor. The terminal notification flag is set here since the rider
// cancelled it themselves and needs no message from the sweep.
func (e *Engine) CancelByCustomer(ctx context.Context, actor models.Actor, bookingID uint) error {
	if actor.Role != models.RoleCustomer {
		return UnauthorizedError{Msg: "only customers can cancel their bookings"}
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.CustomerID != actor.ID {
			return UnauthorizedError{Msg: "booking belongs to another customer"}
		}
		if err := ensureTransition(booking, models.BookingStatusCancelled, "cancel"); err != nil {
			return err
		}
		// A rider cancel is only the requested edge; once a driver is
		// bound, cancellation goes through the emergency path.
		if booking.Status != models.BookingStatusRequested {
			return StateTransitionError{Current: booking.Status, Op: "cancel"}
		}

		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":                  models.BookingStatusCancelled,
				"final_notification_sent": true,
			}).Error; err != nil {
			return err
		}

		return recordAudit(tx, booking.ID, actor, models.BookingStatusRequested, models.BookingStatusCancelled)
	})
	return asDispatchError(err)
}

// AcceptResult reports what the accepting vendor was matched with.
type AcceptResult struct {
	BookingID  uint
	CustomerID uint
	DriverID   uint
	VehicleID  uint
	Fare       float64
}

// Accept claims the booking for a vendor: under the booking lock it
// verifies one available driver and one available vehicle of the
// requested class exist for this vendor, computes the fare, freezes it
// on the booking, and opens the pending payment. The concrete pair is
// bound later by Assign, which re-validates under its own lock.
func (e *Engine) Accept(ctx context.Context, actor models.Actor, bookingID uint) (*AcceptResult, error) {
	if actor.Role != models.RoleVendor {
		return nil, UnauthorizedError{Msg: "only vendors can accept bookings"}
	}

	var result *AcceptResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if err := ensureTransition(booking, models.BookingStatusAccepted, "accept"); err != nil {
			return err
		}
		if booking.VendorID != nil {
			return StateTransitionError{Current: booking.Status, Op: "accept"}
		}

		driver, vehicle, err := claimResources(tx, actor.ID, booking.RequestedVehicleClass)
		if err != nil {
			return err
		}

		fare, err := e.fares.Calculate(booking.RequestedVehicleClass, booking.DistanceKm)
		if err != nil {
			return InternalError{Err: err}
		}

		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":       models.BookingStatusAccepted,
				"vendor_id":    actor.ID,
				"total_amount": fare,
			}).Error; err != nil {
			return err
		}

		if err := ensurePendingPayment(tx, booking.ID, booking.PaymentMode, fare); err != nil {
			return err
		}
		if err := notify(tx, booking.CustomerID, "Your booking has been accepted by a vendor"); err != nil {
			return err
		}
		if err := recordAudit(tx, booking.ID, actor, models.BookingStatusRequested, models.BookingStatusAccepted); err != nil {
			return err
		}

		result = &AcceptResult{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			DriverID:   driver.UserID,
			VehicleID:  vehicle.ID,
			Fare:       fare,
		}
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return result, nil
}

// AssignResult reports the bound pair after a successful assignment.
type AssignResult struct {
	BookingID  uint
	CustomerID uint
	DriverID   uint
	VehicleID  uint
}

// Assign binds the vendor's explicit driver and vehicle choice to an
// accepted booking, marking both unavailable in the same transaction
// as the status flip.
func (e *Engine) Assign(ctx context.Context, actor models.Actor, bookingID, driverUserID, vehicleID uint) (*AssignResult, error) {
	if actor.Role != models.RoleVendor {
		return nil, UnauthorizedError{Msg: "only vendors can assign bookings"}
	}
	if driverUserID == 0 || vehicleID == 0 {
		return nil, InvalidInputError{Msg: "driver and vehicle are required"}
	}

	var result *AssignResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.VendorID == nil || *booking.VendorID != actor.ID {
			return UnauthorizedError{Msg: "booking belongs to another vendor"}
		}
		if err := ensureTransition(booking, models.BookingStatusAssigned, "assign"); err != nil {
			return err
		}

		driver, _, err := bindResources(tx, actor.ID, driverUserID, vehicleID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":     models.BookingStatusAssigned,
				"driver_id":  driverUserID,
				"vehicle_id": vehicleID,
			}).Error; err != nil {
			return err
		}

		if err := notify(tx, driver.UserID, "You have been assigned a new trip. Please start on time."); err != nil {
			return err
		}
		if err := recordAudit(tx, booking.ID, actor, models.BookingStatusAccepted, models.BookingStatusAssigned); err != nil {
			return err
		}

		result = &AssignResult{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			DriverID:   driverUserID,
			VehicleID:  vehicleID,
		}
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return result, nil
}
