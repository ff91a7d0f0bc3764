package dispatch

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// StartResult identifies who to push a trip-started event to.
type StartResult struct {
	BookingID  uint
	CustomerID uint
}

// StartTrip moves an assigned booking to started. Online bookings must
// already be paid; cash bookings settle after the trip.
func (e *Engine) StartTrip(ctx context.Context, actor models.Actor, bookingID uint) (*StartResult, error) {
	if actor.Role != models.RoleDriver {
		return nil, UnauthorizedError{Msg: "only drivers can start trips"}
	}

	var result *StartResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.DriverID == nil || *booking.DriverID != actor.ID {
			return UnauthorizedError{Msg: "booking is assigned to another driver"}
		}
		if err := ensureTransition(booking, models.BookingStatusStarted, "start"); err != nil {
			return err
		}

		if booking.PaymentMode == models.PaymentModeOnline {
			var payment models.Payment
			err := tx.Where("booking_id = ?", booking.ID).First(&payment).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err != nil || payment.Status != models.PaymentStatusPaid {
				return InvalidInputError{Msg: "payment not completed"}
			}
		}

		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("status", models.BookingStatusStarted).Error; err != nil {
			return err
		}

		if err := notify(tx, booking.CustomerID, "Your trip has started."); err != nil {
			return err
		}
		if err := recordAudit(tx, booking.ID, actor, models.BookingStatusAssigned, models.BookingStatusStarted); err != nil {
			return err
		}

		result = &StartResult{BookingID: booking.ID, CustomerID: booking.CustomerID}
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return result, nil
}

// EndResult reports the freed pair and how the fare settles.
type EndResult struct {
	BookingID   uint
	CustomerID  uint
	DriverID    uint
	VehicleID   uint
	PaymentMode models.PaymentMode
}

// EndTrip completes a started booking and frees its driver and vehicle
// in the same transaction.
func (e *Engine) EndTrip(ctx context.Context, actor models.Actor, bookingID uint) (*EndResult, error) {
	if actor.Role != models.RoleDriver {
		return nil, UnauthorizedError{Msg: "only drivers can end trips"}
	}

	var result *EndResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.DriverID == nil || *booking.DriverID != actor.ID {
			return UnauthorizedError{Msg: "booking is assigned to another driver"}
		}
		if err := ensureTransition(booking, models.BookingStatusCompleted, "end"); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":       models.BookingStatusCompleted,
				"completed_at": now,
			}).Error; err != nil {
			return err
		}

		if err := releaseResources(tx, booking.DriverID, booking.VehicleID); err != nil {
			return err
		}

		message := "Trip completed successfully."
		if booking.PaymentMode == models.PaymentModeCash {
			message = "Trip completed. Please pay cash to the driver."
		}
		if err := notify(tx, booking.CustomerID, message); err != nil {
			return err
		}
		if err := recordAudit(tx, booking.ID, actor, models.BookingStatusStarted, models.BookingStatusCompleted); err != nil {
			return err
		}

		result = &EndResult{
			BookingID:   booking.ID,
			CustomerID:  booking.CustomerID,
			DriverID:    *booking.DriverID,
			VehicleID:   derefOrZero(booking.VehicleID),
			PaymentMode: booking.PaymentMode,
		}
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return result, nil
}

// EmergencyResult reports what an emergency cancellation freed.
type EmergencyResult struct {
	BookingID  uint
	CustomerID uint
	DriverID   *uint
	VehicleID  *uint
	OldStatus  models.BookingStatus
}

// EmergencyCancel aborts an in-progress booking. Any involved party
// may trigger it; resources are freed and the reason is kept in its
// own record alongside the audit trail.
func (e *Engine) EmergencyCancel(ctx context.Context, actor models.Actor, bookingID uint, reason string) (*EmergencyResult, error) {
	if reason == "" {
		return nil, InvalidInputError{Field: "reason", Msg: "required"}
	}

	var result *EmergencyResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if !involvedParty(booking, actor) {
			return UnauthorizedError{Msg: "not a party to this booking"}
		}
		if err := ensureTransition(booking, models.BookingStatusCancelled, "emergency cancel"); err != nil {
			return err
		}
		// The requested edge to cancelled is the rider's own cancel;
		// emergencies only apply once a driver is bound.
		if booking.Status == models.BookingStatusRequested {
			return StateTransitionError{Current: booking.Status, Op: "emergency cancel"}
		}
		oldStatus := booking.Status

		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":                  models.BookingStatusCancelled,
				"final_notification_sent": true,
			}).Error; err != nil {
			return err
		}

		if err := releaseResources(tx, booking.DriverID, booking.VehicleID); err != nil {
			return err
		}

		if err := tx.Create(&models.EmergencyCancellation{
			BookingID:   booking.ID,
			CancelledBy: actor.ID,
			Role:        actor.Role,
			Reason:      reason,
		}).Error; err != nil {
			return err
		}

		if err := notify(tx, booking.CustomerID, "Booking cancelled due to emergency"); err != nil {
			return err
		}
		if err := recordAudit(tx, booking.ID, actor, oldStatus, models.BookingStatusCancelled); err != nil {
			return err
		}

		result = &EmergencyResult{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			DriverID:   booking.DriverID,
			VehicleID:  booking.VehicleID,
			OldStatus:  oldStatus,
		}
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return result, nil
}

func involvedParty(b *models.Booking, actor models.Actor) bool {
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

func derefOrZero(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}
