package dispatch

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// hasActiveTrip checks for any assigned or started booking held by the
// driver, locking matches so a concurrent start cannot slip past.
func hasActiveTrip(tx *gorm.DB, driverUserID uint) (bool, error) {
	var bookings []models.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("driver_id = ? AND status IN ?", driverUserID,
			[]models.BookingStatus{models.BookingStatusAssigned, models.BookingStatusStarted}).
		Limit(1).
		Find(&bookings).Error
	if err != nil {
		return false, err
	}
	return len(bookings) > 0, nil
}

// CreateShift registers a working window for the driver. Overlapping
// windows are rejected; the overlap probe locks conflicting rows so
// two concurrent creates cannot both pass.
func (e *Engine) CreateShift(ctx context.Context, actor models.Actor, start, end time.Time) (*models.DriverShift, error) {
	if actor.Role != models.RoleDriver {
		return nil, UnauthorizedError{Msg: "only drivers can create shifts"}
	}
	if start.IsZero() || end.IsZero() {
		return nil, InvalidInputError{Msg: "shift start and end are required"}
	}
	if !start.Before(end) {
		return nil, InvalidInputError{Msg: "shift start must be before shift end"}
	}

	var shift *models.DriverShift
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.DriverShift
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("driver_id = ? AND is_active = ? AND shift_start < ? AND shift_end > ?",
				actor.ID, true, end, start).
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ResourceUnavailableError{Resource: "shift", Msg: "shift overlaps with existing shift"}
		}

		s := models.DriverShift{
			DriverID:   actor.ID,
			ShiftStart: start,
			ShiftEnd:   end,
			IsActive:   true,
		}
		if err := tx.Create(&s).Error; err != nil {
			return err
		}
		shift = &s
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return shift, nil
}

// EndShift closes a shift early. Refused while the driver holds an
// active trip; ending the shift also marks the driver unavailable.
func (e *Engine) EndShift(ctx context.Context, actor models.Actor, shiftID uint) error {
	if actor.Role != models.RoleDriver {
		return UnauthorizedError{Msg: "only drivers can end shifts"}
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := hasActiveTrip(tx, actor.ID)
		if err != nil {
			return err
		}
		if active {
			return ResourceUnavailableError{Resource: "shift", Msg: "cannot end shift during active trip"}
		}

		res := tx.Model(&models.DriverShift{}).
			Where("id = ? AND driver_id = ? AND is_active = ?", shiftID, actor.ID, true).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFoundError{Resource: "shift"}
		}

		return tx.Model(&models.Driver{}).
			Where("user_id = ?", actor.ID).
			Update("is_available", false).Error
	})
	return asDispatchError(err)
}

// SetDriverAvailability flips the driver's availability flag. Going
// available requires a shift covering the current moment; going
// unavailable is refused mid-trip.
func (e *Engine) SetDriverAvailability(ctx context.Context, actor models.Actor, available bool) error {
	if actor.Role != models.RoleDriver {
		return UnauthorizedError{Msg: "only drivers can set their availability"}
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := hasActiveTrip(tx, actor.ID)
		if err != nil {
			return err
		}
		if active {
			return ResourceUnavailableError{Resource: "driver", Msg: "cannot change availability during active trip"}
		}

		if available {
			now := time.Now()
			var shifts []models.DriverShift
			err := tx.Where("driver_id = ? AND is_active = ? AND shift_start <= ? AND shift_end > ?",
				actor.ID, true, now, now).
				Limit(1).
				Find(&shifts).Error
			if err != nil {
				return err
			}
			if len(shifts) == 0 {
				return ResourceUnavailableError{Resource: "shift", Msg: "no active shift covering the current time"}
			}
		}

		res := tx.Model(&models.Driver{}).
			Where("user_id = ?", actor.ID).
			Update("is_available", available)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFoundError{Resource: "driver"}
		}
		return nil
	})
	return asDispatchError(err)
}

// DeactivateExpiredShifts closes every shift whose window has passed
// and pulls the affected drivers off the market. It returns the user
// IDs of those drivers so the caller can drop any cached availability.
func (e *Engine) DeactivateExpiredShifts(ctx context.Context, now time.Time) ([]uint, error) {
	var drivers []uint
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expired []models.DriverShift
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("is_active = ? AND shift_end <= ?", true, now).
			Find(&expired).Error
		if err != nil {
			return err
		}

		for _, shift := range expired {
			if err := tx.Model(&models.DriverShift{}).
				Where("id = ?", shift.ID).
				Update("is_active", false).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Driver{}).
				Where("user_id = ?", shift.DriverID).
				Update("is_available", false).Error; err != nil {
				return err
			}
			drivers = append(drivers, shift.DriverID)
		}
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return drivers, nil
}
