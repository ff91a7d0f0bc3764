package dispatch

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// staleRequestWindow is how close to pickup a booking may sit
// unaccepted before the sweep rejects it.
const staleRequestWindow = time.Hour

// ExpireStaleRequests rejects requested bookings whose pickup time is
// less than an hour away. SKIP LOCKED lets overlapping sweep runs and
// in-flight accepts pass each other without blocking; a booking locked
// by a concurrent accept is simply picked up next tick if it is still
// eligible.
func (e *Engine) ExpireStaleRequests(ctx context.Context, now time.Time) (int, error) {
	system := models.Actor{Role: models.RoleSystem}
	cutoff := now.Add(staleRequestWindow)

	var expired int
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []models.Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND target_pickup_time <= ?", models.BookingStatusRequested, cutoff).
			Find(&stale).Error
		if err != nil {
			return err
		}

		for _, booking := range stale {
			if err := tx.Model(&models.Booking{}).
				Where("id = ?", booking.ID).
				Updates(map[string]interface{}{
					"status":                  models.BookingStatusRejected,
					"final_notification_sent": true,
				}).Error; err != nil {
				return err
			}
			if err := notify(tx, booking.CustomerID, "Booking rejected: no vendors were available for your request."); err != nil {
				return err
			}
			if err := recordAudit(tx, booking.ID, system, models.BookingStatusRequested, models.BookingStatusRejected); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, asDispatchError(err)
	}
	return expired, nil
}

// SendFinalNotifications delivers the closing message for cancelled
// bookings whose cancellation path did not notify the rider itself.
func (e *Engine) SendFinalNotifications(ctx context.Context) (int, error) {
	var sent int
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []models.Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND final_notification_sent = ?", models.BookingStatusCancelled, false).
			Find(&pending).Error
		if err != nil {
			return err
		}

		for _, booking := range pending {
			if err := notify(tx, booking.CustomerID, "Your booking has been cancelled."); err != nil {
				return err
			}
			if err := tx.Model(&models.Booking{}).
				Where("id = ?", booking.ID).
				Update("final_notification_sent", true).Error; err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, asDispatchError(err)
	}
	return sent, nil
}
