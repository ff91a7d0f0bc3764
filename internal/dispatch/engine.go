package dispatch

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
	"github.com/Rohith-2027/cab-booking-backend/pkg/utils"
)

// Engine runs every booking lifecycle operation as one transaction.
// Each operation locks the booking row (and any resource rows it
// touches) before validating, so concurrent transitions on the same
// booking serialize instead of corrupting state. A precondition
// failure rolls the whole transaction back; there are no partial
// writes and no automatic retries.
type Engine struct {
	db    *gorm.DB
	fares utils.FareTable
}

// NewEngine creates a dispatch engine on top of the given database.
func NewEngine(db *gorm.DB, fares utils.FareTable) *Engine {
	if fares == nil {
		fares = utils.DefaultFareTable()
	}
	return &Engine{db: db, fares: fares}
}

// lockBooking reads the booking row under FOR UPDATE. Every status
// validation that follows happens on this locked snapshot.
func lockBooking(tx *gorm.DB, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "booking"}
		}
		return nil, err
	}
	return &booking, nil
}

// ensureTransition validates the edge against the central transition
// table. Operations with a narrower source set than the table allows
// add their own restriction after this check.
func ensureTransition(b *models.Booking, to models.BookingStatus, op string) error {
	if !models.CanTransition(b.Status, to) {
		return StateTransitionError{Current: b.Status, Op: op}
	}
	return nil
}

// recordAudit appends the immutable transition record inside the same
// transaction as the status change.
func recordAudit(tx *gorm.DB, bookingID uint, actor models.Actor, oldStatus, newStatus models.BookingStatus) error {
	return tx.Create(&models.AuditLog{
		BookingID: bookingID,
		ChangedBy: actor.ID,
		Role:      actor.Role,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}).Error
}

// notify appends a notification row inside the same transaction as the
// state change that triggered it, so a crash between the two cannot
// lose the message.
func notify(tx *gorm.DB, userID uint, message string) error {
	return tx.Create(&models.Notification{
		UserID:  userID,
		Message: message,
	}).Error
}
