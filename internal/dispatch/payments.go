package dispatch

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// ensurePendingPayment opens the payment record for a booking. The
// unique index on booking_id plus ON CONFLICT DO NOTHING makes it safe
// to call again without disturbing an existing record.
func ensurePendingPayment(tx *gorm.DB, bookingID uint, method models.PaymentMode, amount float64) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "booking_id"}},
		DoNothing: true,
	}).Create(&models.Payment{
		BookingID: bookingID,
		Method:    method,
		Amount:    amount,
		Status:    models.PaymentStatusPending,
	}).Error
}

// markPaid flips the payment to paid under FOR UPDATE. Returns
// already=true when it was paid before this call, so each settlement
// path can decide whether that is an error or an idempotent success.
func markPaid(tx *gorm.DB, bookingID uint) (bool, *models.Payment, error) {
	var payment models.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, NotFoundError{Resource: "payment"}
		}
		return false, nil, err
	}
	if payment.Status == models.PaymentStatusPaid {
		return true, &payment, nil
	}

	if err := tx.Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":   models.PaymentStatusPaid,
			"verified": true,
		}).Error; err != nil {
		return false, nil, err
	}
	payment.Status = models.PaymentStatusPaid
	payment.Verified = true
	return false, &payment, nil
}

// ConfirmCashPayment is the driver acknowledging cash in hand after a
// completed trip. Confirming twice returns AlreadyProcessed. The
// rider's user ID comes back so the caller can push the confirmation.
func (e *Engine) ConfirmCashPayment(ctx context.Context, actor models.Actor, bookingID uint) (uint, error) {
	if actor.Role != models.RoleDriver {
		return 0, UnauthorizedError{Msg: "only drivers can confirm cash payments"}
	}

	var customerID uint
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.DriverID == nil || *booking.DriverID != actor.ID {
			return UnauthorizedError{Msg: "booking is assigned to another driver"}
		}
		if booking.PaymentMode != models.PaymentModeCash {
			return InvalidInputError{Msg: "not a cash payment"}
		}
		if booking.Status != models.BookingStatusCompleted {
			return StateTransitionError{Current: booking.Status, Op: "confirm cash for"}
		}

		already, _, err := markPaid(tx, booking.ID)
		if err != nil {
			return err
		}
		if already {
			return AlreadyProcessedError{Msg: "payment already confirmed"}
		}

		customerID = booking.CustomerID
		return notify(tx, booking.CustomerID, "Cash payment has been confirmed by the driver.")
	})
	if err != nil {
		return 0, asDispatchError(err)
	}
	return customerID, nil
}

// InitiateOnlinePayment validates that the rider may pay now and
// returns the pending payment. The handler layer turns this into a
// provider checkout URL.
func (e *Engine) InitiateOnlinePayment(ctx context.Context, actor models.Actor, bookingID uint) (*models.Payment, error) {
	if actor.Role != models.RoleCustomer {
		return nil, UnauthorizedError{Msg: "only customers can initiate payments"}
	}

	var payment *models.Payment
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.CustomerID != actor.ID {
			return UnauthorizedError{Msg: "booking belongs to another customer"}
		}
		if booking.PaymentMode != models.PaymentModeOnline {
			return InvalidInputError{Msg: "not an online payment"}
		}
		if booking.Status != models.BookingStatusAccepted && booking.Status != models.BookingStatusAssigned {
			return StateTransitionError{Current: booking.Status, Op: "pay for"}
		}
		if booking.TotalAmount == nil {
			return InternalError{Err: errors.New("accepted booking has no fare")}
		}

		if err := ensurePendingPayment(tx, booking.ID, booking.PaymentMode, *booking.TotalAmount); err != nil {
			return err
		}

		var p models.Payment
		if err := tx.Where("booking_id = ?", booking.ID).First(&p).Error; err != nil {
			return err
		}
		if p.Status == models.PaymentStatusPaid {
			return AlreadyProcessedError{Msg: "payment already completed"}
		}
		payment = &p
		return nil
	})
	if err != nil {
		return nil, asDispatchError(err)
	}
	return payment, nil
}

// OnProviderSuccess is the payment provider callback. It carries no
// actor and must be idempotent since providers retry delivery.
func (e *Engine) OnProviderSuccess(ctx context.Context, bookingID uint) (already bool, customerID uint, err error) {
	txErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.PaymentMode != models.PaymentModeOnline {
			return InvalidInputError{Msg: "not an online payment"}
		}
		customerID = booking.CustomerID

		var markErr error
		already, _, markErr = markPaid(tx, booking.ID)
		if markErr != nil {
			return markErr
		}
		if already {
			return nil
		}
		return notify(tx, booking.CustomerID, "Payment successful. You can start the trip now.")
	})
	if txErr != nil {
		return false, 0, asDispatchError(txErr)
	}
	return already, customerID, nil
}

// VerifyOnlinePayment lets the rider force-settle their own online
// payment, covering a lost provider callback.
func (e *Engine) VerifyOnlinePayment(ctx context.Context, actor models.Actor, bookingID uint) (bool, error) {
	if actor.Role != models.RoleCustomer {
		return false, UnauthorizedError{Msg: "only customers can verify payments"}
	}

	var already bool
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.CustomerID != actor.ID {
			return UnauthorizedError{Msg: "booking belongs to another customer"}
		}
		if booking.PaymentMode != models.PaymentModeOnline {
			return InvalidInputError{Msg: "not an online payment"}
		}

		already, _, err = markPaid(tx, booking.ID)
		return err
	})
	if err != nil {
		return false, asDispatchError(err)
	}
	return already, nil
}
