package models

import (
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment is the one-to-one settlement record for a booking. The unique
// index on BookingID backs the idempotent insert; status only ever moves
// pending -> paid.
type Payment struct {
	gorm.Model
	BookingID uint          `json:"bookingId" gorm:"not null;uniqueIndex"`
	Method    PaymentMode   `json:"method" gorm:"not null"`
	Amount    float64       `json:"amount" gorm:"not null"`
	Status    PaymentStatus `json:"status" gorm:"not null;default:'pending'"`
	Verified  bool          `json:"verified" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}
