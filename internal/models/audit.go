package models

import (
	"gorm.io/gorm"
)

// AuditLog is an immutable record of one booking status transition.
// Rows are appended in the same transaction as the transition and are
// never updated or deleted.
type AuditLog struct {
	gorm.Model
	BookingID uint          `json:"bookingId" gorm:"not null;index"`
	ChangedBy uint          `json:"changedBy" gorm:"not null"`
	Role      Role          `json:"role" gorm:"not null"`
	OldStatus BookingStatus `json:"oldStatus" gorm:"not null"`
	NewStatus BookingStatus `json:"newStatus" gorm:"not null"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Notification is an append-only message for a user, written in the
// same transaction as the state change that triggered it.
type Notification struct {
	gorm.Model
	UserID  uint   `json:"userId" gorm:"not null;index"`
	Message string `json:"message" gorm:"not null"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}

// EmergencyCancellation records who aborted an in-flight trip and why.
type EmergencyCancellation struct {
	gorm.Model
	BookingID   uint   `json:"bookingId" gorm:"not null;index"`
	CancelledBy uint   `json:"cancelledBy" gorm:"not null"`
	Role        Role   `json:"role" gorm:"not null"`
	Reason      string `json:"reason" gorm:"not null"`
}

// TableName specifies the table name
func (EmergencyCancellation) TableName() string {
	return "emergency_cancellations"
}
