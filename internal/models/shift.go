package models

import (
	"time"

	"gorm.io/gorm"
)

// DriverShift is a driver's declared on-duty window. Shifts for one
// driver never overlap on [start,end); a driver may only go available
// while an active shift covers the current time.
type DriverShift struct {
	gorm.Model
	DriverID   uint      `json:"driverId" gorm:"not null;index"`
	ShiftStart time.Time `json:"shiftStart" gorm:"not null"`
	ShiftEnd   time.Time `json:"shiftEnd" gorm:"not null"`
	IsActive   bool      `json:"isActive" gorm:"not null;default:true"`
}

// TableName specifies the table name
func (DriverShift) TableName() string {
	return "driver_shifts"
}

// Covers reports whether the shift window contains the given instant.
func (s DriverShift) Covers(now time.Time) bool {
	return s.IsActive && !now.Before(s.ShiftStart) && now.Before(s.ShiftEnd)
}
