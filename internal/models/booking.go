package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "requested"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusAssigned  BookingStatus = "assigned"
	BookingStatusStarted   BookingStatus = "started"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRejected  BookingStatus = "rejected"
)

// bookingTransitions is the single authority on which status edges are
// legal. Operations validate against this table under a row lock; no
// handler re-checks status on its own.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusRequested: {BookingStatusAccepted, BookingStatusCancelled, BookingStatusRejected},
	BookingStatusAccepted:  {BookingStatusAssigned},
	BookingStatusAssigned:  {BookingStatusStarted, BookingStatusCancelled},
	BookingStatusStarted:   {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransition reports whether a booking may move from one status to
// another. Terminal states (completed, cancelled, rejected) have no
// outgoing edges.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(s BookingStatus) bool {
	return len(bookingTransitions[s]) == 0
}

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeOnline PaymentMode = "online"
)

// ValidPaymentMode reports whether the mode is one of the accepted values.
func ValidPaymentMode(m PaymentMode) bool {
	return m == PaymentModeCash || m == PaymentModeOnline
}

// Booking is one ride request and its full lifecycle record. Rows are
// never deleted; terminal bookings remain for history.
type Booking struct {
	gorm.Model
	CustomerID            uint          `json:"customerId" gorm:"not null;index"`
	VendorID              *uint         `json:"vendorId,omitempty"`
	DriverID              *uint         `json:"driverId,omitempty"`
	VehicleID             *uint         `json:"vehicleId,omitempty"`
	PickupLocation        string        `json:"pickupLocation" gorm:"not null"`
	DropLocation          string        `json:"dropLocation" gorm:"not null"`
	RequestedVehicleClass VehicleClass  `json:"requestedVehicleClass" gorm:"column:requested_vehicle_class;not null"`
	DistanceKm            float64       `json:"distanceKm" gorm:"column:distance_km;not null"`
	TargetPickupTime      time.Time     `json:"targetPickupTime" gorm:"not null"`
	PaymentMode           PaymentMode   `json:"paymentMode" gorm:"not null"`
	Status                BookingStatus `json:"status" gorm:"not null;default:'requested';index"`
	TotalAmount           *float64      `json:"totalAmount,omitempty"`
	CompletedAt           *time.Time    `json:"completedAt,omitempty"`
	FinalNotificationSent bool          `json:"-" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
