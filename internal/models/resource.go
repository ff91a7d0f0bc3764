package models

import (
	"gorm.io/gorm"
)

type VehicleClass string

const (
	VehicleClassMini   VehicleClass = "mini"
	VehicleClassSedan  VehicleClass = "sedan"
	VehicleClassSUV    VehicleClass = "suv"
	VehicleClassLuxury VehicleClass = "luxury"
)

// ValidVehicleClass reports whether the class is one of the accepted values.
func ValidVehicleClass(c VehicleClass) bool {
	switch c {
	case VehicleClassMini, VehicleClassSedan, VehicleClassSUV, VehicleClassLuxury:
		return true
	}
	return false
}

// Driver is a vendor-owned allocation unit. UserID links the driver to
// the users table; IsAvailable is the only field the dispatch engine
// mutates, always under a row lock.
type Driver struct {
	gorm.Model
	UserID        uint   `json:"userId" gorm:"not null;uniqueIndex"`
	VendorID      uint   `json:"vendorId" gorm:"not null;index"`
	DriverName    string `json:"driverName" gorm:"not null"`
	PhoneNumber   string `json:"phoneNumber"`
	LicenseNumber string `json:"licenseNumber"`
	IsAvailable   bool   `json:"isAvailable" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (Driver) TableName() string {
	return "drivers"
}

// Vehicle is a vendor-owned allocation unit of a given class.
type Vehicle struct {
	gorm.Model
	VendorID    uint         `json:"vendorId" gorm:"not null;index"`
	VehicleType VehicleClass `json:"vehicleType" gorm:"not null"`
	PlateNumber string       `json:"plateNumber" gorm:"not null;unique"`
	IsAvailable bool         `json:"isAvailable" gorm:"not null;default:true"`
}

// TableName specifies the table name
func (Vehicle) TableName() string {
	return "vehicles"
}
