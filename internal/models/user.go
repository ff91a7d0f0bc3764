package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role identifies which side of a booking an actor acts for. Every
// dispatch operation takes the role explicitly instead of re-deriving
// it from ambient request state.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleDriver   Role = "driver"
	// RoleSystem is used by the scheduled sweeps when they transition
	// bookings without a human actor.
	RoleSystem Role = "system"
)

// ValidSignupRole reports whether a role may be chosen at registration.
func ValidSignupRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleDriver:
		return true
	}
	return false
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uint
	Role Role
}

type User struct {
	gorm.Model
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	Password     string `json:"-" gorm:"-:all"` // transient, never persisted
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Role         Role   `json:"role" gorm:"column:role;not null"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// CustomerProfile holds rider-side contact details.
type CustomerProfile struct {
	gorm.Model
	UserID      uint   `json:"userId" gorm:"not null;uniqueIndex"`
	FullName    string `json:"fullName" gorm:"not null"`
	PhoneNumber string `json:"phoneNumber"`
}

// TableName specifies the table name
func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

// VendorProfile holds fleet-operator contact details.
type VendorProfile struct {
	gorm.Model
	UserID        uint   `json:"userId" gorm:"not null;uniqueIndex"`
	VendorName    string `json:"vendorName" gorm:"not null"`
	ContactNumber string `json:"contactNumber"`
}

// TableName specifies the table name
func (VendorProfile) TableName() string {
	return "vendor_profiles"
}
