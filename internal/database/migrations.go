package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	log.Println("Running migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.CustomerProfile{},
		&models.VendorProfile{},
		&models.Driver{},
		&models.Vehicle{},
		&models.Booking{},
		&models.Payment{},
		&models.DriverShift{},
		&models.AuditLog{},
		&models.Notification{},
		&models.EmergencyCancellation{},
	)
	if err != nil {
		return err
	}

	log.Println("Migrations completed")
	return nil
}
