package dispatch

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// claimResources picks any one available vehicle of the requested class
// and any one available driver owned by the vendor, both under FOR
// UPDATE so a concurrent accept cannot observe stale availability.
// First match is fine; there is no ranking.
func claimResources(tx *gorm.DB, vendorID uint, class models.VehicleClass) (*models.Driver, *models.Vehicle, error) {
	var vehicle models.Vehicle
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("vendor_id = ? AND vehicle_type = ? AND is_available = ?", vendorID, class, true).
		First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ResourceUnavailableError{Resource: "vehicle", Msg: "no suitable vehicle available"}
		}
		return nil, nil, err
	}

	var driver models.Driver
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("vendor_id = ? AND is_available = ?", vendorID, true).
		First(&driver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ResourceUnavailableError{Resource: "driver", Msg: "no driver available"}
		}
		return nil, nil, err
	}

	return &driver, &vehicle, nil
}

// bindResources re-validates the vendor's explicit driver and vehicle
// choice under lock (time has passed since accept) and marks both
// unavailable. The vehicle locks before the driver, the same order as
// claimResources, so a concurrent accept and assign on the same pair
// cannot deadlock. Ownership mismatch is Unauthorized, not NotAvailable.
func bindResources(tx *gorm.DB, vendorID, driverUserID, vehicleID uint) (*models.Driver, *models.Vehicle, error) {
	var vehicle models.Vehicle
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vehicle, vehicleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NotFoundError{Resource: "vehicle"}
		}
		return nil, nil, err
	}
	if vehicle.VendorID != vendorID {
		return nil, nil, UnauthorizedError{Msg: "vehicle is not owned by this vendor"}
	}
	if !vehicle.IsAvailable {
		return nil, nil, ResourceUnavailableError{Resource: "vehicle", Msg: "vehicle is not available"}
	}

	var driver models.Driver
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", driverUserID).
		First(&driver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NotFoundError{Resource: "driver"}
		}
		return nil, nil, err
	}
	if driver.VendorID != vendorID {
		return nil, nil, UnauthorizedError{Msg: "driver is not owned by this vendor"}
	}
	if !driver.IsAvailable {
		return nil, nil, ResourceUnavailableError{Resource: "driver", Msg: "driver is not available"}
	}

	if err := tx.Model(&models.Driver{}).
		Where("user_id = ?", driverUserID).
		Update("is_available", false).Error; err != nil {
		return nil, nil, err
	}
	if err := tx.Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Update("is_available", false).Error; err != nil {
		return nil, nil, err
	}

	return &driver, &vehicle, nil
}

// releaseResources restores availability for whichever resources are
// bound. Releasing an already-available resource is a no-op, so double
// release is harmless.
func releaseResources(tx *gorm.DB, driverUserID, vehicleID *uint) error {
	if driverUserID != nil {
		if err := tx.Model(&models.Driver{}).
			Where("user_id = ?", *driverUserID).
			Update("is_available", true).Error; err != nil {
			return err
		}
	}
	if vehicleID != nil {
		if err := tx.Model(&models.Vehicle{}).
			Where("id = ?", *vehicleID).
			Update("is_available", true).Error; err != nil {
			return err
		}
	}
	return nil
}
