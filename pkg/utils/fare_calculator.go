package utils

import (
	"fmt"
	"math"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// FareRate is the pricing pair for one vehicle class.
type FareRate struct {
	Base  float64 `json:"base"`
	PerKm float64 `json:"perKm"`
}

// FareTable maps vehicle classes to their rates. The table is policy:
// it may be swapped at startup, but a booking's total is computed once
// at acceptance and never recomputed afterwards.
type FareTable map[models.VehicleClass]FareRate

// DefaultFareTable holds the standard rates in INR.
func DefaultFareTable() FareTable {
	return FareTable{
		models.VehicleClassMini:   {Base: 50, PerKm: 10},
		models.VehicleClassSedan:  {Base: 70, PerKm: 14},
		models.VehicleClassSUV:    {Base: 90, PerKm: 18},
		models.VehicleClassLuxury: {Base: 150, PerKm: 25},
	}
}

// Calculate returns base + distance * perKm for the class, rounded to
// 2 decimal places. Same inputs always produce the same amount.
func (t FareTable) Calculate(class models.VehicleClass, distanceKm float64) (float64, error) {
	rate, ok := t[class]
	if !ok {
		return 0, fmt.Errorf("no fare rate for vehicle class %q", class)
	}
	if distanceKm <= 0 {
		return 0, fmt.Errorf("distance must be positive, got %v", distanceKm)
	}

	total := rate.Base + distanceKm*rate.PerKm
	return math.Round(total*100) / 100, nil
}
