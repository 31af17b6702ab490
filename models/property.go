package models

import "gorm.io/gorm"

// Property represents a building in the operator's portfolio
type Property struct {
	gorm.Model
	Name         string
	Address      string
	City         string
	State        string
	Zip          string
	YearBuilt    int
	TotalUnits   int
	ParkingSpots int
	Notes        string
	Units        []Unit `gorm:"foreignKey:PropertyID"`
}
