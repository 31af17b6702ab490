package models

import "gorm.io/gorm"

// UnitStatus is the occupancy state of a unit.
type UnitStatus string

const (
	UnitVacant          UnitStatus = "vacant"
	UnitOccupied        UnitStatus = "occupied"
	UnitMaintenanceHold UnitStatus = "maintenance_hold"
	UnitRenovating      UnitStatus = "renovating"
)

// IsValid reports whether s is one of the known unit statuses.
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitVacant, UnitOccupied, UnitMaintenanceHold, UnitRenovating:
		return true
	}
	return false
}

// Unit represents a rentable unit within a property
type Unit struct {
	gorm.Model
	Versioned
	PropertyID  uint      `gorm:"uniqueIndex:idx_units_property_number"`
	Property    *Property `gorm:"foreignKey:PropertyID"`
	UnitNumber  string    `gorm:"uniqueIndex:idx_units_property_number"`
	Bedrooms    int
	Bathrooms   float64
	Sqft        int
	RentAmount  float64 `gorm:"type:decimal(10,2)"`
	Status      UnitStatus
	PetsAllowed bool
	Notes       string
}
