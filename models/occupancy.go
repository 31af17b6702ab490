package models

import (
	"time"

	"gorm.io/gorm"
)

// Occupancy records one interval of a tenant occupying a unit. EndDate is
// nil while the interval is open; at most one open interval exists per unit.
type Occupancy struct {
	gorm.Model
	UnitID    uint    `gorm:"index"`
	Unit      *Unit   `gorm:"foreignKey:UnitID"`
	TenantID  uint    `gorm:"index"`
	Tenant    *Tenant `gorm:"foreignKey:TenantID"`
	StartDate time.Time
	EndDate   *time.Time
}
