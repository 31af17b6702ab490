package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationStatus is the screening state of a rental application.
type ApplicationStatus string

const (
	ApplicationPending            ApplicationStatus = "pending"
	ApplicationRecommendedApprove ApplicationStatus = "recommended_approve"
	ApplicationRecommendedReject  ApplicationStatus = "recommended_reject"
	ApplicationDecided            ApplicationStatus = "decided"
)

// IsValid reports whether s is one of the known application statuses.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationRecommendedApprove,
		ApplicationRecommendedReject, ApplicationDecided:
		return true
	}
	return false
}

// RentalApplication represents a prospective tenant's application for a unit
type RentalApplication struct {
	gorm.Model
	Versioned
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	DesiredUnitID    *uint
	DesiredUnit      *Unit `gorm:"foreignKey:DesiredUnitID"`
	CurrentAddress   string
	Employer         string
	AnnualIncome     float64 `gorm:"type:decimal(12,2)"`
	CreditScore      int
	HasPets          bool
	PetDetails       string
	AssistanceAnimal bool
	MoveInDate       *time.Time
	Status           ApplicationStatus `gorm:"index"`
	SubmittedDate    time.Time
	ScreeningReasons datatypes.JSON
	DecidedBy        string
	Notes            string
}
