package models

import (
	"time"

	"gorm.io/gorm"
)

// RequestCategory is the trade a maintenance request belongs to.
type RequestCategory string

const (
	CategoryPlumbing   RequestCategory = "plumbing"
	CategoryHVAC       RequestCategory = "hvac"
	CategoryElectrical RequestCategory = "electrical"
	CategoryPest       RequestCategory = "pest"
	CategoryAppliance  RequestCategory = "appliance"
	CategoryHandyman   RequestCategory = "handyman"
	CategoryRoofing    RequestCategory = "roofing"
	CategoryCleaning   RequestCategory = "cleaning"
	CategoryOther      RequestCategory = "other"
)

// IsValid reports whether c is one of the known request categories.
func (c RequestCategory) IsValid() bool {
	switch c {
	case CategoryPlumbing, CategoryHVAC, CategoryElectrical, CategoryPest,
		CategoryAppliance, CategoryHandyman, CategoryRoofing, CategoryCleaning,
		CategoryOther:
		return true
	}
	return false
}

// RequestPriority orders maintenance work. Emergencies come before everything.
type RequestPriority string

const (
	PriorityEmergency RequestPriority = "emergency"
	PriorityHigh      RequestPriority = "high"
	PriorityNormal    RequestPriority = "normal"
	PriorityLow       RequestPriority = "low"
)

// IsValid reports whether p is one of the known priorities.
func (p RequestPriority) IsValid() bool {
	switch p {
	case PriorityEmergency, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Rank returns the worklist sort position of the priority, lowest first.
func (p RequestPriority) Rank() int {
	switch p {
	case PriorityEmergency:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	default:
		return 3
	}
}

// RequestStatus is the workflow state of a maintenance request.
type RequestStatus string

const (
	RequestOpen                 RequestStatus = "open"
	RequestScheduled            RequestStatus = "scheduled"
	RequestInProgress           RequestStatus = "in_progress"
	RequestCompleted            RequestStatus = "completed"
	RequestTenantResponsibility RequestStatus = "tenant_responsibility"
)

// IsValid reports whether s is one of the known request statuses.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestOpen, RequestScheduled, RequestInProgress, RequestCompleted,
		RequestTenantResponsibility:
		return true
	}
	return false
}

// MaintenanceRequest represents one repair or service request against a unit
type MaintenanceRequest struct {
	gorm.Model
	Versioned
	RequestNumber   string `gorm:"uniqueIndex"`
	UnitID          uint
	Unit            *Unit `gorm:"foreignKey:UnitID"`
	TenantID        *uint
	Tenant          *Tenant `gorm:"foreignKey:TenantID"`
	Category        RequestCategory
	Priority        RequestPriority
	Status          RequestStatus `gorm:"index"`
	Title           string
	Description     string
	SubmittedDate   time.Time
	ScheduledDate   *time.Time
	CompletedDate   *time.Time
	ContractorName  string
	ContractorPhone string
	EstimatedCost   float64 `gorm:"type:decimal(10,2)"`
	ActualCost      float64 `gorm:"type:decimal(10,2)"`
	AuthorizedBy    string
	AuthorizedAt    *time.Time
	Notes           string
}
