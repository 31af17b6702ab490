package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus is the collection state of a rent obligation.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPastDue PaymentStatus = "past_due"
	PaymentWaived  PaymentStatus = "waived"
)

// IsValid reports whether s is one of the known payment statuses.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentPastDue, PaymentWaived:
		return true
	}
	return false
}

// Payment represents one monthly rent obligation for a tenant. The unit
// reference is the unit occupied when the obligation was created and is
// retained across moves.
type Payment struct {
	gorm.Model
	Versioned
	TenantID        uint
	Tenant          *Tenant `gorm:"foreignKey:TenantID"`
	UnitID          uint
	Unit            *Unit   `gorm:"foreignKey:UnitID"`
	Amount          float64 `gorm:"type:decimal(10,2)"`
	DueDate         time.Time
	PaidDate        *time.Time
	Status          PaymentStatus `gorm:"index"`
	PaymentMethod   string
	ConfirmationRef string
	ReceiptID       *uuid.UUID `gorm:"type:uuid"`
	LateFee         float64    `gorm:"type:decimal(10,2);default:0"`
	Notes           string
}
