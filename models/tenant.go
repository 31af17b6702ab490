package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// TenantStatus is the lifecycle state of a tenant record.
type TenantStatus string

const (
	TenantActive  TenantStatus = "active"
	TenantFormer  TenantStatus = "former"
	TenantPending TenantStatus = "pending"
)

// IsValid reports whether s is one of the known tenant statuses.
func (s TenantStatus) IsValid() bool {
	switch s {
	case TenantActive, TenantFormer, TenantPending:
		return true
	}
	return false
}

// Tenant represents a leaseholder, current or historical
type Tenant struct {
	gorm.Model
	Versioned
	FirstName             string
	LastName              string
	Email                 string `gorm:"uniqueIndex"`
	Phone                 string
	UnitID                *uint
	Unit                  *Unit `gorm:"foreignKey:UnitID"`
	LeaseStart            time.Time
	LeaseEnd              time.Time
	RentAmount            float64 `gorm:"type:decimal(10,2)"`
	SecurityDeposit       float64 `gorm:"type:decimal(10,2)"`
	Status                TenantStatus
	EmergencyContactName  string
	EmergencyContactPhone string
	Employer              string
	AnnualIncome          float64 `gorm:"type:decimal(12,2)"`
	SSNLastFour           string
	Notes                 string
}

// Redacted returns a copy safe to disclose to parties other than the
// operator. With consent the record is returned as stored; without it the
// identifier last-four, income, employer and phone are masked.
func (t Tenant) Redacted(consent bool) Tenant {
	if consent {
		return t
	}
	c := t
	c.SSNLastFour = "****"
	c.AnnualIncome = 0
	c.Employer = ""
	c.Phone = maskPhone(t.Phone)
	c.EmergencyContactPhone = maskPhone(t.EmergencyContactPhone)
	return c
}

func maskPhone(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) < 4 {
		return strings.Repeat("*", len(digits))
	}
	return "***-***-" + string(digits[len(digits)-4:])
}
