package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenleafprop/rentledger/models"
)

func TestStatusEnumsRejectUnknownValues(t *testing.T) {
	assert.True(t, models.UnitVacant.IsValid())
	assert.True(t, models.UnitMaintenanceHold.IsValid())
	assert.False(t, models.UnitStatus("condemned").IsValid())

	assert.True(t, models.TenantActive.IsValid())
	assert.False(t, models.TenantStatus("month_to_month").IsValid())

	assert.True(t, models.PaymentPastDue.IsValid())
	assert.False(t, models.PaymentStatus("refunded").IsValid())

	assert.True(t, models.RequestTenantResponsibility.IsValid())
	assert.False(t, models.RequestStatus("cancelled").IsValid())

	assert.True(t, models.CategoryHVAC.IsValid())
	assert.False(t, models.RequestCategory("landscaping").IsValid())

	assert.True(t, models.ApplicationRecommendedReject.IsValid())
	assert.False(t, models.ApplicationStatus("withdrawn").IsValid())
}

func TestPriorityRankOrdersEmergencyFirst(t *testing.T) {
	assert.Less(t, models.PriorityEmergency.Rank(), models.PriorityHigh.Rank())
	assert.Less(t, models.PriorityHigh.Rank(), models.PriorityNormal.Rank())
	assert.Less(t, models.PriorityNormal.Rank(), models.PriorityLow.Rank())
}

func TestRedactedMasksSensitiveFields(t *testing.T) {
	tenant := models.Tenant{
		FirstName:             "Maria",
		LastName:              "Garcia",
		Phone:                 "+1-512-555-8823",
		EmergencyContactPhone: "+1-512-555-0144",
		Employer:              "H-E-B",
		AnnualIncome:          64000,
		SSNLastFour:           "4821",
	}

	masked := tenant.Redacted(false)
	assert.Equal(t, "****", masked.SSNLastFour)
	assert.Zero(t, masked.AnnualIncome)
	assert.Empty(t, masked.Employer)
	assert.Equal(t, "***-***-8823", masked.Phone)
	assert.Equal(t, "***-***-0144", masked.EmergencyContactPhone)
	// name stays usable for correspondence
	assert.Equal(t, "Maria", masked.FirstName)

	// the stored record is untouched
	assert.Equal(t, "4821", tenant.SSNLastFour)
	assert.Equal(t, 64000.0, tenant.AnnualIncome)
}

func TestRedactedWithConsentReturnsRecordAsStored(t *testing.T) {
	tenant := models.Tenant{SSNLastFour: "4821", AnnualIncome: 64000, Employer: "H-E-B"}
	full := tenant.Redacted(true)
	assert.Equal(t, tenant, full)
}

func TestRegistryListsEveryPersistedModel(t *testing.T) {
	assert.Len(t, models.All(), len(models.ModelTypeRegistry))
	for _, name := range []string{
		"Property", "Unit", "Tenant", "Occupancy", "Payment",
		"MaintenanceRequest", "RentalApplication", "Email", "Event",
	} {
		assert.Contains(t, models.ModelTypeRegistry, name)
	}
}
