package maintenance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleafprop/rentledger/maintenance"
	"github.com/greenleafprop/rentledger/models"
)

func TestRouteContractorCoversEveryCategory(t *testing.T) {
	categories := []models.RequestCategory{
		models.CategoryPlumbing, models.CategoryHVAC, models.CategoryElectrical,
		models.CategoryPest, models.CategoryAppliance, models.CategoryHandyman,
		models.CategoryRoofing, models.CategoryCleaning, models.CategoryOther,
	}
	for _, category := range categories {
		c, err := maintenance.RouteContractor(category)
		require.NoError(t, err, string(category))
		assert.NotEmpty(t, c.Name, string(category))
		assert.NotEmpty(t, c.Phone, string(category))
	}
}

func TestRouteContractorSendsOtherToHandyman(t *testing.T) {
	other, err := maintenance.RouteContractor(models.CategoryOther)
	require.NoError(t, err)
	handyman, err := maintenance.RouteContractor(models.CategoryHandyman)
	require.NoError(t, err)
	assert.Equal(t, handyman, other)
}

func TestRouteContractorRejectsUnknownCategory(t *testing.T) {
	_, err := maintenance.RouteContractor("masonry")
	assert.True(t, models.IsKind(err, models.KindValidationError))
}

func TestClassifyPriorityUpgradesHazards(t *testing.T) {
	cases := []struct {
		title string
		desc  string
	}{
		{"AC not cooling", "unit blows warm air since yesterday"},
		{"Water leak under kitchen sink", ""},
		{"Outlet issue", "outlet is SPARKING when anything is plugged in"},
		{"No heat in bedroom", ""},
		{"Locked out", "keys inside, door shut behind me"},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			got := maintenance.ClassifyPriority(models.PriorityNormal, tc.title, tc.desc)
			assert.Equal(t, models.PriorityEmergency, got)
		})
	}
}

func TestClassifyPriorityKeepsRequestedOtherwise(t *testing.T) {
	got := maintenance.ClassifyPriority(models.PriorityNormal, "Squeaky cabinet door", "hinge needs oil")
	assert.Equal(t, models.PriorityNormal, got)

	got = maintenance.ClassifyPriority(models.PriorityHigh, "Dishwasher door latch", "will not close")
	assert.Equal(t, models.PriorityHigh, got)

	// never downgrades what the reporter asked for
	got = maintenance.ClassifyPriority(models.PriorityEmergency, "Please come quickly", "")
	assert.Equal(t, models.PriorityEmergency, got)
}

func TestClassifyResponsibility(t *testing.T) {
	assert.True(t, maintenance.ClassifyResponsibility("Lost keys", "need a replacement set"))
	assert.True(t, maintenance.ClassifyResponsibility("Bathroom drain", "shower drain clogged with hair"))
	assert.True(t, maintenance.ClassifyResponsibility("Light bulb out in hallway", ""))
	assert.True(t, maintenance.ClassifyResponsibility("Disposal jammed", "a spoon fell in"))

	assert.False(t, maintenance.ClassifyResponsibility("Roof shingle loose", "noticed after the storm"))
	assert.False(t, maintenance.ClassifyResponsibility("Water heater pilot light", "out again"))
}
