package maintenance_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/maintenance"
	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/store"
)

var submitted = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	return db
}

func createUnit(t *testing.T, db *gorm.DB) *models.Unit {
	p := models.Property{Name: "Riverside Commons", Address: "2400 Riverside Dr"}
	require.NoError(t, db.FirstOrCreate(&p, models.Property{Name: "Riverside Commons"}).Error)
	var count int64
	require.NoError(t, db.Model(&models.Unit{}).Count(&count).Error)
	u := models.Unit{PropertyID: p.ID, UnitNumber: fmt.Sprintf("10%d", count+1), Status: models.UnitOccupied}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func submitRequest(t *testing.T, e *maintenance.Engine, unitID uint, title string, cost float64) *models.MaintenanceRequest {
	req, err := e.Submit(maintenance.SubmitInput{
		UnitID:        unitID,
		Category:      models.CategoryHandyman,
		Title:         title,
		EstimatedCost: cost,
		SubmittedDate: submitted,
	})
	require.NoError(t, err)
	return req
}

func TestSubmitValidation(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)

	_, err := engine.Submit(maintenance.SubmitInput{UnitID: unit.ID, Category: models.CategoryPlumbing})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	_, err = engine.Submit(maintenance.SubmitInput{UnitID: unit.ID, Category: "masonry", Title: "Crack in wall"})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	_, err = engine.Submit(maintenance.SubmitInput{UnitID: unit.ID, Category: models.CategoryPlumbing,
		Title: "Drip", Priority: "whenever"})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	_, err = engine.Submit(maintenance.SubmitInput{UnitID: unit.ID, Category: models.CategoryPlumbing,
		Title: "Drip", EstimatedCost: -10})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	_, err = engine.Submit(maintenance.SubmitInput{UnitID: 9999, Category: models.CategoryPlumbing, Title: "Drip"})
	assert.True(t, models.IsKind(err, models.KindNotFound))

	nobody := uint(9999)
	_, err = engine.Submit(maintenance.SubmitInput{UnitID: unit.ID, TenantID: &nobody,
		Category: models.CategoryPlumbing, Title: "Drip"})
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestSubmitNumbersRequestsSequentially(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)

	first := submitRequest(t, engine, unit.ID, "Cabinet hinge loose", 60)
	second := submitRequest(t, engine, unit.ID, "Window screen torn", 40)
	third := submitRequest(t, engine, unit.ID, "Closet door off track", 50)

	assert.Equal(t, "MR-2000", first.RequestNumber)
	assert.Equal(t, "MR-2001", second.RequestNumber)
	assert.Equal(t, "MR-2002", third.RequestNumber)
}

func TestSubmitRoutesContractorByCategory(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)

	req, err := engine.Submit(maintenance.SubmitInput{
		UnitID:        unit.ID,
		Category:      models.CategoryPlumbing,
		Title:         "Slow kitchen drain",
		SubmittedDate: submitted,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mike's Plumbing", req.ContractorName)
	assert.Equal(t, "+1-512-555-8821", req.ContractorPhone)
	assert.Equal(t, models.PriorityNormal, req.Priority)
	assert.Equal(t, models.RequestOpen, req.Status)

	// "other" lands on the handyman channel
	req, err = engine.Submit(maintenance.SubmitInput{
		UnitID:        unit.ID,
		Category:      models.CategoryOther,
		Title:         "Mailbox door bent",
		SubmittedDate: submitted,
	})
	require.NoError(t, err)
	assert.Equal(t, "ATX Handyman Services", req.ContractorName)
}

func TestSubmitClassifiesEmergency(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)

	req, err := engine.Submit(maintenance.SubmitInput{
		UnitID:        unit.ID,
		Category:      models.CategoryHVAC,
		Title:         "AC not cooling",
		Description:   "blowing warm air, 96F inside",
		SubmittedDate: submitted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityEmergency, req.Priority)
	assert.Equal(t, models.RequestOpen, req.Status)
	assert.Equal(t, "Austin HVAC Pros", req.ContractorName)
}

func TestSubmitFlagsTenantCauseAtIntake(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)

	req, err := engine.Submit(maintenance.SubmitInput{
		UnitID:        unit.ID,
		Category:      models.CategoryAppliance,
		Title:         "Disposal jammed",
		Description:   "a spoon fell in while running",
		SubmittedDate: submitted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestTenantResponsibility, req.Status)
	assert.Contains(t, req.Notes, "tenant responsibility")
}

func TestSubmitEmergencyOutranksTenantCause(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)

	// hazard text keeps the request on the operator's list even when the
	// occupant plainly caused it
	req, err := engine.Submit(maintenance.SubmitInput{
		UnitID:        unit.ID,
		Category:      models.CategoryElectrical,
		Title:         "Outlet sparking",
		Description:   "guest damage, cord yanked out of the wall",
		SubmittedDate: submitted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityEmergency, req.Priority)
	assert.Equal(t, models.RequestOpen, req.Status)
}

func TestAuthorize(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)
	req := submitRequest(t, engine, unit.ID, "Panel upgrade quote", 1400)

	err := engine.Authorize(req.ID, "")
	assert.True(t, models.IsKind(err, models.KindAuthorizationRequired))

	require.NoError(t, engine.Authorize(req.ID, "m.alvarez"))

	got, err := engine.Request(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "m.alvarez", got.AuthorizedBy)
	assert.NotNil(t, got.AuthorizedAt)
}

func TestScheduleGatesOnEstimatedCost(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)
	when := submitted.AddDate(0, 0, 3)

	// at the gate exactly: no sign-off needed
	atGate := submitRequest(t, engine, unit.ID, "Fence section replacement", 500)
	assert.NoError(t, engine.Schedule(atGate.ID, when))

	over := submitRequest(t, engine, unit.ID, "Panel upgrade quote", 1400)
	err := engine.Schedule(over.ID, when)
	assert.True(t, models.IsKind(err, models.KindAuthorizationRequired))

	require.NoError(t, engine.Authorize(over.ID, "m.alvarez"))
	assert.NoError(t, engine.Schedule(over.ID, when))

	got, err := engine.Request(over.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestScheduled, got.Status)
	require.NotNil(t, got.ScheduledDate)
}

func TestScheduleHonorsConfiguredGate(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{CostGate: 1000})
	unit := createUnit(t, db)

	req := submitRequest(t, engine, unit.ID, "Ceiling stain repair", 850)
	assert.NoError(t, engine.Schedule(req.ID, submitted.AddDate(0, 0, 3)))
}

func TestScheduleValidation(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)
	req := submitRequest(t, engine, unit.ID, "Cabinet hinge loose", 60)

	err := engine.Schedule(req.ID, time.Time{})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	require.NoError(t, engine.Schedule(req.ID, submitted.AddDate(0, 0, 3)))

	// already booked
	err = engine.Schedule(req.ID, submitted.AddDate(0, 0, 5))
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
}

func TestLifecycleOpenToCompleted(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)
	req := submitRequest(t, engine, unit.ID, "Water heater element", 320)

	// open requests cannot start or complete directly
	err := engine.Start(req.ID)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
	err = engine.Complete(req.ID, submitted.AddDate(0, 0, 5), 300)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))

	require.NoError(t, engine.Schedule(req.ID, submitted.AddDate(0, 0, 3)))
	require.NoError(t, engine.Start(req.ID))

	// completion needs a sane date and cost
	err = engine.Complete(req.ID, time.Time{}, 300)
	assert.True(t, models.IsKind(err, models.KindValidationError))
	err = engine.Complete(req.ID, submitted.AddDate(0, 0, -2), 300)
	assert.True(t, models.IsKind(err, models.KindValidationError))
	err = engine.Complete(req.ID, submitted.AddDate(0, 0, 5), -1)
	assert.True(t, models.IsKind(err, models.KindValidationError))

	require.NoError(t, engine.Complete(req.ID, submitted.AddDate(0, 0, 5), 287.50))

	got, err := engine.Request(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, got.Status)
	assert.Equal(t, 287.50, got.ActualCost)
	require.NotNil(t, got.CompletedDate)

	var actions []string
	require.NoError(t, db.Model(&models.Event{}).
		Where("entity_type = ?", "maintenance_request").
		Order("id").Pluck("action", &actions).Error)
	assert.Equal(t, []string{"submitted", "scheduled", "started", "completed"}, actions)
}

func TestMarkTenantResponsibility(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)
	req := submitRequest(t, engine, unit.ID, "Scuffed hallway wall", 80)

	require.NoError(t, engine.MarkTenantResponsibility(req.ID, "movers dented the drywall"))

	got, err := engine.Request(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestTenantResponsibility, got.Status)
	assert.Contains(t, got.Notes, "movers dented the drywall")

	err = engine.MarkTenantResponsibility(req.ID, "again")
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
}

func TestWorklistOrdersByPriorityThenAge(t *testing.T) {
	db := setupTestDB(t)
	engine := maintenance.New(db, maintenance.Policy{})
	unit := createUnit(t, db)

	older := submitted.AddDate(0, 0, -10)
	requests := []maintenance.SubmitInput{
		{UnitID: unit.ID, Category: models.CategoryHandyman, Title: "Squeaky door", SubmittedDate: submitted},
		{UnitID: unit.ID, Category: models.CategoryPlumbing, Title: "Burst pipe in wall", SubmittedDate: submitted},
		{UnitID: unit.ID, Category: models.CategoryAppliance, Title: "Fridge barely cold", Priority: models.PriorityHigh, SubmittedDate: submitted},
		{UnitID: unit.ID, Category: models.CategoryHandyman, Title: "Gate latch sticking", SubmittedDate: older},
	}
	for _, in := range requests {
		_, err := engine.Submit(in)
		require.NoError(t, err)
	}

	// settle one so it drops off the list
	done := submitRequest(t, engine, unit.ID, "Filter swap visit", 45)
	require.NoError(t, engine.Schedule(done.ID, submitted.AddDate(0, 0, 1)))
	require.NoError(t, engine.Start(done.ID))
	require.NoError(t, engine.Complete(done.ID, submitted.AddDate(0, 0, 2), 45))

	list, err := engine.Worklist()
	assert.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "Burst pipe in wall", list[0].Title)
	assert.Equal(t, "Fridge barely cold", list[1].Title)
	assert.Equal(t, "Gate latch sticking", list[2].Title)
	assert.Equal(t, "Squeaky door", list[3].Title)
}

func TestRequestNotFound(t *testing.T) {
	engine := maintenance.New(setupTestDB(t), maintenance.Policy{})
	_, err := engine.Request(9999)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}
