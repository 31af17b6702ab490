package payments_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/payments"
	"github.com/greenleafprop/rentledger/store"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	return db
}

// seedOccupant creates a property, a unit, and an active tenant living in it
// on a calendar-2024 lease.
func seedOccupant(t *testing.T, db *gorm.DB, email, unitNumber string, rent float64) (*models.Tenant, *models.Unit) {
	p := models.Property{Name: "Riverside Commons", Address: "2400 Riverside Dr"}
	require.NoError(t, db.FirstOrCreate(&p, models.Property{Name: "Riverside Commons"}).Error)
	u := models.Unit{PropertyID: p.ID, UnitNumber: unitNumber, RentAmount: rent, Status: models.UnitOccupied}
	require.NoError(t, db.Create(&u).Error)
	tn := models.Tenant{
		FirstName:  "Dana",
		LastName:   "Whitfield",
		Email:      email,
		UnitID:     &u.ID,
		LeaseStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LeaseEnd:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		RentAmount: rent,
		Status:     models.TenantActive,
	}
	require.NoError(t, db.Create(&tn).Error)
	return &tn, &u
}

func countEvents(t *testing.T, db *gorm.DB, action string) int64 {
	var n int64
	require.NoError(t, db.Model(&models.Event{}).
		Where("entity_type = ? AND action = ?", "payment", action).Count(&n).Error)
	return n
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, unit := seedOccupant(t, db, "dana@example.com", "101", 1200)
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	err := engine.Create(&models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 0, DueDate: due})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	err = engine.Create(&models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	// paid on entry needs its proof
	err = engine.Create(&models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200, DueDate: due,
		Status: models.PaymentPaid})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	err = engine.Create(&models.Payment{TenantID: 9999, UnitID: unit.ID, Amount: 1200, DueDate: due})
	assert.True(t, models.IsKind(err, models.KindNotFound))

	err = engine.Create(&models.Payment{TenantID: tenant.ID, UnitID: 9999, Amount: 1200, DueDate: due})
	assert.True(t, models.IsKind(err, models.KindNotFound))

	p := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200, DueDate: due}
	assert.NoError(t, engine.Create(p))
	assert.Equal(t, models.PaymentPending, p.Status)
}

func TestGenerateBillsActiveOccupantsOnce(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	first, _ := seedOccupant(t, db, "dana@example.com", "101", 1200)
	second, _ := seedOccupant(t, db, "jordan@example.com", "102", 1350)

	// a pending applicant with no unit never gets billed
	require.NoError(t, db.Create(&models.Tenant{
		Email: "waiting@example.com", Status: models.TenantPending,
		LeaseStart: first.LeaseStart, LeaseEnd: first.LeaseEnd, RentAmount: 900,
	}).Error)

	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	created, err := engine.Generate(asOf)
	assert.NoError(t, err)
	assert.Equal(t, 2, created)

	var rows []models.Payment
	require.NoError(t, db.Order("tenant_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].TenantID)
	assert.Equal(t, 1200.0, rows[0].Amount)
	assert.True(t, rows[0].DueDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.PaymentPending, rows[0].Status)
	assert.Equal(t, second.ID, rows[1].TenantID)
	assert.Equal(t, 1350.0, rows[1].Amount)

	// a second run for the same month is a no-op
	created, err = engine.Generate(asOf)
	assert.NoError(t, err)
	assert.Zero(t, created)
}

func TestGenerateSkipsLeasesOutsideMonth(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, _ := seedOccupant(t, db, "dana@example.com", "101", 1200)

	// lease ended in 2024; billing a 2025 month finds nobody
	created, err := engine.Generate(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSweepMarksOverdueAndEscalatesFees(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	seedOccupant(t, db, "dana@example.com", "101", 1200)

	_, err := engine.Generate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// two days past due: within grace, but no longer pending
	swept, err := engine.Sweep(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 1, swept)

	var p models.Payment
	require.NoError(t, db.First(&p).Error)
	assert.Equal(t, models.PaymentPastDue, p.Status)
	assert.Equal(t, 0.0, p.LateFee)
	assert.EqualValues(t, 1, countEvents(t, db, "past_due"))

	// same day again: nothing to change
	swept, err = engine.Sweep(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Zero(t, swept)

	// day 10 reaches the standard tier
	swept, err = engine.Sweep(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 1, swept)
	require.NoError(t, db.First(&p, p.ID).Error)
	assert.Equal(t, 75.0, p.LateFee)
	assert.EqualValues(t, 1, countEvents(t, db, "late_fee_escalated"))

	// day 20 reaches the escalated tier
	_, err = engine.Sweep(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	require.NoError(t, db.First(&p, p.ID).Error)
	assert.Equal(t, 150.0, p.LateFee)
}

func TestSweepLeavesFutureAndSettledRowsAlone(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, unit := seedOccupant(t, db, "dana@example.com", "101", 1200)

	future := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200,
		DueDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, engine.Create(future))

	paidDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	settled := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200,
		DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Status: models.PaymentPaid,
		PaidDate: &paidDate, PaymentMethod: "check"}
	require.NoError(t, engine.Create(settled))

	swept, err := engine.Sweep(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Zero(t, swept)
}

func TestLatePaymentSettledWithProof(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	seedOccupant(t, db, "dana@example.com", "101", 1200)

	_, err := engine.Generate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = engine.Sweep(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.First(&p).Error)
	require.Equal(t, models.PaymentPastDue, p.Status)

	// proof of a day-10 zelle payment attaches the standard fee on settle
	err = engine.MarkPaid(p.ID, payments.PaidInput{
		PaidDate:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Method:          "zelle",
		ConfirmationRef: "ZL-48213",
	})
	assert.NoError(t, err)

	got, err := engine.Payment(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.Status)
	assert.Equal(t, 75.0, got.LateFee)
	assert.Equal(t, "zelle", got.PaymentMethod)
	assert.Equal(t, "ZL-48213", got.ConfirmationRef)
	require.NotNil(t, got.PaidDate)
	require.NotNil(t, got.ReceiptID)
	assert.EqualValues(t, 1, countEvents(t, db, "paid"))
}

func TestMarkPaidComputesFeeWithoutSweep(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, unit := seedOccupant(t, db, "dana@example.com", "101", 1200)

	p := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200,
		DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, engine.Create(p))

	// no sweep ever ran, the paid date alone earns the escalated tier
	err := engine.MarkPaid(p.ID, payments.PaidInput{
		PaidDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Method:   "check",
	})
	assert.NoError(t, err)

	got, err := engine.Payment(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.LateFee)
}

func TestMarkPaidKeepsAccruedFeeOnBackdatedProof(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	seedOccupant(t, db, "dana@example.com", "101", 1200)

	_, err := engine.Generate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = engine.Sweep(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.First(&p).Error)
	require.Equal(t, 150.0, p.LateFee)

	// a check dated inside the grace window does not roll the fee back
	err = engine.MarkPaid(p.ID, payments.PaidInput{
		PaidDate:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Method:          "check",
		ConfirmationRef: "CK-1102",
	})
	assert.NoError(t, err)

	got, err := engine.Payment(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.LateFee)
}

func TestMarkPaidGuards(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, unit := seedOccupant(t, db, "dana@example.com", "101", 1200)

	p := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200,
		DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, engine.Create(p))
	paidDate := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	err := engine.MarkPaid(p.ID, payments.PaidInput{Method: "check"})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	err = engine.MarkPaid(p.ID, payments.PaidInput{PaidDate: paidDate})
	assert.True(t, models.IsKind(err, models.KindValidationError))

	require.NoError(t, engine.MarkPaid(p.ID, payments.PaidInput{PaidDate: paidDate, Method: "check"}))

	// already settled
	err = engine.MarkPaid(p.ID, payments.PaidInput{PaidDate: paidDate, Method: "check"})
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
}

func TestMarkPaidPastDueRequiresConfirmationRef(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	seedOccupant(t, db, "dana@example.com", "101", 1200)

	_, err := engine.Generate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = engine.Sweep(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.First(&p).Error)

	err = engine.MarkPaid(p.ID, payments.PaidInput{
		PaidDate: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		Method:   "zelle",
	})
	assert.True(t, models.IsKind(err, models.KindValidationError))
}

func TestWaiveRequiresAuthorizer(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, unit := seedOccupant(t, db, "dana@example.com", "101", 1200)

	p := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200,
		DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, engine.Create(p))

	err := engine.Waive(p.ID, "")
	assert.True(t, models.IsKind(err, models.KindAuthorizationRequired))

	require.NoError(t, engine.Waive(p.ID, "m.alvarez"))

	got, err := engine.Payment(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentWaived, got.Status)
	assert.Contains(t, got.Notes, "waived by m.alvarez")
	assert.EqualValues(t, 1, countEvents(t, db, "waived"))

	err = engine.Waive(p.ID, "m.alvarez")
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
}

func TestWaiveLateFee(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	seedOccupant(t, db, "dana@example.com", "101", 1200)

	_, err := engine.Generate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = engine.Sweep(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var p models.Payment
	require.NoError(t, db.First(&p).Error)
	require.Equal(t, 75.0, p.LateFee)

	err = engine.WaiveLateFee(p.ID, "")
	assert.True(t, models.IsKind(err, models.KindAuthorizationRequired))

	require.NoError(t, engine.WaiveLateFee(p.ID, "m.alvarez"))

	got, err := engine.Payment(p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LateFee)
	assert.Equal(t, models.PaymentPastDue, got.Status)
	assert.EqualValues(t, 1, countEvents(t, db, "late_fee_waived"))

	// already zero: nothing to record
	require.NoError(t, engine.WaiveLateFee(p.ID, "m.alvarez"))
	assert.EqualValues(t, 1, countEvents(t, db, "late_fee_waived"))
}

func TestReverseReopensPaidObligation(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, unit := seedOccupant(t, db, "dana@example.com", "101", 1200)

	p := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200,
		DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, engine.Create(p))

	err := engine.Reverse(p.ID, "m.alvarez")
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))

	require.NoError(t, engine.MarkPaid(p.ID, payments.PaidInput{
		PaidDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Method: "check"}))

	err = engine.Reverse(p.ID, "")
	assert.True(t, models.IsKind(err, models.KindAuthorizationRequired))

	require.NoError(t, engine.Reverse(p.ID, "m.alvarez"))

	got, err := engine.Payment(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)
	assert.Nil(t, got.PaidDate)
	assert.Nil(t, got.ReceiptID)
	assert.Empty(t, got.PaymentMethod)
	assert.Empty(t, got.ConfirmationRef)
	assert.Contains(t, got.Notes, "payment reversed by m.alvarez")
	assert.EqualValues(t, 1, countEvents(t, db, "reversed"))
}

func TestPastDueListsOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	engine := payments.New(db, payments.DefaultPolicy())
	tenant, unit := seedOccupant(t, db, "dana@example.com", "101", 1200)

	for _, month := range []time.Month{time.April, time.February, time.March} {
		p := &models.Payment{TenantID: tenant.ID, UnitID: unit.ID, Amount: 1200,
			DueDate: time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, engine.Create(p))
	}
	_, err := engine.Sweep(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	due, err := engine.PastDue()
	assert.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, time.February, due[0].DueDate.Month())
	assert.Equal(t, time.March, due[1].DueDate.Month())
	assert.Equal(t, time.April, due[2].DueDate.Month())
	require.NotNil(t, due[0].Tenant)
	assert.Equal(t, "dana@example.com", due[0].Tenant.Email)
}
