// Package tenancy keeps the ledger of tenants, their unit assignments,
// lease terms, and the occupancy history behind them.
package tenancy

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/outbox"
	"github.com/greenleafprop/rentledger/store"
)

// Config holds the move-out policy. The zero value clears the unit
// reference on move-out; occupancy history records the interval either way.
type Config struct {
	RetainUnitOnMoveOut bool
}

// Lease is the view of a tenant's active lease terms.
type Lease struct {
	TenantID        uint
	UnitID          *uint
	Start           time.Time
	End             time.Time
	RentAmount      float64
	SecurityDeposit float64
}

// Ledger enforces the tenancy rules: valid lease terms on intake and a
// single active tenant per unit at assignment time.
type Ledger struct {
	db  *gorm.DB
	cfg Config
}

func New(db *gorm.DB, cfg Config) *Ledger {
	return &Ledger{db: db, cfg: cfg}
}

func validateLease(t *models.Tenant) error {
	if t.Email == "" {
		return models.ErrValidation("tenant", "email", "", "email is required")
	}
	if !t.LeaseStart.Before(t.LeaseEnd) {
		return models.ErrValidation("tenant", "lease_start", t.LeaseStart.Format("2006-01-02"),
			"lease start must precede lease end")
	}
	if t.RentAmount <= 0 {
		return models.ErrValidation("tenant", "rent_amount", fmt.Sprint(t.RentAmount), "must be positive")
	}
	if t.SecurityDeposit < 0 {
		return models.ErrValidation("tenant", "security_deposit", fmt.Sprint(t.SecurityDeposit), "must not be negative")
	}
	return nil
}

// Create stores a new tenant tied to a lease. A tenant created with a unit
// reference and active status goes through the same occupancy checks as an
// explicit assignment.
func (l *Ledger) Create(t *models.Tenant) error {
	if err := validateLease(t); err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = models.TenantPending
	}
	if !t.Status.IsValid() {
		return models.ErrValidation("tenant", "status", string(t.Status), "unknown tenant status")
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tenant{}).Where("email = ?", t.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.ErrConflict("tenant", 0, "email", t.Email, "email already registered")
		}

		if t.UnitID != nil && t.Status == models.TenantActive {
			if err := checkUnitFree(tx, *t.UnitID, 0); err != nil {
				return err
			}
			if err := tx.Create(t).Error; err != nil {
				return err
			}
			return openOccupancy(tx, *t.UnitID, t.ID, t.LeaseStart)
		}
		return tx.Create(t).Error
	})
}

func checkUnitFree(tx *gorm.DB, unitID, exceptTenant uint) error {
	var unit models.Unit
	if err := tx.First(&unit, unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound("unit", unitID)
		}
		return err
	}
	var count int64
	err := tx.Model(&models.Tenant{}).
		Where("unit_id = ? AND status = ? AND id <> ?", unitID, models.TenantActive, exceptTenant).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return models.ErrConflict("unit", unitID, "occupant", "", "unit already has an active tenant")
	}
	return nil
}

func openOccupancy(tx *gorm.DB, unitID, tenantID uint, start time.Time) error {
	occ := models.Occupancy{UnitID: unitID, TenantID: tenantID, StartDate: start}
	if err := tx.Create(&occ).Error; err != nil {
		return err
	}
	return tx.Model(&models.Unit{}).Where("id = ?", unitID).
		Update("status", models.UnitOccupied).Error
}

// AssignUnit moves a tenant into a unit, opening an occupancy interval. The
// unit must exist and must not already have an active tenant; there is no
// silent override.
func (l *Ledger) AssignUnit(tenantID, unitID uint, start time.Time) error {
	t, err := l.Tenant(tenantID)
	if err != nil {
		return err
	}
	if t.UnitID != nil {
		return models.ErrConflict("tenant", tenantID, "unit_id", fmt.Sprint(*t.UnitID),
			"tenant already assigned to a unit, move out first")
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		if err := checkUnitFree(tx, unitID, tenantID); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"unit_id": unitID,
			"status":  models.TenantActive,
		}
		if err := store.Apply(tx, &models.Tenant{}, "tenant", t.ID, t.Version, updates); err != nil {
			return err
		}
		if err := openOccupancy(tx, unitID, t.ID, start); err != nil {
			return err
		}
		return outbox.Append(tx, "tenant", t.ID, "assigned", map[string]interface{}{
			"unit_id": unitID,
			"start":   start.Format("2006-01-02"),
		})
	})
}

// MoveOut ends a tenant's occupancy: the open interval is closed, the
// tenant becomes former, and the unit reverts to vacant. The unit reference
// on the tenant row is cleared or retained per the configured policy.
func (l *Ledger) MoveOut(tenantID uint, date time.Time) error {
	t, err := l.Tenant(tenantID)
	if err != nil {
		return err
	}
	if t.Status != models.TenantActive {
		return models.ErrInvalidTransition("tenant", tenantID, string(t.Status), string(models.TenantFormer))
	}
	if t.UnitID == nil {
		return models.ErrValidation("tenant", "unit_id", "", "tenant has no unit to move out of")
	}
	unitID := *t.UnitID

	return l.db.Transaction(func(tx *gorm.DB) error {
		var occ models.Occupancy
		err := tx.Where("unit_id = ? AND tenant_id = ? AND end_date IS NULL", unitID, tenantID).
			Order("start_date DESC").First(&occ).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			if date.Before(occ.StartDate) {
				return models.ErrValidation("occupancy", "end_date", date.Format("2006-01-02"),
					"move-out date precedes move-in date")
			}
			if err := tx.Model(&occ).Update("end_date", date).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": models.TenantFormer}
		if !l.cfg.RetainUnitOnMoveOut {
			updates["unit_id"] = nil
		}
		if err := store.Apply(tx, &models.Tenant{}, "tenant", t.ID, t.Version, updates); err != nil {
			return err
		}
		if err := tx.Model(&models.Unit{}).Where("id = ?", unitID).
			Update("status", models.UnitVacant).Error; err != nil {
			return err
		}
		return outbox.Append(tx, "tenant", t.ID, "moved_out", map[string]interface{}{
			"unit_id": unitID,
			"date":    date.Format("2006-01-02"),
		})
	})
}

// CurrentOccupant returns the active tenant of a unit, or nil when vacant.
func (l *Ledger) CurrentOccupant(unitID uint) (*models.Tenant, error) {
	var unit models.Unit
	if err := l.db.First(&unit, unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound("unit", unitID)
		}
		return nil, err
	}
	var t models.Tenant
	err := l.db.Where("unit_id = ? AND status = ?", unitID, models.TenantActive).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ActiveLease returns the lease terms of an active tenant.
func (l *Ledger) ActiveLease(tenantID uint) (*Lease, error) {
	t, err := l.Tenant(tenantID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TenantActive {
		return nil, &models.Error{Kind: models.KindNotFound, Entity: "lease", ID: tenantID,
			Msg: "tenant has no active lease"}
	}
	return &Lease{
		TenantID:        t.ID,
		UnitID:          t.UnitID,
		Start:           t.LeaseStart,
		End:             t.LeaseEnd,
		RentAmount:      t.RentAmount,
		SecurityDeposit: t.SecurityDeposit,
	}, nil
}

// History lists every occupancy interval recorded against a unit.
func (l *Ledger) History(unitID uint) ([]models.Occupancy, error) {
	var spans []models.Occupancy
	err := l.db.Where("unit_id = ?", unitID).Order("start_date").Find(&spans).Error
	return spans, err
}

// Tenant fetches one tenant with the occupied unit preloaded.
func (l *Ledger) Tenant(id uint) (*models.Tenant, error) {
	var t models.Tenant
	err := l.db.Preload("Unit").First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound("tenant", id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TenantByEmail fetches one tenant by their unique email.
func (l *Ledger) TenantByEmail(email string) (*models.Tenant, error) {
	var t models.Tenant
	err := l.db.Preload("Unit").Where("email = ?", email).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.Error{Kind: models.KindNotFound, Entity: "tenant",
			Field: "email", Value: email, Msg: "no such record"}
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
