// Package payments manages rent obligations: monthly generation, the
// pending/past_due/paid/waived state machine, and late-fee accrual.
package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/outbox"
	"github.com/greenleafprop/rentledger/store"
)

// Engine applies the payment state machine. Transitions are atomic and
// serialized per row through the version column.
type Engine struct {
	db     *gorm.DB
	policy Policy
}

func New(db *gorm.DB, policy Policy) *Engine {
	return &Engine{db: db, policy: policy.withDefaults()}
}

// PaidInput is the proof recorded when an obligation is marked paid.
type PaidInput struct {
	PaidDate        time.Time
	Method          string
	ConfirmationRef string
}

// Create stores a manually entered obligation.
func (e *Engine) Create(p *models.Payment) error {
	if p.Amount <= 0 {
		return models.ErrValidation("payment", "amount", fmt.Sprint(p.Amount), "must be positive")
	}
	if p.DueDate.IsZero() {
		return models.ErrValidation("payment", "due_date", "", "due date is required")
	}
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if !p.Status.IsValid() {
		return models.ErrValidation("payment", "status", string(p.Status), "unknown payment status")
	}
	if p.Status == models.PaymentPaid {
		if p.PaidDate == nil {
			return models.ErrValidation("payment", "paid_date", "", "paid status requires a paid date")
		}
		if p.PaymentMethod == "" {
			return models.ErrValidation("payment", "payment_method", "", "paid status requires a method")
		}
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := tx.First(&tenant, p.TenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound("tenant", p.TenantID)
			}
			return err
		}
		var unit models.Unit
		if err := tx.First(&unit, p.UnitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound("unit", p.UnitID)
			}
			return err
		}
		return tx.Create(p).Error
	})
}

// Generate creates the pending obligation for the month containing asOf for
// every active tenant whose lease covers that month. Tenants already billed
// for the month are skipped, so repeated runs are harmless.
func (e *Engine) Generate(asOf time.Time) (int, error) {
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	count := 0
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var tenants []models.Tenant
		err := tx.Where("status = ? AND unit_id IS NOT NULL", models.TenantActive).
			Where("lease_start < ? AND lease_end >= ?", nextMonth, monthStart).
			Find(&tenants).Error
		if err != nil {
			return err
		}
		for _, t := range tenants {
			var existing int64
			err := tx.Model(&models.Payment{}).
				Where("tenant_id = ? AND due_date >= ? AND due_date < ?", t.ID, monthStart, nextMonth).
				Count(&existing).Error
			if err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			p := models.Payment{
				TenantID: t.ID,
				UnitID:   *t.UnitID,
				Amount:   t.RentAmount,
				DueDate:  monthStart,
				Status:   models.PaymentPending,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

// Sweep moves overdue pending obligations to past_due and accrues the fee
// tier each unpaid row has reached as of asOf. Fees only move upward here;
// the authorized waive path is the one way down.
func (e *Engine) Sweep(asOf time.Time) (int, error) {
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	count := 0
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var due []models.Payment
		err := tx.Where("status IN ? AND due_date < ?",
			[]models.PaymentStatus{models.PaymentPending, models.PaymentPastDue}, today).
			Find(&due).Error
		if err != nil {
			return err
		}
		for _, p := range due {
			fee := e.policy.LateFee(p.DueDate, asOf)
			if fee < p.LateFee {
				fee = p.LateFee
			}
			if p.Status == models.PaymentPastDue && fee == p.LateFee {
				continue
			}

			action := "late_fee_escalated"
			if p.Status == models.PaymentPending {
				action = "past_due"
			}
			updates := map[string]interface{}{
				"status":   models.PaymentPastDue,
				"late_fee": fee,
			}
			if err := store.Apply(tx, &models.Payment{}, "payment", p.ID, p.Version, updates); err != nil {
				return err
			}
			err := outbox.Append(tx, "payment", p.ID, action, map[string]interface{}{
				"tenant_id": p.TenantID,
				"due_date":  p.DueDate.Format("2006-01-02"),
				"late_fee":  fee,
			})
			if err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

// MarkPaid records proof of payment and settles the obligation. A past_due
// obligation additionally needs a confirmation reference. The late fee the
// paid date has earned attaches here even if no sweep ran in between.
func (e *Engine) MarkPaid(id uint, in PaidInput) error {
	p, err := e.Payment(id)
	if err != nil {
		return err
	}
	if p.Status != models.PaymentPending && p.Status != models.PaymentPastDue {
		return models.ErrInvalidTransition("payment", id, string(p.Status), string(models.PaymentPaid))
	}
	if in.PaidDate.IsZero() {
		return models.ErrValidation("payment", "paid_date", "", "paid date is required")
	}
	if in.Method == "" {
		return models.ErrValidation("payment", "payment_method", "", "payment method is required")
	}
	if p.Status == models.PaymentPastDue && in.ConfirmationRef == "" {
		return models.ErrValidation("payment", "confirmation_ref", "",
			"past due payment requires a confirmation reference")
	}

	fee := e.policy.LateFee(p.DueDate, in.PaidDate)
	if fee < p.LateFee {
		fee = p.LateFee
	}
	receipt := uuid.New()

	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":           models.PaymentPaid,
			"paid_date":        in.PaidDate,
			"payment_method":   in.Method,
			"confirmation_ref": in.ConfirmationRef,
			"late_fee":         fee,
			"receipt_id":       receipt,
		}
		if err := store.Apply(tx, &models.Payment{}, "payment", p.ID, p.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "payment", p.ID, "paid", map[string]interface{}{
			"tenant_id":  p.TenantID,
			"amount":     p.Amount,
			"late_fee":   fee,
			"paid_date":  in.PaidDate.Format("2006-01-02"),
			"method":     in.Method,
			"receipt_id": receipt.String(),
		})
	})
}

// Waive forgives an obligation entirely. Requires an explicit authorizer.
func (e *Engine) Waive(id uint, authorizedBy string) error {
	if authorizedBy == "" {
		return models.ErrAuthorizationRequired("payment", id, "waive requires an authorizer")
	}
	p, err := e.Payment(id)
	if err != nil {
		return err
	}
	if p.Status == models.PaymentWaived {
		return models.ErrInvalidTransition("payment", id, string(p.Status), string(models.PaymentWaived))
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status": models.PaymentWaived,
			"notes":  appendNote(p.Notes, fmt.Sprintf("waived by %s", authorizedBy)),
		}
		if err := store.Apply(tx, &models.Payment{}, "payment", p.ID, p.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "payment", p.ID, "waived", map[string]interface{}{
			"tenant_id":     p.TenantID,
			"authorized_by": authorizedBy,
		})
	})
}

// WaiveLateFee zeroes the accrued fee without settling the obligation.
// Requires an explicit authorizer; the engine never drops a fee on its own.
func (e *Engine) WaiveLateFee(id uint, authorizedBy string) error {
	if authorizedBy == "" {
		return models.ErrAuthorizationRequired("payment", id, "fee waive requires an authorizer")
	}
	p, err := e.Payment(id)
	if err != nil {
		return err
	}
	if p.LateFee == 0 {
		return nil
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"late_fee": 0.0,
			"notes":    appendNote(p.Notes, fmt.Sprintf("late fee waived by %s", authorizedBy)),
		}
		if err := store.Apply(tx, &models.Payment{}, "payment", p.ID, p.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "payment", p.ID, "late_fee_waived", map[string]interface{}{
			"tenant_id":     p.TenantID,
			"waived_fee":    p.LateFee,
			"authorized_by": authorizedBy,
		})
	})
}

// Reverse reopens a paid obligation, clearing the recorded proof. Requires
// an explicit authorizer.
func (e *Engine) Reverse(id uint, authorizedBy string) error {
	if authorizedBy == "" {
		return models.ErrAuthorizationRequired("payment", id, "reversal requires an authorizer")
	}
	p, err := e.Payment(id)
	if err != nil {
		return err
	}
	if p.Status != models.PaymentPaid {
		return models.ErrInvalidTransition("payment", id, string(p.Status), string(models.PaymentPending))
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":           models.PaymentPending,
			"paid_date":        nil,
			"payment_method":   "",
			"confirmation_ref": "",
			"receipt_id":       nil,
			"notes":            appendNote(p.Notes, fmt.Sprintf("payment reversed by %s", authorizedBy)),
		}
		if err := store.Apply(tx, &models.Payment{}, "payment", p.ID, p.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "payment", p.ID, "reversed", map[string]interface{}{
			"tenant_id":     p.TenantID,
			"authorized_by": authorizedBy,
		})
	})
}

// Payment fetches one obligation with its tenant and unit.
func (e *Engine) Payment(id uint) (*models.Payment, error) {
	var p models.Payment
	err := e.db.Preload("Tenant").Preload("Unit").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound("payment", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PastDue lists unpaid overdue obligations, oldest due date first.
func (e *Engine) PastDue() ([]models.Payment, error) {
	var due []models.Payment
	err := e.db.Preload("Tenant").Preload("Unit").
		Where("status = ?", models.PaymentPastDue).
		Order("due_date").Find(&due).Error
	return due, err
}

// ForTenant lists a tenant's obligations, newest due date first.
func (e *Engine) ForTenant(tenantID uint) ([]models.Payment, error) {
	var all []models.Payment
	err := e.db.Where("tenant_id = ?", tenantID).Order("due_date DESC").Find(&all).Error
	return all, err
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "; " + note
}
