// Package maintenance runs the repair workflow: intake with contractor
// routing and priority classification, the cost-authorization gate, and the
// open-to-completed state machine.
package maintenance

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/outbox"
	"github.com/greenleafprop/rentledger/store"
)

const requestNumberBase = 2000

// Policy holds the cost threshold above which scheduling needs a recorded
// authorization. The zero value gates at $500.
type Policy struct {
	CostGate float64
}

func DefaultPolicy() Policy {
	return Policy{CostGate: 500}
}

func (p Policy) withDefaults() Policy {
	if p.CostGate == 0 {
		p.CostGate = DefaultPolicy().CostGate
	}
	return p
}

// Engine applies the maintenance workflow rules.
type Engine struct {
	db     *gorm.DB
	policy Policy
}

func New(db *gorm.DB, policy Policy) *Engine {
	return &Engine{db: db, policy: policy.withDefaults()}
}

// SubmitInput is one inbound repair report.
type SubmitInput struct {
	UnitID        uint
	TenantID      *uint
	Category      models.RequestCategory
	Priority      models.RequestPriority
	Title         string
	Description   string
	EstimatedCost float64
	SubmittedDate time.Time
}

// Submit files a request: it is numbered, routed to its contractor channel,
// priority-classified, and checked for occupant liability. Requests matching
// the tenant-cause list land in tenant_responsibility instead of open.
func (e *Engine) Submit(in SubmitInput) (*models.MaintenanceRequest, error) {
	if in.Title == "" {
		return nil, models.ErrValidation("maintenance_request", "title", "", "title is required")
	}
	if !in.Category.IsValid() {
		return nil, models.ErrValidation("maintenance_request", "category", string(in.Category), "unknown category")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}
	if !in.Priority.IsValid() {
		return nil, models.ErrValidation("maintenance_request", "priority", string(in.Priority), "unknown priority")
	}
	if in.EstimatedCost < 0 {
		return nil, models.ErrValidation("maintenance_request", "estimated_cost", fmt.Sprint(in.EstimatedCost), "must not be negative")
	}
	if in.SubmittedDate.IsZero() {
		in.SubmittedDate = time.Now()
	}

	contractor, err := RouteContractor(in.Category)
	if err != nil {
		return nil, err
	}
	priority := ClassifyPriority(in.Priority, in.Title, in.Description)

	var req *models.MaintenanceRequest
	err = e.db.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.First(&unit, in.UnitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound("unit", in.UnitID)
			}
			return err
		}
		if in.TenantID != nil {
			var tenant models.Tenant
			if err := tx.First(&tenant, *in.TenantID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.ErrNotFound("tenant", *in.TenantID)
				}
				return err
			}
		}

		var existing int64
		if err := tx.Model(&models.MaintenanceRequest{}).Count(&existing).Error; err != nil {
			return err
		}

		req = &models.MaintenanceRequest{
			RequestNumber:   fmt.Sprintf("MR-%d", requestNumberBase+existing),
			UnitID:          in.UnitID,
			TenantID:        in.TenantID,
			Category:        in.Category,
			Priority:        priority,
			Status:          models.RequestOpen,
			Title:           in.Title,
			Description:     in.Description,
			SubmittedDate:   in.SubmittedDate,
			ContractorName:  contractor.Name,
			ContractorPhone: contractor.Phone,
			EstimatedCost:   in.EstimatedCost,
		}
		if priority != models.PriorityEmergency && ClassifyResponsibility(in.Title, in.Description) {
			req.Status = models.RequestTenantResponsibility
			req.Notes = "classified as tenant responsibility at intake"
		}
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		return outbox.Append(tx, "maintenance_request", req.ID, "submitted", map[string]interface{}{
			"request_number": req.RequestNumber,
			"unit_id":        req.UnitID,
			"category":       req.Category,
			"priority":       req.Priority,
			"status":         req.Status,
			"contractor":     contractor.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Authorize records sign-off on an estimated cost so the request can clear
// the scheduling gate.
func (e *Engine) Authorize(id uint, authorizedBy string) error {
	if authorizedBy == "" {
		return models.ErrAuthorizationRequired("maintenance_request", id, "authorizer is required")
	}
	req, err := e.Request(id)
	if err != nil {
		return err
	}
	if req.Status != models.RequestOpen {
		return &models.Error{Kind: models.KindInvalidTransition, Entity: "maintenance_request", ID: id,
			Field: "status", Value: string(req.Status), Msg: "authorization applies to open requests"}
	}

	now := time.Now()
	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"authorized_by": authorizedBy,
			"authorized_at": now,
		}
		if err := store.Apply(tx, &models.MaintenanceRequest{}, "maintenance_request", req.ID, req.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "maintenance_request", req.ID, "authorized", map[string]interface{}{
			"request_number": req.RequestNumber,
			"estimated_cost": req.EstimatedCost,
			"authorized_by":  authorizedBy,
		})
	})
}

// Schedule books an open request with its contractor. Estimated cost above
// the gate threshold requires a prior authorization record.
func (e *Engine) Schedule(id uint, date time.Time) error {
	req, err := e.Request(id)
	if err != nil {
		return err
	}
	if req.Status != models.RequestOpen {
		return models.ErrInvalidTransition("maintenance_request", id, string(req.Status), string(models.RequestScheduled))
	}
	if date.IsZero() {
		return models.ErrValidation("maintenance_request", "scheduled_date", "", "scheduled date is required")
	}
	if req.EstimatedCost > e.policy.CostGate && req.AuthorizedBy == "" {
		return models.ErrAuthorizationRequired("maintenance_request", id,
			fmt.Sprintf("estimated cost %.2f exceeds %.2f and has no authorization", req.EstimatedCost, e.policy.CostGate))
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         models.RequestScheduled,
			"scheduled_date": date,
		}
		if err := store.Apply(tx, &models.MaintenanceRequest{}, "maintenance_request", req.ID, req.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "maintenance_request", req.ID, "scheduled", map[string]interface{}{
			"request_number": req.RequestNumber,
			"contractor":     req.ContractorName,
			"date":           date.Format("2006-01-02"),
		})
	})
}

// Start moves a scheduled request to in_progress.
func (e *Engine) Start(id uint) error {
	req, err := e.Request(id)
	if err != nil {
		return err
	}
	if req.Status != models.RequestScheduled {
		return models.ErrInvalidTransition("maintenance_request", id, string(req.Status), string(models.RequestInProgress))
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.RequestInProgress}
		if err := store.Apply(tx, &models.MaintenanceRequest{}, "maintenance_request", req.ID, req.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "maintenance_request", req.ID, "started", map[string]interface{}{
			"request_number": req.RequestNumber,
		})
	})
}

// Complete closes out an in-progress request with the final cost.
func (e *Engine) Complete(id uint, date time.Time, actualCost float64) error {
	req, err := e.Request(id)
	if err != nil {
		return err
	}
	if req.Status != models.RequestInProgress {
		return models.ErrInvalidTransition("maintenance_request", id, string(req.Status), string(models.RequestCompleted))
	}
	if date.IsZero() {
		return models.ErrValidation("maintenance_request", "completed_date", "", "completed date is required")
	}
	if date.Before(req.SubmittedDate) {
		return models.ErrValidation("maintenance_request", "completed_date", date.Format("2006-01-02"),
			"completed date precedes submitted date")
	}
	if actualCost < 0 {
		return models.ErrValidation("maintenance_request", "actual_cost", fmt.Sprint(actualCost), "must not be negative")
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         models.RequestCompleted,
			"completed_date": date,
			"actual_cost":    actualCost,
		}
		if err := store.Apply(tx, &models.MaintenanceRequest{}, "maintenance_request", req.ID, req.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "maintenance_request", req.ID, "completed", map[string]interface{}{
			"request_number": req.RequestNumber,
			"actual_cost":    actualCost,
		})
	})
}

// MarkTenantResponsibility reclassifies an open request as occupant
// liability and takes it off the operator's worklist.
func (e *Engine) MarkTenantResponsibility(id uint, reason string) error {
	req, err := e.Request(id)
	if err != nil {
		return err
	}
	if req.Status != models.RequestOpen {
		return models.ErrInvalidTransition("maintenance_request", id, string(req.Status), string(models.RequestTenantResponsibility))
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		notes := req.Notes
		if reason != "" {
			if notes != "" {
				notes += "; "
			}
			notes += reason
		}
		updates := map[string]interface{}{
			"status": models.RequestTenantResponsibility,
			"notes":  notes,
		}
		if err := store.Apply(tx, &models.MaintenanceRequest{}, "maintenance_request", req.ID, req.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "maintenance_request", req.ID, "tenant_responsibility", map[string]interface{}{
			"request_number": req.RequestNumber,
			"reason":         reason,
		})
	})
}

// Worklist lists requests still needing operator action, emergencies first,
// then oldest submissions.
func (e *Engine) Worklist() ([]models.MaintenanceRequest, error) {
	var reqs []models.MaintenanceRequest
	err := e.db.Preload("Unit").
		Where("status IN ?", []models.RequestStatus{
			models.RequestOpen, models.RequestScheduled, models.RequestInProgress,
		}).
		Order("CASE priority WHEN 'emergency' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END").
		Order("submitted_date").
		Find(&reqs).Error
	return reqs, err
}

// Request fetches one request with its unit and reporter.
func (e *Engine) Request(id uint) (*models.MaintenanceRequest, error) {
	var req models.MaintenanceRequest
	err := e.db.Preload("Unit").Preload("Tenant").First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound("maintenance_request", id)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
