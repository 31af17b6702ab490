// Package screening evaluates rental applications against the operator's
// income, credit, and pet rules. Evaluation recommends; it never decides.
package screening

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/outbox"
	"github.com/greenleafprop/rentledger/store"
)

const (
	// MinIncomeRatio is the required annual income over annualized rent.
	MinIncomeRatio = 3.0
	// MinCreditScore is exclusive: an applicant must score above it.
	MinCreditScore = 620
)

// Input is everything Evaluate looks at.
type Input struct {
	AnnualIncome     float64
	MonthlyRent      float64
	CreditScore      int
	HasPets          bool
	PetsAllowed      bool
	AssistanceAnimal bool
}

// Result is a recommendation with the reasons that produced it.
type Result struct {
	Approve     bool
	IncomeRatio float64
	Reasons     []string
}

// Evaluate applies the screening rules to one applicant. It is a pure
// function of its input: same application, same outcome.
func Evaluate(in Input) Result {
	var r Result
	if in.MonthlyRent > 0 {
		r.IncomeRatio = in.AnnualIncome / (12 * in.MonthlyRent)
	}
	if r.IncomeRatio < MinIncomeRatio {
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("income ratio %.2f below required %.1f", r.IncomeRatio, MinIncomeRatio))
	}
	if in.CreditScore <= MinCreditScore {
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("credit score %d at or below minimum %d", in.CreditScore, MinCreditScore))
	}
	if in.HasPets && !in.PetsAllowed && !in.AssistanceAnimal {
		r.Reasons = append(r.Reasons,
			"pets not permitted in unit and no assistance animal accommodation documented")
	}
	r.Approve = len(r.Reasons) == 0
	return r
}

// Screener persists recommendations onto stored applications.
type Screener struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Screener {
	return &Screener{db: db}
}

// Screen evaluates a stored application against its desired unit and records
// the recommendation. Re-screening an undecided application recomputes it;
// a decided one is immutable.
func (s *Screener) Screen(applicationID uint) (*Result, error) {
	app, err := s.Application(applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == models.ApplicationDecided {
		return nil, models.ErrInvalidTransition("rental_application", applicationID,
			string(app.Status), string(models.ApplicationRecommendedApprove))
	}
	if app.DesiredUnitID == nil {
		return nil, models.ErrValidation("rental_application", "desired_unit_id", "",
			"application names no unit to screen against")
	}

	var unit models.Unit
	if err := s.db.First(&unit, *app.DesiredUnitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound("unit", *app.DesiredUnitID)
		}
		return nil, err
	}

	result := Evaluate(Input{
		AnnualIncome:     app.AnnualIncome,
		MonthlyRent:      unit.RentAmount,
		CreditScore:      app.CreditScore,
		HasPets:          app.HasPets,
		PetsAllowed:      unit.PetsAllowed,
		AssistanceAnimal: app.AssistanceAnimal,
	})

	status := models.ApplicationRecommendedReject
	if result.Approve {
		status = models.ApplicationRecommendedApprove
	}
	reasons, err := json.Marshal(result.Reasons)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":            status,
			"screening_reasons": reasons,
		}
		if err := store.Apply(tx, &models.RentalApplication{}, "rental_application", app.ID, app.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "rental_application", app.ID, "screened", map[string]interface{}{
			"status":       status,
			"income_ratio": result.IncomeRatio,
			"reasons":      result.Reasons,
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Decide records the terminal decision taken by an external authority.
func (s *Screener) Decide(applicationID uint, outcome, decidedBy string) error {
	if decidedBy == "" {
		return models.ErrAuthorizationRequired("rental_application", applicationID,
			"decision requires a named authority")
	}
	if outcome == "" {
		return models.ErrValidation("rental_application", "outcome", "", "outcome is required")
	}
	app, err := s.Application(applicationID)
	if err != nil {
		return err
	}
	if app.Status == models.ApplicationDecided {
		return models.ErrInvalidTransition("rental_application", applicationID,
			string(app.Status), string(models.ApplicationDecided))
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		notes := app.Notes
		if notes != "" {
			notes += "; "
		}
		notes += fmt.Sprintf("decided %s by %s", outcome, decidedBy)
		updates := map[string]interface{}{
			"status":     models.ApplicationDecided,
			"decided_by": decidedBy,
			"notes":      notes,
		}
		if err := store.Apply(tx, &models.RentalApplication{}, "rental_application", app.ID, app.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "rental_application", app.ID, "decided", map[string]interface{}{
			"outcome":    outcome,
			"decided_by": decidedBy,
		})
	})
}

// Submit stores a new application in pending status.
func (s *Screener) Submit(app *models.RentalApplication) error {
	if app.Email == "" {
		return models.ErrValidation("rental_application", "email", "", "email is required")
	}
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	if !app.Status.IsValid() {
		return models.ErrValidation("rental_application", "status", string(app.Status), "unknown application status")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if app.DesiredUnitID != nil {
			var unit models.Unit
			if err := tx.First(&unit, *app.DesiredUnitID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.ErrNotFound("unit", *app.DesiredUnitID)
				}
				return err
			}
		}
		return tx.Create(app).Error
	})
}

// Application fetches one application with its desired unit.
func (s *Screener) Application(id uint) (*models.RentalApplication, error) {
	var app models.RentalApplication
	err := s.db.Preload("DesiredUnit").First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound("rental_application", id)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Pending lists applications not yet screened, oldest first.
func (s *Screener) Pending() ([]models.RentalApplication, error) {
	var apps []models.RentalApplication
	err := s.db.Preload("DesiredUnit").
		Where("status = ?", models.ApplicationPending).
		Order("submitted_date").Find(&apps).Error
	return apps, err
}
