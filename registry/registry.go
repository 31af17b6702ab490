// Package registry tracks the physical inventory: properties and their units.
package registry

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/outbox"
	"github.com/greenleafprop/rentledger/store"
)

// Registry exposes create/read/update over properties and units and owns
// their uniqueness rules.
type Registry struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// CreateProperty validates and stores a new property.
func (r *Registry) CreateProperty(p *models.Property) error {
	if p.Name == "" {
		return models.ErrValidation("property", "name", "", "name is required")
	}
	if p.TotalUnits < 0 {
		return models.ErrValidation("property", "total_units", fmt.Sprint(p.TotalUnits), "must not be negative")
	}
	return r.db.Create(p).Error
}

// UpdateProperty saves changes to an existing property.
func (r *Registry) UpdateProperty(p *models.Property) error {
	if _, err := r.Property(p.ID); err != nil {
		return err
	}
	return r.db.Save(p).Error
}

// Property fetches one property with its units.
func (r *Registry) Property(id uint) (*models.Property, error) {
	var p models.Property
	err := r.db.Preload("Units").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound("property", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Properties lists the whole portfolio.
func (r *Registry) Properties() ([]models.Property, error) {
	var props []models.Property
	err := r.db.Order("name").Find(&props).Error
	return props, err
}

// DeleteProperty removes a property that has no units. Deletes are
// restricted rather than cascaded so history under a building is never
// silently dropped.
func (r *Registry) DeleteProperty(id uint) error {
	p, err := r.Property(id)
	if err != nil {
		return err
	}
	if len(p.Units) > 0 {
		return models.ErrConflict("property", id, "units", fmt.Sprint(len(p.Units)), "property still has units")
	}
	return r.db.Delete(&models.Property{}, id).Error
}

// CreateUnit validates and stores a new unit under an existing property.
// Unit numbers are unique within a property.
func (r *Registry) CreateUnit(u *models.Unit) error {
	if u.UnitNumber == "" {
		return models.ErrValidation("unit", "unit_number", "", "unit number is required")
	}
	if u.RentAmount < 0 {
		return models.ErrValidation("unit", "rent_amount", fmt.Sprint(u.RentAmount), "must not be negative")
	}
	if u.Status == "" {
		u.Status = models.UnitVacant
	}
	if !u.Status.IsValid() {
		return models.ErrValidation("unit", "status", string(u.Status), "unknown unit status")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, u.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound("property", u.PropertyID)
			}
			return err
		}
		var count int64
		err := tx.Model(&models.Unit{}).
			Where("property_id = ? AND unit_number = ?", u.PropertyID, u.UnitNumber).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrConflict("unit", 0, "unit_number", u.UnitNumber, "unit number already exists in property")
		}
		return tx.Create(u).Error
	})
}

// UpdateUnit saves changes to an existing unit, keeping the per-property
// unit number unique.
func (r *Registry) UpdateUnit(u *models.Unit) error {
	if !u.Status.IsValid() {
		return models.ErrValidation("unit", "status", string(u.Status), "unknown unit status")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current models.Unit
		if err := tx.First(&current, u.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound("unit", u.ID)
			}
			return err
		}
		var count int64
		err := tx.Model(&models.Unit{}).
			Where("property_id = ? AND unit_number = ? AND id <> ?", u.PropertyID, u.UnitNumber, u.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrConflict("unit", u.ID, "unit_number", u.UnitNumber, "unit number already exists in property")
		}
		return tx.Save(u).Error
	})
}

// Unit fetches one unit with its property.
func (r *Registry) Unit(id uint) (*models.Unit, error) {
	var u models.Unit
	err := r.db.Preload("Property").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound("unit", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Units lists the units of one property.
func (r *Registry) Units(propertyID uint) ([]models.Unit, error) {
	var units []models.Unit
	err := r.db.Where("property_id = ?", propertyID).Order("unit_number").Find(&units).Error
	return units, err
}

// SetUnitStatus transitions a unit's occupancy status.
func (r *Registry) SetUnitStatus(id uint, status models.UnitStatus) error {
	if !status.IsValid() {
		return models.ErrValidation("unit", "status", string(status), "unknown unit status")
	}
	u, err := r.Unit(id)
	if err != nil {
		return err
	}
	if u.Status == status {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": status}
		if err := store.Apply(tx, &models.Unit{}, "unit", u.ID, u.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "unit", u.ID, "status_changed", map[string]interface{}{
			"from": u.Status,
			"to":   status,
		})
	})
}
