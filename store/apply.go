package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
)

// Apply runs one optimistic-concurrency update against a versioned row. The
// update only matches the expected version, so a racing transition touches
// zero rows and surfaces as a conflict; the loser retries from a fresh read.
func Apply(db *gorm.DB, model interface{}, entity string, id, version uint, updates map[string]interface{}) error {
	updates["version"] = version + 1
	res := db.Model(model).Where("id = ? AND version = ?", id, version).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrConflict(entity, id, "version", fmt.Sprint(version), "row changed concurrently")
	}
	return nil
}
