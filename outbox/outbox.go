// Package outbox records entity transitions as event rows written in the
// same transaction as the transition, and relays them to a delivery seam.
package outbox

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
)

// Sender delivers one event to the notification transport.
type Sender interface {
	Send(event models.Event) error
}

// EventRepo is the locking queue over the events table. Lock claims up to n
// unclaimed rows for a consumer; Unlock returns rows after a failed send;
// Remove deletes rows after a successful one.
type EventRepo interface {
	Lock(n uint64) ([]models.Event, error)
	Unlock(eventIDs []uint) error
	Add(events []models.Event) error
	Remove(eventIDs []uint) error
}

// Append records one entity transition inside the caller's transaction. The
// payload is marshaled to JSON and delivered as-is by the relay.
func Append(tx *gorm.DB, entityType string, entityID uint, action string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := models.Event{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Payload:    datatypes.JSON(body),
	}
	return tx.Create(&event).Error
}
