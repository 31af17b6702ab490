package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is one outbox row recording an entity transition. Rows are appended
// in the same transaction as the transition and removed once delivered;
// LockedAt marks rows claimed by a relay consumer.
type Event struct {
	ID         uint   `gorm:"primarykey"`
	EntityType string `gorm:"index"`
	EntityID   uint
	Action     string
	Payload    datatypes.JSON
	CreatedAt  time.Time
	LockedAt   *time.Time
}
