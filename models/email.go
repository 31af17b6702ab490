package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Email represents one inbound message in the manager's mailbox
type Email struct {
	gorm.Model
	Versioned
	MessageID   uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	FromAddress string    `gorm:"index"`
	ToAddress   string
	Subject     string
	Body        string
	ReceivedAt  time.Time
	IsRead      bool
	Replied     bool
	ReplyBody   string
	TenantID    *uint
	Tenant      *Tenant `gorm:"foreignKey:TenantID"`
	PropertyID  *uint
	Property    *Property `gorm:"foreignKey:PropertyID"`
}
