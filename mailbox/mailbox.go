// Package mailbox keeps the append-only log of inbound mail, linked to
// tenants by sender address, with the unread/unreplied worklists.
package mailbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/outbox"
	"github.com/greenleafprop/rentledger/store"
)

// ManagerAddress is the default recipient for inbound mail.
const ManagerAddress = "manager@greenleafproperties.example.com"

// Inbound is one received message before it is recorded.
type Inbound struct {
	From       string
	To         string
	Subject    string
	Body       string
	ReceivedAt time.Time
}

// Mailbox records and reads correspondence.
type Mailbox struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Mailbox {
	return &Mailbox{db: db}
}

// Append records an inbound message. The sender address is matched against
// known tenant emails to link the message to a tenant and, through the
// tenant's unit, to a property. Unmatched senders are stored unlinked.
func (m *Mailbox) Append(in Inbound) (*models.Email, error) {
	if in.From == "" {
		return nil, models.ErrValidation("email", "from_address", "", "sender address is required")
	}
	if in.To == "" {
		in.To = ManagerAddress
	}
	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = time.Now()
	}

	email := &models.Email{
		MessageID:   uuid.New(),
		FromAddress: in.From,
		ToAddress:   in.To,
		Subject:     in.Subject,
		Body:        in.Body,
		ReceivedAt:  in.ReceivedAt,
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		err := tx.Where("LOWER(email) = LOWER(?)", in.From).First(&tenant).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			email.TenantID = &tenant.ID
			if tenant.UnitID != nil {
				var unit models.Unit
				if err := tx.First(&unit, *tenant.UnitID).Error; err == nil {
					email.PropertyID = &unit.PropertyID
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}
		}
		return tx.Create(email).Error
	})
	if err != nil {
		return nil, err
	}
	return email, nil
}

// MarkRead flags a message as read. Reading twice is harmless.
func (m *Mailbox) MarkRead(id uint) error {
	email, err := m.Message(id)
	if err != nil {
		return err
	}
	if email.IsRead {
		return nil
	}
	return store.Apply(m.db, &models.Email{}, "email", email.ID, email.Version,
		map[string]interface{}{"is_read": true})
}

// Reply stores the reply body against a message and queues it for the mail
// transport through the outbox. A message takes one reply.
func (m *Mailbox) Reply(id uint, body string) error {
	if body == "" {
		return models.ErrValidation("email", "reply_body", "", "reply body is required")
	}
	email, err := m.Message(id)
	if err != nil {
		return err
	}
	if email.Replied {
		return models.ErrInvalidTransition("email", id, "replied", "replied")
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"replied":    true,
			"reply_body": body,
			"is_read":    true,
		}
		if err := store.Apply(tx, &models.Email{}, "email", email.ID, email.Version, updates); err != nil {
			return err
		}
		return outbox.Append(tx, "email", email.ID, "replied", map[string]interface{}{
			"message_id": email.MessageID.String(),
			"to":         email.FromAddress,
			"subject":    "Re: " + email.Subject,
			"body":       body,
		})
	})
}

// Unread lists unread messages, oldest first.
func (m *Mailbox) Unread() ([]models.Email, error) {
	var emails []models.Email
	err := m.db.Preload("Tenant").
		Where("is_read = ?", false).
		Order("received_at").Find(&emails).Error
	return emails, err
}

// Unreplied lists messages still waiting on a reply, oldest first.
func (m *Mailbox) Unreplied() ([]models.Email, error) {
	var emails []models.Email
	err := m.db.Preload("Tenant").
		Where("replied = ?", false).
		Order("received_at").Find(&emails).Error
	return emails, err
}

// Message fetches one message with its links.
func (m *Mailbox) Message(id uint) (*models.Email, error) {
	var email models.Email
	err := m.db.Preload("Tenant").Preload("Property").First(&email, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound("email", id)
	}
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// ForTenant lists every message linked to a tenant, newest first.
func (m *Mailbox) ForTenant(tenantID uint) ([]models.Email, error) {
	var emails []models.Email
	err := m.db.Where("tenant_id = ?", tenantID).Order("received_at DESC").Find(&emails).Error
	return emails, err
}
