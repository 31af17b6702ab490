package outbox

import (
	"time"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
)

// Store implements EventRepo over the ledger database.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Lock claims up to n unclaimed events in insertion order. Claiming runs in
// a transaction so competing consumers never take the same rows twice.
func (s *Store) Lock(n uint64) ([]models.Event, error) {
	var events []models.Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("locked_at IS NULL").Order("id").Limit(int(n)).Find(&events).Error
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		now := time.Now()
		ids := make([]uint, 0, len(events))
		for i := range events {
			ids = append(ids, events[i].ID)
			events[i].LockedAt = &now
		}
		return tx.Model(&models.Event{}).Where("id IN ?", ids).Update("locked_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) Unlock(eventIDs []uint) error {
	if len(eventIDs) == 0 {
		return nil
	}
	return s.db.Model(&models.Event{}).Where("id IN ?", eventIDs).Update("locked_at", nil).Error
}

func (s *Store) Add(events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.Create(&events).Error
}

func (s *Store) Remove(eventIDs []uint) error {
	if len(eventIDs) == 0 {
		return nil
	}
	return s.db.Where("id IN ?", eventIDs).Delete(&models.Event{}).Error
}
