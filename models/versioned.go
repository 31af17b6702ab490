package models

// Versioned adds the optimistic concurrency counter checked on every status
// transition. An update that matches neither the id nor the expected version
// touches zero rows and is reported as a conflict.
type Versioned struct {
	Version uint `gorm:"not null;default:0"`
}
