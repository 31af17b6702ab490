package store

import (
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Migration is one versioned schema change. Up and Down run inside a
// transaction and must leave the schema consistent either way.
type Migration struct {
	Version string
	Name    string
	Up      func(*gorm.DB) error
	Down    func(*gorm.DB) error
}

// MigrationRecord marks an applied migration in the version table.
type MigrationRecord struct {
	Version   string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// MigrationStatus pairs a known migration with its applied state.
type MigrationStatus struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

var (
	globalMigrations = make([]*Migration, 0)
	registryMutex    sync.RWMutex
)

// RegisterMigration adds a migration to the global registry, usually from an
// init func in this package.
func RegisterMigration(m *Migration) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	globalMigrations = append(globalMigrations, m)
}

// RegisteredMigrations returns a copy of the registry sorted by version.
func RegisteredMigrations() []*Migration {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	migrations := make([]*Migration, len(globalMigrations))
	copy(migrations, globalMigrations)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

// Migrator applies registered migrations against one database.
type Migrator struct {
	db         *gorm.DB
	migrations []*Migration
}

// NewMigrator creates a Migrator over the globally registered migrations.
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: RegisteredMigrations(),
	}
}

// Register adds a migration to this migrator only.
func (m *Migrator) Register(mig *Migration) {
	m.migrations = append(m.migrations, mig)
	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})
}

func (m *Migrator) ensureVersionTable() error {
	return m.db.AutoMigrate(&MigrationRecord{})
}

// AppliedVersions returns the set of versions recorded in the version table.
func (m *Migrator) AppliedVersions() (map[string]bool, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}

	var records []MigrationRecord
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}

	versions := make(map[string]bool)
	for _, record := range records {
		versions[record.Version] = true
	}
	return versions, nil
}

// Up applies every unapplied migration in version order, each inside its own
// transaction together with its version record.
func (m *Migrator) Up() (int, error) {
	applied, err := m.AppliedVersions()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range m.migrations {
		if applied[mig.Version] {
			continue
		}
		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			record := MigrationRecord{
				Version:   mig.Version,
				Name:      mig.Name,
				AppliedAt: time.Now(),
			}
			return tx.Create(&record).Error
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Down rolls back the most recently applied migration, if any.
func (m *Migrator) Down() (*Migration, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}

	var lastRecord MigrationRecord
	if err := m.db.Order("applied_at DESC").First(&lastRecord).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var target *Migration
	for _, mig := range m.migrations {
		if mig.Version == lastRecord.Version {
			target = mig
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := target.Down(tx); err != nil {
			return err
		}
		return tx.Delete(&lastRecord).Error
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// Status reports every known migration with its applied timestamp.
func (m *Migrator) Status() ([]MigrationStatus, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}

	var records []MigrationRecord
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}
	appliedAt := make(map[string]time.Time, len(records))
	for _, record := range records {
		appliedAt[record.Version] = record.AppliedAt
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		status := MigrationStatus{Version: mig.Version, Name: mig.Name}
		if at, ok := appliedAt[mig.Version]; ok {
			status.Applied = true
			at := at
			status.AppliedAt = &at
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// ResetMigrations clears the global registry. Test hook.
func ResetMigrations() {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	globalMigrations = make([]*Migration, 0)
}
