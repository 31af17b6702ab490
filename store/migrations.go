package store

import (
	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/models"
)

func init() {
	RegisterMigration(&Migration{
		Version: "20240101000000",
		Name:    "initial_schema",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(models.All()...)
		},
		Down: func(tx *gorm.DB) error {
			all := models.All()
			for i := len(all) - 1; i >= 0; i-- {
				if err := tx.Migrator().DropTable(all[i]); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// Migrate applies every registered migration. Convenience for commands and
// test setup.
func Migrate(db *gorm.DB) error {
	_, err := NewMigrator(db).Up()
	return err
}
