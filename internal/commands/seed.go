package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/internal/seed"
	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/store"
)

func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo portfolio into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			if err := store.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %v", err)
			}

			var existing int64
			if err := db.Model(&models.Property{}).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return fmt.Errorf("database already has %d properties, refusing to seed", existing)
			}

			sum, err := seed.Run(db)
			if err != nil {
				return fmt.Errorf("failed to seed: %v", err)
			}
			fmt.Printf("Seeded %d properties, %d units, %d tenants\n", sum.Properties, sum.Units, sum.Tenants)
			fmt.Printf("       %d payments, %d maintenance requests, %d applications, %d emails\n",
				sum.Payments, sum.Requests, sum.Applications, sum.Emails)
			return nil
		},
	}
}
