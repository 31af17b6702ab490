package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/models"
)

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}

			var properties, units, vacant, activeTenants int64
			var pastDue, openRequests, unread, pendingApps int64

			if err := db.Model(&models.Property{}).Count(&properties).Error; err != nil {
				return err
			}
			if err := db.Model(&models.Unit{}).Count(&units).Error; err != nil {
				return err
			}
			if err := db.Model(&models.Unit{}).Where("status = ?", models.UnitVacant).Count(&vacant).Error; err != nil {
				return err
			}
			if err := db.Model(&models.Tenant{}).Where("status = ?", models.TenantActive).Count(&activeTenants).Error; err != nil {
				return err
			}
			if err := db.Model(&models.Payment{}).Where("status = ?", models.PaymentPastDue).Count(&pastDue).Error; err != nil {
				return err
			}
			if err := db.Model(&models.MaintenanceRequest{}).
				Where("status IN ?", []models.RequestStatus{models.RequestOpen, models.RequestScheduled, models.RequestInProgress}).
				Count(&openRequests).Error; err != nil {
				return err
			}
			if err := db.Model(&models.Email{}).Where("is_read = ?", false).Count(&unread).Error; err != nil {
				return err
			}
			if err := db.Model(&models.RentalApplication{}).
				Where("status = ?", models.ApplicationPending).Count(&pendingApps).Error; err != nil {
				return err
			}

			fmt.Printf("Properties:            %d\n", properties)
			fmt.Printf("Units:                 %d (%d vacant)\n", units, vacant)
			fmt.Printf("Active tenants:        %d\n", activeTenants)
			fmt.Printf("Past due payments:     %d\n", pastDue)
			fmt.Printf("Open maintenance:      %d\n", openRequests)
			fmt.Printf("Unread mail:           %d\n", unread)
			fmt.Printf("Pending applications:  %d\n", pendingApps)
			return nil
		},
	}
}
