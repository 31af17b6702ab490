package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/maintenance"
)

func WorklistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worklist",
		Short: "List maintenance requests needing action, emergencies first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			reqs, err := maintenance.New(db, maintenancePolicy()).Worklist()
			if err != nil {
				return fmt.Errorf("failed to load worklist: %v", err)
			}
			if len(reqs) == 0 {
				fmt.Println("Worklist is empty.")
				return nil
			}
			for _, r := range reqs {
				unit := "?"
				if r.Unit != nil {
					unit = r.Unit.UnitNumber
				}
				fmt.Printf("%-8s %-10s %-12s unit %-5s %-22s est $%.2f -> %s\n",
					r.RequestNumber, r.Priority, r.Status, unit, r.Title, r.EstimatedCost, r.ContractorName)
			}
			return nil
		},
	}
}
