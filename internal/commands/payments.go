package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/payments"
)

func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create the month's pending rent obligations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawDate, _ := cmd.Flags().GetString("as-of")
			asOf, err := parseDateFlag(rawDate)
			if err != nil {
				return err
			}
			db, err := getDB()
			if err != nil {
				return err
			}
			created, err := payments.New(db, payments.Policy{}).Generate(asOf)
			if err != nil {
				return fmt.Errorf("failed to generate obligations: %v", err)
			}
			fmt.Printf("Created %d obligation(s) for %s\n", created, asOf.Format("January 2006"))
			return nil
		},
	}
	cmd.Flags().String("as-of", "", "Month to bill, YYYY-MM-DD (default today)")
	return cmd
}

func SweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark overdue obligations past due and accrue late fees",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawDate, _ := cmd.Flags().GetString("as-of")
			asOf, err := parseDateFlag(rawDate)
			if err != nil {
				return err
			}
			db, err := getDB()
			if err != nil {
				return err
			}
			swept, err := payments.New(db, payments.Policy{}).Sweep(asOf)
			if err != nil {
				return fmt.Errorf("failed to sweep: %v", err)
			}
			fmt.Printf("Updated %d obligation(s)\n", swept)
			return nil
		},
	}
	cmd.Flags().String("as-of", "", "Sweep date, YYYY-MM-DD (default today)")
	return cmd
}

func DueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List past due obligations, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			due, err := payments.New(db, payments.Policy{}).PastDue()
			if err != nil {
				return fmt.Errorf("failed to list past due payments: %v", err)
			}
			if len(due) == 0 {
				fmt.Println("Nothing past due.")
				return nil
			}
			for _, p := range due {
				name := "?"
				if p.Tenant != nil {
					name = p.Tenant.FirstName + " " + p.Tenant.LastName
				}
				unit := "?"
				if p.Unit != nil {
					unit = p.Unit.UnitNumber
				}
				fmt.Printf("#%d  %s  unit %s  $%.2f due %s  late fee $%.2f\n",
					p.ID, name, unit, p.Amount, p.DueDate.Format("2006-01-02"), p.LateFee)
			}
			return nil
		},
	}
}
