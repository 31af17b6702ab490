package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/screening"
)

func ScreenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screen [application-id]",
		Short: "Screen one application, or every pending one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			screener := screening.New(db)

			var ids []uint
			if len(args) == 1 {
				id, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid application id %q", args[0])
				}
				ids = append(ids, uint(id))
			} else {
				pending, err := screener.Pending()
				if err != nil {
					return fmt.Errorf("failed to list pending applications: %v", err)
				}
				for _, app := range pending {
					ids = append(ids, app.ID)
				}
			}
			if len(ids) == 0 {
				fmt.Println("No pending applications.")
				return nil
			}

			for _, id := range ids {
				result, err := screener.Screen(id)
				if err != nil {
					return fmt.Errorf("failed to screen application %d: %v", id, err)
				}
				if result.Approve {
					fmt.Printf("#%d recommend approve (income ratio %.2f)\n", id, result.IncomeRatio)
					continue
				}
				fmt.Printf("#%d recommend reject\n", id)
				for _, reason := range result.Reasons {
					fmt.Printf("    - %s\n", reason)
				}
			}
			return nil
		},
	}
}
