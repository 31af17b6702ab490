package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/mailbox"
	"github.com/greenleafprop/rentledger/models"
)

func InboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List unread mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			unreplied, _ := cmd.Flags().GetBool("unreplied")

			db, err := getDB()
			if err != nil {
				return err
			}
			mbox := mailbox.New(db)

			var emails []models.Email
			if unreplied {
				emails, err = mbox.Unreplied()
			} else {
				emails, err = mbox.Unread()
			}
			if err != nil {
				return fmt.Errorf("failed to load inbox: %v", err)
			}
			if len(emails) == 0 {
				fmt.Println("Inbox is clear.")
				return nil
			}
			for _, e := range emails {
				from := e.FromAddress
				if e.Tenant != nil {
					from = fmt.Sprintf("%s %s <%s>", e.Tenant.FirstName, e.Tenant.LastName, e.FromAddress)
				}
				fmt.Printf("#%-4d %s  %-40s %s\n", e.ID, e.ReceivedAt.Format("2006-01-02"), from, e.Subject)
			}
			return nil
		},
	}
	cmd.Flags().Bool("unreplied", false, "List messages waiting on a reply instead")
	return cmd
}
