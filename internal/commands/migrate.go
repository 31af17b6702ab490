package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/store"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(upCmd(), downCmd(), statusCmd())
	return cmd
}

func upCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			db, err := getDB()
			if err != nil {
				return err
			}
			migrator := store.NewMigrator(db)

			if dryRun {
				statuses, err := migrator.Status()
				if err != nil {
					return fmt.Errorf("failed to read migration status: %v", err)
				}
				pending := 0
				for _, s := range statuses {
					if !s.Applied {
						fmt.Printf("- %s (%s)\n", s.Name, s.Version)
						pending++
					}
				}
				if pending == 0 {
					fmt.Println("No pending migrations.")
				}
				return nil
			}

			applied, err := migrator.Up()
			if err != nil {
				return fmt.Errorf("failed to apply migrations: %v", err)
			}
			if applied == 0 {
				fmt.Println("No pending migrations.")
				return nil
			}
			fmt.Printf("Applied %d migration(s)\n", applied)
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "Show pending migrations without executing them")
	return cmd
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			rolled, err := store.NewMigrator(db).Down()
			if err != nil {
				return fmt.Errorf("failed to roll back: %v", err)
			}
			if rolled == nil {
				fmt.Println("Nothing to roll back.")
				return nil
			}
			fmt.Printf("Rolled back migration: %s (%s)\n", rolled.Name, rolled.Version)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := getDB()
			if err != nil {
				return err
			}
			statuses, err := store.NewMigrator(db).Status()
			if err != nil {
				return fmt.Errorf("failed to read migration status: %v", err)
			}
			for _, s := range statuses {
				if s.Applied {
					fmt.Printf("[x] %s %s (applied %s)\n", s.Version, s.Name, s.AppliedAt.Format("2006-01-02 15:04:05"))
				} else {
					fmt.Printf("[ ] %s %s\n", s.Version, s.Name)
				}
			}
			return nil
		},
	}
}
