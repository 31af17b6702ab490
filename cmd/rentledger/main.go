package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/internal/commands"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rentledger",
		Short: "Record keeping for a small residential property operator",
	}

	rootCmd.AddCommand(
		commands.MigrateCmd(),
		commands.SeedCmd(),
		commands.StatsCmd(),
		commands.GenerateCmd(),
		commands.SweepCmd(),
		commands.DueCmd(),
		commands.WorklistCmd(),
		commands.InboxCmd(),
		commands.ScreenCmd(),
		commands.InspectCmd(),
		commands.RelayCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
