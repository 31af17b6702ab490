package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/outbox"
)

func RelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Deliver outbox events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, _ := cmd.Flags().GetDuration("poll-interval")

			db, err := getDB()
			if err != nil {
				return err
			}

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

			relay := outbox.NewRelay(outbox.Config{
				ChannelSize:   512,
				ConsumerCount: 2,
				BatchSize:     10,
				PollInterval:  interval,
				ProducerCount: 4,
				WorkerCount:   2,
				FlushInterval: time.Second,
				Repo:          outbox.NewStore(db),
				Sender:        outbox.LogSender{},
			})
			relay.Start()
			fmt.Println("Relay running, Ctrl-C to stop.")

			received := <-sigs
			relay.Close()
			fmt.Printf("Stopped by signal: %v\n", received)
			return nil
		},
	}
	cmd.Flags().Duration("poll-interval", 2*time.Second, "How often consumers poll the outbox")
	return cmd
}
