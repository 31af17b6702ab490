package outbox

import (
	"log"

	"github.com/greenleafprop/rentledger/models"
)

// LogSender writes delivered events to the process log. It stands in for
// the notification transport in local runs.
type LogSender struct{}

func (LogSender) Send(event models.Event) error {
	log.Printf("event %d %s/%d %s %s",
		event.ID, event.EntityType, event.EntityID, event.Action, string(event.Payload))
	return nil
}
