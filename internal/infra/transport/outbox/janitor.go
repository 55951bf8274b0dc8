package outbox

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// RetentionDays is how long a published outbox row is kept around for
// operator inspection before the janitor sweeps it.
const RetentionDays = 7

// StartJanitor schedules a recurring Cleanup sweep on its own cron.Cron
// instance and starts it, returning a stop function. schedule is a
// standard 5-field cron expression; an empty schedule defaults to once
// a day at 03:00.
func StartJanitor(ctx context.Context, ob *Outbox, schedule string) (stop func(), err error) {
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		n, err := ob.Cleanup(ctx, RetentionDays)
		if err != nil {
			log.Printf("outbox janitor: cleanup failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("outbox janitor: removed %d published rows older than %d days", n, RetentionDays)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
