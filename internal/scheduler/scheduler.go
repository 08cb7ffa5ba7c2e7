package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Task is one scheduled unit of work. A returned error is fatal and stops the
// schedule; tasks log and swallow whatever they can recover from.
type Task func(ctx context.Context) error

// Every runs task now and then once per interval until ctx is done or task
// fails. Runs never overlap: a tick that fires while the task is still running
// is dropped. Cancellation returns nil.
func Every(ctx context.Context, interval time.Duration, name string, task Task) error {
	run := func() error {
		if err := task(ctx); err != nil {
			log.Printf("[%s] fatal: %v", name, err)
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	if err := run(); err != nil {
		return err
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := run(); err != nil {
				return err
			}
		}
	}
}
