package pipeline

import (
	"context"
	"log"
	"time"
)

// StartJanitor evicts terminal jobs, their transcripts, and their event logs
// once they leave the retention window. Runs until ctx is done.
func (c *Controller) StartJanitor(ctx context.Context) {
	if c.cfg.Retention <= 0 {
		return
	}
	interval := c.cfg.Retention / 4
	if interval < time.Second {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.evictExpired(time.Now())
			}
		}
	}()
}

func (c *Controller) evictExpired(now time.Time) {
	for _, j := range c.jobs.List() {
		if !j.Status.Terminal() || j.DoneAt.IsZero() {
			continue
		}
		if now.Sub(j.DoneAt) < c.cfg.Retention {
			continue
		}
		c.jobs.Evict(j.ID)
		c.scripts.Evict(j.ID)
		c.bus.Evict(j.ID)
		log.Printf("pipeline: job %s evicted after retention window", j.ID)
	}
}
