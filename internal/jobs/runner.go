package jobs

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner schedules the background jobs. Every job gets an overlap guard
// (a slow run skips the next tick instead of stacking) and a context
// budget so a wedged run cannot hold resources forever.
type Runner struct {
	cron   *cron.Cron
	budget time.Duration
}

func NewRunner(budget time.Duration) *Runner {
	if budget <= 0 {
		budget = 10 * time.Minute
	}
	return &Runner{
		cron:   cron.New(),
		budget: budget,
	}
}

// Register schedules fn under the given cron spec.
func (r *Runner) Register(name, spec string, fn func(ctx context.Context) error) {
	var running atomic.Bool

	_, err := r.cron.AddFunc(spec, func() {
		if !running.CompareAndSwap(false, true) {
			log.Printf("⏭️  Job %s still running, skipping this tick", name)
			return
		}
		defer running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), r.budget)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			log.Printf("❌ Job %s failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
			return
		}
		log.Printf("✅ Job %s finished in %s", name, time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		log.Printf("Failed to schedule job %s (%s): %v", name, spec, err)
	}
}

func (r *Runner) Start() {
	r.cron.Start()
	log.Println("⏰ Job runner started")
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
