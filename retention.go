package main

import (
	"context"
	"log"
	"time"
)

// runRetention deletes readings older than days right away and then on
// every tick until ctx is done.
func (a *App) runRetention(ctx context.Context, days int, every time.Duration) error {
	log.Printf("[retention] removing readings older than %d days every %s", days, every)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		a.cleanupOnce(ctx, days)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *App) cleanupOnce(ctx context.Context, days int) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	n, err := a.readings.Cleanup(ctx, days)
	if err != nil {
		log.Printf("[retention] cleanup failed: %v", err)
		return
	}
	log.Printf("[retention] deleted %d readings", n)
}
