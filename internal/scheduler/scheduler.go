package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
)

// Scheduler periodically acquires the current day's observations for
// the configured tracked locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *astro.Service
	locations []string
	interval  time.Duration
}

// New creates a Scheduler.
func New(locations []string, interval time.Duration, service *astro.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no tracked locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		log.Println("scheduler: running daily acquisition job")

		// Locations run sequentially so peak outbound concurrency stays
		// bounded by the number of configured sources.
		for _, place := range s.locations {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

			today := time.Now().UTC()
			report, err := s.service.AcquireRange(ctx, place, today, today, nil)
			cancel()

			if err != nil {
				log.Printf("scheduler: acquisition failed for %s: %v", place, err)
				continue
			}
			log.Printf("scheduler: stored %d records for %s", report.StoredRecords, place)
		}

		log.Println("scheduler: completed daily acquisition job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
