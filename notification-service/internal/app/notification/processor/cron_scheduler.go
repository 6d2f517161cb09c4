package processor

import (
	"context"
	"log"

	"bookstore/notification-service/internal/app/notification/service"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически повторяет отправку pending писем
type CronScheduler struct {
	cron            *cron.Cron
	notificationSvc service.NotificationServiceInterface
}

func NewCronScheduler(notificationSvc service.NotificationServiceInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &CronScheduler{
		cron:            c,
		notificationSvc: notificationSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	log.Printf("Starting cron scheduler with schedule: %s", schedule)

	_, err := s.cron.AddFunc(schedule, func() {
		log.Println("Cron job triggered: retrying pending notifications")

		if err := s.notificationSvc.RetryPending(ctx); err != nil {
			log.Printf("ERROR: Failed to retry pending notifications: %v", err)
		} else {
			log.Println("Cron job completed: pending notifications processed")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started")

	return nil
}

func (s *CronScheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
