package services

import (
	"context"
	"log"
	"time"

	"punebus-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// DefaultExpirySchedule runs the expiry job shortly after midnight
const DefaultExpirySchedule = "5 0 * * *"

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	subscriptions    *SubscriptionService
	refreshTokenRepo repositories.RefreshTokenRepository
	schedule         string
}

// NewCronService creates a new cron service. An empty schedule uses DefaultExpirySchedule.
func NewCronService(
	subscriptions *SubscriptionService,
	refreshTokenRepo repositories.RefreshTokenRepository,
	schedule string,
) *CronService {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	return &CronService{
		cron:             cron.New(cron.WithLocation(time.UTC)),
		subscriptions:    subscriptions,
		refreshTokenRepo: refreshTokenRepo,
		schedule:         schedule,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunMaintenance); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("⏰ CronService started [schedule: %s]", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

// RunMaintenance expires lapsed subscriptions and purges expired refresh tokens
func (s *CronService) RunMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	expired, err := s.subscriptions.ExpireLapsed(ctx)
	if err != nil {
		log.Printf("❌ Subscription expiry failed: %v", err)
	} else {
		log.Printf("✅ Subscriptions expired: %d", expired)
	}

	purged, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", err)
		return
	}
	log.Printf("🗑️ Refresh tokens purged: %d", purged)
}
