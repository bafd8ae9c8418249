package services

import (
	"context"
	"log"
	"time"

	"assetdesk/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ReminderService runs a daily scan for overdue borrows and logs them so
// operators can chase returns. It never mutates borrow state.
type ReminderService struct {
	requests    repositories.BorrowRequestRepository
	cron        *cron.Cron
	overdueDays int
}

// NewReminderService creates a new reminder service
func NewReminderService(requests repositories.BorrowRequestRepository, overdueDays int) *ReminderService {
	return &ReminderService{
		requests:    requests,
		cron:        cron.New(),
		overdueDays: overdueDays,
	}
}

// Start schedules the daily overdue scan at 08:30
func (s *ReminderService) Start() error {
	_, err := s.cron.AddFunc("30 8 * * *", func() {
		if err := s.ScanOverdue(context.Background()); err != nil {
			log.Printf("❌ Overdue scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Reminder cron started (daily 08:30)")
	return nil
}

// Stop halts the cron scheduler and waits for a running job to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Reminder cron stopped")
}

// ScanOverdue logs every approved borrow older than the configured window
func (s *ReminderService) ScanOverdue(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.overdueDays)

	overdue, err := s.requests.ListOverdue(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		log.Println("✅ Overdue scan: nothing outstanding")
		return nil
	}

	for _, req := range overdue {
		borrower := "unknown"
		if req.RequestedBy != nil {
			borrower = req.RequestedBy.Name
		}
		itemName := "unknown"
		if req.Item != nil {
			itemName = req.Item.ItemName
		}
		days := 0
		if req.BorrowDate != nil {
			days = int(time.Since(*req.BorrowDate).Hours() / 24)
		}
		log.Printf("⏰ Overdue: request #%d, item %q held by %s for %d days", req.ID, itemName, borrower, days)
	}
	return nil
}
