package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// AnalyticsService aggregates borrowing and user growth statistics. It is a
// read-only consumer of the item and borrow request tables and never touches
// lifecycle fields.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Time ranges
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

// Bucket is one labeled count in a time series
type Bucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// dateRange returns the inclusive window for a named range, ending now.
// Unknown ranges fall back to month, matching the query default.
func dateRange(rng string, now time.Time) (time.Time, time.Time) {
	switch rng {
	case RangeWeek:
		// last 7 days including today
		return now.AddDate(0, 0, -6), now
	case RangeYear:
		return now.AddDate(-1, 0, 0), now
	default:
		// last 30 days
		return now.AddDate(0, 0, -29), now
	}
}

// emptyDailyBuckets builds zero-filled day buckets ending today
func emptyDailyBuckets(days int, now time.Time) []Bucket {
	buckets := make([]Bucket, 0, days)
	for i := days - 1; i >= 0; i-- {
		buckets = append(buckets, Bucket{Label: now.AddDate(0, 0, -i).Format("2006-01-02")})
	}
	return buckets
}

// emptyMonthlyBuckets builds zero-filled month buckets for the last 12 months
func emptyMonthlyBuckets(now time.Time) []Bucket {
	buckets := make([]Bucket, 0, 12)
	for i := 11; i >= 0; i-- {
		buckets = append(buckets, Bucket{Label: now.AddDate(0, -i, 0).Format("Jan 2006")})
	}
	return buckets
}

// fillBuckets copies counts into matching labels; rows outside the prepared
// window are dropped
func fillBuckets(buckets []Bucket, rows map[string]int64) []Bucket {
	for i := range buckets {
		if count, ok := rows[buckets[i].Label]; ok {
			buckets[i].Count = count
		}
	}
	return buckets
}

// ItemsPerRange returns items created per day (week/month) or per month
// (year), zero-filled over the whole window.
func (s *AnalyticsService) ItemsPerRange(ctx context.Context, rng string) ([]Bucket, error) {
	now := time.Now()
	start, end := dateRange(rng, now)

	var raw []struct {
		Label string
		Count int64
	}

	q := s.db.WithContext(ctx).Table("items").
		Where("created_at BETWEEN ? AND ?", start, end)

	if rng == RangeYear {
		q = q.Select("DATE_FORMAT(created_at, '%Y-%m') AS label, COUNT(*) AS count")
	} else {
		q = q.Select("DATE_FORMAT(created_at, '%Y-%m-%d') AS label, COUNT(*) AS count")
	}
	if err := q.Group("label").Scan(&raw).Error; err != nil {
		return nil, err
	}

	rows := make(map[string]int64, len(raw))
	if rng == RangeYear {
		for _, r := range raw {
			if month, err := time.Parse("2006-01", r.Label); err == nil {
				rows[month.Format("Jan 2006")] = r.Count
			}
		}
		return fillBuckets(emptyMonthlyBuckets(now), rows), nil
	}

	for _, r := range raw {
		rows[r.Label] = r.Count
	}
	days := 30
	if rng == RangeWeek {
		days = 7
	}
	return fillBuckets(emptyDailyBuckets(days, now), rows), nil
}

// DatedCount is one per-day count keyed by date
type DatedCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// UserStats aggregates user growth and borrower activity
type UserStats struct {
	TotalUsers  int64        `json:"total_users"`
	UserStats   []DatedCount `json:"user_stats"`
	BorrowStats []DatedCount `json:"borrow_stats"`
}

// GetUserStats returns users registered per day and distinct borrowers per
// day, plus the all-time user count.
func (s *AnalyticsService) GetUserStats(ctx context.Context) (*UserStats, error) {
	stats := &UserStats{
		UserStats:   []DatedCount{},
		BorrowStats: []DatedCount{},
	}

	if err := s.db.WithContext(ctx).Table("users").
		Where("deleted_at IS NULL").
		Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	var userRows []struct {
		Date  string
		Count int64
	}
	if err := s.db.WithContext(ctx).Table("users").
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') AS date, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("date").
		Order("date ASC").
		Scan(&userRows).Error; err != nil {
		return nil, err
	}
	for _, r := range userRows {
		stats.UserStats = append(stats.UserStats, DatedCount{Date: r.Date, Count: r.Count})
	}

	var borrowRows []struct {
		Date  string
		Count int64
	}
	if err := s.db.WithContext(ctx).Table("borrow_requests").
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') AS date, COUNT(DISTINCT requested_by_id) AS count").
		Group("date").
		Order("date ASC").
		Scan(&borrowRows).Error; err != nil {
		return nil, err
	}
	for _, r := range borrowRows {
		stats.BorrowStats = append(stats.BorrowStats, DatedCount{Date: r.Date, Count: r.Count})
	}

	return stats, nil
}

// TopBorrower is one entry in the monthly top-borrower ranking
type TopBorrower struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Month       string `json:"month"`
	BorrowCount int64  `json:"borrow_count"`
}

// GetTopBorrowers returns the five heaviest borrowers grouped by calendar
// month of the request.
func (s *AnalyticsService) GetTopBorrowers(ctx context.Context) ([]TopBorrower, error) {
	var rows []struct {
		Name        string
		Email       string
		Month       string
		BorrowCount int64
	}
	err := s.db.WithContext(ctx).Table("borrow_requests").
		Select(`users.name AS name,
			users.email AS email,
			DATE_FORMAT(borrow_requests.created_at, '%M') AS month,
			COUNT(*) AS borrow_count`).
		Joins("JOIN users ON borrow_requests.requested_by_id = users.id").
		Group("borrow_requests.requested_by_id, users.name, users.email, month").
		Order("borrow_count DESC").
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]TopBorrower, len(rows))
	for i, r := range rows {
		result[i] = TopBorrower{
			Name:        r.Name,
			Email:       r.Email,
			Month:       r.Month,
			BorrowCount: r.BorrowCount,
		}
	}
	return result, nil
}
