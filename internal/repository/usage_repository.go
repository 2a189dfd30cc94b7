package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UsageRepository struct {
	db *pgxpool.Pool
}

type DailyUsage struct {
	Date             time.Time `json:"date"`
	MessagesSent     int       `json:"messages_sent"`
	MessagesReceived int       `json:"messages_received"`
	AIReplies        int       `json:"ai_replies"`
}

type QuotaStatus struct {
	DailyLimit       int `json:"daily_limit"`
	MonthlyLimit     int `json:"monthly_limit"`
	TodaySent        int `json:"today_sent"`
	MonthSent        int `json:"month_sent"`
	DailyRemaining   int `json:"daily_remaining"`
	MonthlyRemaining int `json:"monthly_remaining"`
	DailyPercent     int `json:"daily_percent"`
	MonthlyPercent   int `json:"monthly_percent"`
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) increment(ctx context.Context, tenantID, column string) error {
	today := time.Now().Format("2006-01-02")
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_usage (tenant_id, date, `+column+`)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, date)
		DO UPDATE SET `+column+` = message_usage.`+column+` + 1
	`, tenantID, today)
	return err
}

// IncrementSent counts one outbound message against today's quota.
func (r *UsageRepository) IncrementSent(ctx context.Context, tenantID string) error {
	return r.increment(ctx, tenantID, "messages_sent")
}

// IncrementReceived counts one inbound message for today.
func (r *UsageRepository) IncrementReceived(ctx context.Context, tenantID string) error {
	return r.increment(ctx, tenantID, "messages_received")
}

// IncrementAIReply counts one generated reply. AI replies also count
// as sent; callers increment both.
func (r *UsageRepository) IncrementAIReply(ctx context.Context, tenantID string) error {
	return r.increment(ctx, tenantID, "ai_replies")
}

// GetTodayUsage returns today's counters. A missing row means zero
// usage, not an error.
func (r *UsageRepository) GetTodayUsage(ctx context.Context, tenantID string) (sent, received, aiReplies int, err error) {
	today := time.Now().Format("2006-01-02")
	err = r.db.QueryRow(ctx, `
		SELECT messages_sent, messages_received, ai_replies
		FROM message_usage WHERE tenant_id = $1 AND date = $2
	`, tenantID, today).Scan(&sent, &received, &aiReplies)
	if err != nil {
		return 0, 0, 0, nil
	}
	return sent, received, aiReplies, nil
}

// GetMonthUsage returns this month's totals.
func (r *UsageRepository) GetMonthUsage(ctx context.Context, tenantID string) (sent, received, aiReplies int, err error) {
	firstOfMonth := time.Now().Format("2006-01") + "-01"
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(messages_sent), 0), COALESCE(SUM(messages_received), 0), COALESCE(SUM(ai_replies), 0)
		FROM message_usage WHERE tenant_id = $1 AND date >= $2
	`, tenantID, firstOfMonth).Scan(&sent, &received, &aiReplies)
	return sent, received, aiReplies, err
}

// GetUsageHistory returns the last N days of usage for the dashboard.
func (r *UsageRepository) GetUsageHistory(ctx context.Context, tenantID string, days int) ([]DailyUsage, error) {
	startDate := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := r.db.Query(ctx, `
		SELECT date, messages_sent, messages_received, ai_replies
		FROM message_usage
		WHERE tenant_id = $1 AND date >= $2
		ORDER BY date ASC
	`, tenantID, startDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := []DailyUsage{}
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.MessagesSent, &u.MessagesReceived, &u.AIReplies); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// GetQuotaStatus summarizes where the tenant stands against its
// limits. A limit of 0 means unlimited; remaining is reported as -1.
func (r *UsageRepository) GetQuotaStatus(ctx context.Context, tenantID string, dailyLimit, monthlyLimit int) (*QuotaStatus, error) {
	todaySent, _, _, _ := r.GetTodayUsage(ctx, tenantID)
	monthSent, _, _, err := r.GetMonthUsage(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	status := &QuotaStatus{
		DailyLimit:   dailyLimit,
		MonthlyLimit: monthlyLimit,
		TodaySent:    todaySent,
		MonthSent:    monthSent,
	}

	if dailyLimit > 0 {
		status.DailyRemaining = dailyLimit - todaySent
		if status.DailyRemaining < 0 {
			status.DailyRemaining = 0
		}
		status.DailyPercent = (todaySent * 100) / dailyLimit
		if status.DailyPercent > 100 {
			status.DailyPercent = 100
		}
	} else {
		status.DailyRemaining = -1
	}

	if monthlyLimit > 0 {
		status.MonthlyRemaining = monthlyLimit - monthSent
		if status.MonthlyRemaining < 0 {
			status.MonthlyRemaining = 0
		}
		status.MonthlyPercent = (monthSent * 100) / monthlyLimit
		if status.MonthlyPercent > 100 {
			status.MonthlyPercent = 100
		}
	} else {
		status.MonthlyRemaining = -1
	}

	return status, nil
}

// CanSend checks the tenant's quotas before an outbound message.
func (r *UsageRepository) CanSend(ctx context.Context, tenantID string, dailyLimit, monthlyLimit int) (bool, string) {
	todaySent, _, _, _ := r.GetTodayUsage(ctx, tenantID)
	monthSent, _, _, _ := r.GetMonthUsage(ctx, tenantID)

	if dailyLimit > 0 && todaySent >= dailyLimit {
		return false, "daily message limit reached"
	}
	if monthlyLimit > 0 && monthSent >= monthlyLimit {
		return false, "monthly message limit reached"
	}
	return true, ""
}
