package utils

import (
	"context"
	"fmt"
	"time"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeDigestScheduler starts the cron job that mails the daily admin
// summary. It returns nil when no admin address is configured.
func InitializeDigestScheduler() *cron.Cron {
	cfg := config.Current()
	if cfg.AdminNotifyMail == "" {
		logger.Log.Info("admin digest disabled, ADMIN_NOTIFY_EMAIL not set")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.DigestCron, func() {
		logger.Log.Info("building daily digest")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := SendDailyDigest(ctx, database.Database.Db, time.Now()); err != nil {
			logger.Log.Error("daily digest failed", "error", err)
		}
	})
	if err != nil {
		logger.Log.Error("invalid DIGEST_CRON", "schedule", cfg.DigestCron, "error", err)
		return nil
	}

	c.Start()
	logger.Log.Info("digest scheduler started", "schedule", cfg.DigestCron)
	return c
}

// SendDailyDigest mails the admin the platform totals, the most popular
// courses and the contact messages received in the 24 hours before now.
func SendDailyDigest(ctx context.Context, db *gorm.DB, now time.Time) error {
	stats := repositories.NewStatsRepository(db)
	dash, err := stats.Dashboard(ctx, 0)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	popular, err := stats.PopularCourses(ctx, 3)
	if err != nil {
		return fmt.Errorf("popular courses: %w", err)
	}
	contacts, err := repositories.NewContactRepository(db).CreatedSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("contacts: %w", err)
	}

	lines := []DigestLine{
		{Label: "Users", Value: fmt.Sprint(dash.TotalUsers)},
		{Label: "Published courses", Value: fmt.Sprintf("%d of %d", dash.PublishedCourses, dash.TotalCourses)},
		{Label: "Enrollments", Value: fmt.Sprint(dash.TotalEnrollments)},
		{Label: "Completed enrollments", Value: fmt.Sprint(dash.Completions)},
		{Label: "Unread contact messages", Value: fmt.Sprint(dash.UnreadContacts)},
	}
	for i, r := range popular {
		lines = append(lines, DigestLine{
			Label: fmt.Sprintf("Popular #%d", i+1),
			Value: fmt.Sprintf("%s (score %.1f, %.1f%% completion)", r.Course.Title, r.Score, r.CompletionRate),
		})
	}

	subject := fmt.Sprintf("Daily summary %s", now.Format("2006-01-02"))
	return SendEmail([]string{config.Current().AdminNotifyMail}, subject, BuildDigestEmail(lines, contacts))
}
