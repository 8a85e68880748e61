package utils

import (
	"context"
	"testing"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type sentMail struct {
	to, subject, body string
}

func captureMail(t *testing.T) *[]sentMail {
	t.Helper()
	var sent []sentMail
	prev := Mailer
	Mailer = func(to, subject, body string) error {
		sent = append(sent, sentMail{to: to, subject: subject, body: body})
		return nil
	}
	t.Cleanup(func() { Mailer = prev })
	return &sent
}

func TestSendDailyDigest(t *testing.T) {
	cfg := config.FromEnv()
	cfg.AdminNotifyMail = "admin@example.com"
	prev := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = prev })

	db := testutil.DB(t)
	testutil.SeedCourse(t, db, "go-basics", true, true)
	require.NoError(t, db.Create(&models.Contact{
		Name: "Ana", Email: "ana@example.com", Subject: "Invoice <question>", Message: "hi", Status: models.ContactStatusNew,
	}).Error)
	sent := captureMail(t)

	now := time.Now()
	require.NoError(t, SendDailyDigest(context.Background(), db, now))

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "admin@example.com", mail.to)
	assert.Equal(t, "Daily summary "+now.Format("2006-01-02"), mail.subject)
	assert.Contains(t, mail.body, "Invoice &lt;question&gt;")
	assert.Contains(t, mail.body, "Go-basics")
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestInitializeDigestSchedulerLogsThroughLogger(t *testing.T) {
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })

	logs := observeLogs(t)
	cfg := config.FromEnv()
	cfg.AdminNotifyMail = ""
	config.AppConfig = cfg
	assert.Nil(t, InitializeDigestScheduler())
	assert.Equal(t, 1, logs.FilterMessage("admin digest disabled, ADMIN_NOTIFY_EMAIL not set").Len())

	cfg.AdminNotifyMail = "admin@example.com"
	cfg.DigestCron = "not a schedule"
	assert.Nil(t, InitializeDigestScheduler())
	invalid := logs.FilterMessage("invalid DIGEST_CRON").All()
	require.Len(t, invalid, 1)
	assert.Equal(t, "not a schedule", invalid[0].ContextMap()["schedule"])

	cfg.DigestCron = "0 8 * * *"
	scheduler := InitializeDigestScheduler()
	require.NotNil(t, scheduler)
	<-scheduler.Stop().Done()
	assert.Equal(t, 1, logs.FilterMessage("digest scheduler started").Len())
}
