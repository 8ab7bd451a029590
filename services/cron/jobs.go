package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/drjulio/clinic-api/model"
)

// how far ahead the reminder job looks for closing access windows
const reminderLeadTime = 7 * 24 * time.Hour

// SendExpirationReminders emails students whose course access ends seven
// days from now. The one-day slice keeps a daily run from mailing the same
// student twice.
func (m *CronManager) SendExpirationReminders() {
	jobName := "send_expiration_reminders"

	from := time.Now().Add(reminderLeadTime)
	to := from.Add(24 * time.Hour)

	enrollments, err := m.enrollments.ExpiringBetween(from, to)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	if len(enrollments) == 0 {
		m.logJobComplete(jobName, "No expiring enrollments")
		return
	}

	sent := 0
	failed := 0
	for _, enrollment := range enrollments {
		if err := m.mailer.SendExpirationReminder(&enrollment); err != nil {
			log.Printf("[CRON] Failed to send reminder for enrollment %d: %v", enrollment.ID, err)
			failed++
			continue
		}
		sent++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Sent %d reminders, %d failed", sent, failed))
}

// CleanupCronLogs removes execution logs older than 30 days
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old logs", result.RowsAffected))
}
