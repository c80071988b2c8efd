package cron

import (
	"fmt"
	"time"

	"thesistrack/backend/model"
)

// DeactivateExpiredDeadlines marks active deadlines whose date has
// passed as inactive so they drop out of upcoming listings.
func (m *CronManager) DeactivateExpiredDeadlines() {
	jobName := "deactivate_expired_deadlines"

	count, err := m.deadlines.DeactivateExpired()
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to deactivate deadlines: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deactivated %d expired deadlines", count))
}

// CleanupOldJobLogs removes cron job logs older than 30 days
func (m *CronManager) CleanupOldJobLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old job logs", result.RowsAffected))
}
