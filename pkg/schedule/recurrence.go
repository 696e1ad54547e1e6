// Package schedule holds the recurrence logic: when a task counts as
// due and how acknowledging one advances it.
package schedule

import (
	"fmt"
	"time"

	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/logger"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

// IsDue reports whether the task is due on the owner's local calendar
// date. The instant is converted into the owner's timezone first so a
// task due "today" in Auckland is due even while the server's UTC
// date lags behind.
func IsDue(task *db.Task, tzName string, now time.Time) bool {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", "timezone", tzName)
		loc = time.UTC
	}
	local := now.In(loc)
	localDate := db.Date(local.Year(), local.Month(), local.Day())
	return !localDate.Before(db.ToDate(task.Due))
}

// DefaultNextDue suggests the next due date from the recurrence
// interval. The interval is only ever a suggestion; the user picks
// the date that actually gets stored.
func DefaultNextDue(done time.Time, intervalDays int) time.Time {
	if intervalDays < 1 {
		intervalDays = 1
	}
	return db.ToDate(done).AddDate(0, 0, intervalDays)
}

// Acknowledge records one completion and moves the due date. The
// reminded marker is left alone: once due advances past it the next
// reminder re-arms on its own.
func Acknowledge(task *db.Task, done, nextDue time.Time) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		record := db.TaskDone{
			TaskID: task.ID,
			Done:   db.ToDate(done),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record completion: %w", err)
		}
		task.Due = db.ToDate(nextDue)
		if err := tx.Model(task).Update("due", task.Due).Error; err != nil {
			return fmt.Errorf("advance due date: %w", err)
		}
		return nil
	})
}
