// Package reminder is the batch job that mails due-task reminders.
// Each due task gets at most one email per due date; acknowledging a
// task re-arms it by moving the due date forward.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/smckee/nagmail/pkg/alert"
	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/logger"
	"github.com/smckee/nagmail/pkg/mail"
	"github.com/smckee/nagmail/pkg/schedule"
	"github.com/smckee/nagmail/pkg/token"
)

type Dispatcher struct {
	Codec   *token.Codec
	Mailer  mail.Sender
	BaseURL string
	// Alerter is optional; when set, cycles with failures are
	// summarized to it.
	Alerter alert.Notifier
}

type CycleStats struct {
	Examined int
	Sent     int
	Skipped  int
	Failed   int
}

// RunCycle walks every task and sends a reminder to those that are
// due and not yet reminded for the current due date. Reminder mail is
// deliberately not rate limited: it is requested, expected mail,
// unlike requester-triggered login links.
//
// One task failing must not starve the rest; failures are logged and
// counted. The reminded stamp is written only after the transport
// accepted the message, guarded so a concurrent cycle cannot stamp
// the same due date twice.
func (d *Dispatcher) RunCycle(ctx context.Context, now time.Time) CycleStats {
	var stats CycleStats

	tasks, err := db.TasksWithOwners()
	if err != nil {
		logger.Error("failed to load tasks for reminder cycle", "error", err)
		stats.Failed++
		d.report(ctx, stats)
		return stats
	}

	for i := range tasks {
		stats.Examined++
		d.processTask(ctx, &tasks[i], now, &stats)
	}

	logger.Info("reminder cycle finished",
		"examined", stats.Examined, "sent", stats.Sent,
		"skipped", stats.Skipped, "failed", stats.Failed)
	d.report(ctx, stats)
	return stats
}

func (d *Dispatcher) processTask(ctx context.Context, task *db.Task, now time.Time, stats *CycleStats) {
	if !schedule.IsDue(task, task.User.Timezone, now) {
		stats.Skipped++
		return
	}
	due := db.ToDate(task.Due)
	if task.Reminded != nil && !task.Reminded.Before(due) {
		// Already reminded for this due date.
		stats.Skipped++
		return
	}

	link := token.LoginLink(d.BaseURL, fmt.Sprintf("/ack/%d", task.ID), d.Codec.Issue(task.UserID))
	msg := mail.ComposeReminder(task.User.Language, task.User.Email, task.Name, task.Description, link)
	if err := d.Mailer.Send(ctx, msg); err != nil {
		logger.Error("failed to send reminder",
			"task_id", task.ID, "user_id", task.UserID, "error", err)
		stats.Failed++
		return
	}

	today := localDate(now, task.User.Timezone)
	res := db.DB.Model(&db.Task{}).
		Where("id = ? AND (reminded IS NULL OR reminded < ?)", task.ID, due).
		Update("reminded", today)
	if res.Error != nil {
		logger.Error("failed to stamp reminder",
			"task_id", task.ID, "error", res.Error)
		stats.Failed++
		return
	}
	if res.RowsAffected == 0 {
		logger.Warn("reminder already stamped by a concurrent cycle", "task_id", task.ID)
	}

	logger.Info("sent reminder", "task_id", task.ID, "user_id", task.UserID, "email", task.User.Email)
	stats.Sent++
}

func (d *Dispatcher) report(ctx context.Context, stats CycleStats) {
	if d.Alerter == nil || stats.Failed == 0 {
		return
	}
	text := fmt.Sprintf("reminder cycle: %d failed, %d sent, %d examined",
		stats.Failed, stats.Sent, stats.Examined)
	if err := d.Alerter.Notify(ctx, text); err != nil {
		logger.Error("failed to deliver cycle alert", "error", err)
	}
}

func localDate(now time.Time, tzName string) time.Time {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return db.Date(local.Year(), local.Month(), local.Day())
}
