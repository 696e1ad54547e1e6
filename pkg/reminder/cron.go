package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smckee/nagmail/pkg/logger"
)

// StartScheduler runs the reminder cycle once a day at sendAt (HH:MM)
// in the given timezone and blocks until ctx is done.
func StartScheduler(ctx context.Context, d *Dispatcher, sendAt, tzName string) error {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return fmt.Errorf("load scheduler timezone: %w", err)
	}
	spec, err := dailySpec(sendAt)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() {
		d.RunCycle(ctx, time.Now().UTC())
	}); err != nil {
		return fmt.Errorf("schedule reminder cycle: %w", err)
	}

	logger.Info("reminder scheduler started", "send_at", sendAt, "timezone", tzName)
	c.Start()
	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

func dailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
