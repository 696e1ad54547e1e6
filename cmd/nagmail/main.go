package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/smckee/nagmail/pkg/alert"
	"github.com/smckee/nagmail/pkg/auth"
	"github.com/smckee/nagmail/pkg/config"
	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/logger"
	"github.com/smckee/nagmail/pkg/mail"
	"github.com/smckee/nagmail/pkg/reminder"
	"github.com/smckee/nagmail/pkg/token"
	"github.com/smckee/nagmail/pkg/web"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "nagmail",
	Short: "Recurring-task reminders over email with magic-link login",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web application and the daily reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := boot(); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		bridge, dispatcher, err := buildCore()
		if err != nil {
			return err
		}

		go db.StartSessionCleanup(ctx, db.SessionCleanupInterval)
		go func() {
			cfg := config.AppConfig.Reminders
			if err := reminder.StartScheduler(ctx, dispatcher, cfg.SendAt, cfg.Timezone); err != nil {
				logger.Error("reminder scheduler stopped", "error", err)
			}
		}()

		server := web.NewServer(bridge)
		return server.ListenAndServe(config.AppConfig.Server.Listen)
	},
}

var sendRemindersCmd = &cobra.Command{
	Use:   "send-reminders",
	Short: "Run one reminder cycle and exit (for external cron)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := boot(); err != nil {
			return err
		}
		_, dispatcher, err := buildCore()
		if err != nil {
			return err
		}
		stats := dispatcher.RunCycle(cmd.Context(), time.Now().UTC())
		if stats.Failed > 0 {
			return fmt.Errorf("%d of %d reminders failed", stats.Failed, stats.Examined)
		}
		return nil
	},
}

func boot() error {
	if err := config.LoadConfig(configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}
	if err := db.InitDB(config.AppConfig.Database); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	return nil
}

func buildCore() (*auth.Bridge, *reminder.Dispatcher, error) {
	cfg := config.AppConfig

	sender, err := mail.NewSender(cfg.Mail)
	if err != nil {
		return nil, nil, err
	}
	codec := token.NewCodec(cfg.Server.Secret)

	bridge := &auth.Bridge{
		Codec:      codec,
		Mailer:     sender,
		BaseURL:    cfg.Server.BaseURL,
		SessionTTL: time.Duration(cfg.Server.SessionTTLDays) * 24 * time.Hour,
	}

	dispatcher := &reminder.Dispatcher{
		Codec:   codec,
		Mailer:  sender,
		BaseURL: cfg.Server.BaseURL,
	}
	notifier, err := alert.NewTelegramNotifier(cfg.Telegram)
	if err != nil {
		logger.Error("failed to set up telegram alerts", "error", err)
	} else if notifier != nil {
		dispatcher.Alerter = notifier
	}

	return bridge, dispatcher, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendRemindersCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
