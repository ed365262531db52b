package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AzielCF/az-giveaway/bot"
	"github.com/AzielCF/az-giveaway/dialogue"
	"github.com/AzielCF/az-giveaway/infrastructure/telegram"
	"github.com/AzielCF/az-giveaway/usecase"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot and reminder dispatcher",
	Run:   runBot,
}

var reminderInterval time.Duration

func init() {
	botCmd.Flags().DurationVar(&reminderInterval, "reminder-interval", time.Minute, "How often to scan for due reminders")
	rootCmd.AddCommand(botCmd)
}

func runBot(_ *cobra.Command, _ []string) {
	if cfg.Telegram.Token == "" {
		logrus.Fatalln("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	messenger, err := telegram.NewClient(cfg.Telegram)
	if err != nil {
		logrus.Fatalf("Failed to start telegram client: %v", err)
	}

	conv := dialogue.New(sessionStore, giveawayUsecase, messenger, cfg.Session.TTL)
	router := bot.New(giveawayUsecase, extractEngine, conv, sessionStore, messenger, cfg.Session.TTL)
	dispatcher := usecase.NewReminderDispatcher(giveawayRepo, messenger, reminderInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go dispatcher.Run(ctx)

	messenger.Run(ctx, router)

	logrus.Info("[BOT] Shutting down")
	StopApp()
}
