// Package cmd wires the dependency graph and exposes the bot and rest
// subcommands.
package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/AzielCF/az-giveaway/config"
	"github.com/AzielCF/az-giveaway/core/database"
	"github.com/AzielCF/az-giveaway/dialogue/session"
	"github.com/AzielCF/az-giveaway/extractor"
	"github.com/AzielCF/az-giveaway/infrastructure/valkey"
	"github.com/AzielCF/az-giveaway/repository"
	"github.com/AzielCF/az-giveaway/usecase"
)

var (
	cfg *config.Config
	db  *gorm.DB

	giveawayRepo    *repository.GiveawayRepository
	giveawayUsecase *usecase.GiveawayUsecase
	extractEngine   *extractor.Engine
	sessionStore    session.Store

	valkeyClient *valkey.Client
)

var rootCmd = &cobra.Command{
	Use:   "az-giveaway",
	Short: "Giveaway tracking bot with image and URL extraction",
	Long: `Tracks giveaways through a Telegram bot: screenshots and post links
are turned into structured entries, deadlines get reminders, and a REST
dashboard exposes the collected data.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().String("port", "", "HTTP port for the dashboard")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver (sqlite or postgres)")

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("db_driver", rootCmd.PersistentFlags().Lookup("db-driver"))

	cobra.OnInitialize(initApp)
}

// initApp loads configuration and builds the shared dependency graph. Runs
// once before any subcommand.
func initApp() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags win over environment.
	if v := viper.GetString("app_port"); v != "" {
		cfg.App.Port = v
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if v := viper.GetString("db_driver"); v != "" {
		cfg.Database.Driver = v
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := os.MkdirAll(cfg.Paths.Storages, 0o755); err != nil {
		logrus.Fatalf("Failed to create storage directory: %v", err)
	}

	db, err = database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	giveawayRepo = repository.NewGiveawayRepository(db)
	if err := giveawayRepo.Init(context.Background()); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	giveawayUsecase = usecase.NewGiveawayUsecase(giveawayRepo, nil)
	extractEngine = extractor.NewEngine(cfg.Extract)
	sessionStore = buildSessionStore()
}

// buildSessionStore prefers Valkey when enabled so conversations survive
// restarts; otherwise state lives in process memory.
func buildSessionStore() session.Store {
	if !cfg.Session.ValkeyEnabled {
		logrus.Info("[SESSION] Using in-memory conversation store")
		return session.NewMemoryStore()
	}

	client, err := valkey.NewClient(valkey.Config{
		Address:   cfg.Session.ValkeyAddress,
		Password:  cfg.Session.ValkeyPassword,
		DB:        cfg.Session.ValkeyDB,
		KeyPrefix: cfg.Session.ValkeyKeyPrefix,
	})
	if err != nil {
		logrus.WithError(err).Warn("[SESSION] Valkey unavailable, falling back to in-memory store")
		return session.NewMemoryStore()
	}

	valkeyClient = client
	logrus.Infof("[SESSION] Using Valkey conversation store at %s", cfg.Session.ValkeyAddress)
	return session.NewValkeyStore(client)
}

// StopApp releases shared resources on shutdown.
func StopApp() {
	if valkeyClient != nil {
		valkeyClient.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
