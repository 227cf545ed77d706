package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/visionmakers/backend/internal/admins"
	"github.com/visionmakers/backend/internal/auth"
	"github.com/visionmakers/backend/internal/config"
	"github.com/visionmakers/backend/internal/consultation"
	"github.com/visionmakers/backend/internal/database"
	"github.com/visionmakers/backend/internal/logging"
	"github.com/visionmakers/backend/internal/notification"
	"github.com/visionmakers/backend/internal/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "visionmakers-api",
		Short: "VisionMakers consultation intake backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("auth.token_ttl_minutes"), "Admin token TTL in minutes")
	cmd.PersistentFlags().String("signing-secret", "", "Admin token signing secret (overrides env)")
	cmd.PersistentFlags().String("admin-email", defaults.GetString("admin.email"), "Bootstrap admin email")
	cmd.PersistentFlags().String("admin-password", "", "Bootstrap admin password (overrides env)")
	cmd.PersistentFlags().String("slack-webhook-url", defaults.GetString("slack.webhook_url"), "Slack incoming webhook URL")
	cmd.PersistentFlags().Int("poll-seconds", defaults.GetInt("notifications.poll_seconds"), "Notification poll interval in seconds")
	cmd.PersistentFlags().Int("fetch-limit", defaults.GetInt("notifications.fetch_limit"), "Notification fetch batch size")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.token_ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
	bindFlag(cmd, "admin.email", "admin-email")
	bindFlag(cmd, "admin.password", "admin-password")
	bindFlag(cmd, "slack.webhook_url", "slack-webhook-url")
	bindFlag(cmd, "notifications.poll_seconds", "poll-seconds")
	bindFlag(cmd, "notifications.fetch_limit", "fetch-limit")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	idProvider := consultation.NewUUIDProvider()

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        "visionmakers-api",
		Audience:      "visionmakers-admin",
		TokenTTL:      appConfig.TokenTTL,
	})

	adminService, err := admins.NewService(admins.ServiceConfig{
		Database:   db,
		IDProvider: idProvider,
	})
	if err != nil {
		return err
	}
	if err := adminService.EnsureBootstrapAdmin(ctx, appConfig.AdminEmail, appConfig.AdminPassword); err != nil {
		return err
	}

	consultationService, err := consultation.NewService(consultation.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	notificationStore, err := notification.NewStore(notification.StoreConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	reconciler := notification.NewReconciler(notification.ReconcilerConfig{
		Persister: notificationStore,
		Logger:    logger,
	})
	poller := notification.NewPoller(notification.PollerConfig{
		Fetcher:    notificationStore,
		Reconciler: reconciler,
		Interval:   appConfig.PollInterval,
		Limit:      appConfig.FetchLimit,
		Logger:     logger,
	})

	slackNotifier := notification.NewSlackNotifier(appConfig.SlackWebhookURL, logger)

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager:  tokenManager,
		Admins:        adminService,
		Consultations: consultationService,
		Notifications: notificationStore,
		Reconciler:    reconciler,
		Poller:        poller,
		Slack:         slackNotifier,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)

	group.Go(func() error {
		return poller.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
