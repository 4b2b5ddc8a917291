package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shreeglass/erp-backend/internal/cron"
	"github.com/shreeglass/erp-backend/internal/notify"
	"github.com/shreeglass/erp-backend/internal/reports"
	"github.com/shreeglass/erp-backend/pkg/config"
	"github.com/shreeglass/erp-backend/pkg/db"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/mailer"
	"github.com/shreeglass/erp-backend/pkg/metrics"
	"github.com/shreeglass/erp-backend/pkg/migrate"
	"github.com/shreeglass/erp-backend/pkg/redis"
	"github.com/shreeglass/erp-backend/pkg/whatsapp"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	notifySvc := notify.NewService(
		notify.NewMailerSender(mailer.New(cfg.SMTP)),
		notify.NewWhatsAppClientSender(whatsapp.NewClient(cfg.WhatsApp)),
		redisClient,
		logg,
	)
	reportsSvc := reports.NewService(dbClient.DB())

	paymentAlerts, err := cron.NewPaymentAlertsJob(cron.PaymentAlertsJobParams{
		Logger:       logg,
		Reports:      reportsSvc,
		Alerts:       notifySvc,
		WhatsApp:     notifySvc,
		AdminEmails:  cfg.Scheduler.AdminEmailList(),
		AdminNumbers: cfg.Scheduler.AdminWhatsAppList(),
		Spec:         cfg.Scheduler.PaymentAlertsSpec,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment alerts job", err)
		os.Exit(1)
	}
	plReport, err := cron.NewPLReportJob(cron.PLReportJobParams{
		Logger:      logg,
		Reports:     reportsSvc,
		Alerts:      notifySvc,
		AdminEmails: cfg.Scheduler.AdminEmailList(),
		Spec:        cfg.Scheduler.PLReportSpec,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pl report job", err)
		os.Exit(1)
	}
	vendorSummary, err := cron.NewVendorSummaryJob(cron.VendorSummaryJobParams{
		Logger:      logg,
		Reports:     reportsSvc,
		Alerts:      notifySvc,
		AdminEmails: cfg.Scheduler.AdminEmailList(),
		Spec:        cfg.Scheduler.VendorSummarySpec,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor summary job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(paymentAlerts, plReport, vendorSummary),
		DB:       dbClient.DB(),
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Timezone: cfg.Scheduler.Timezone,
		LockFor: func(job string) cron.Lock {
			lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron:"+job), 0)
			if err != nil {
				return nil
			}
			return lock
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"timezone":    cfg.Scheduler.Timezone,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start cron worker", err)
		os.Exit(1)
	}

	<-ctx.Done()
	service.Stop()
	logg.Info(ctx, "cron worker shutting down gracefully")
}
