package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shreeglass/erp-backend/api/controllers"
	"github.com/shreeglass/erp-backend/api/routes"
	"github.com/shreeglass/erp-backend/internal/artifacts"
	"github.com/shreeglass/erp-backend/internal/auth"
	"github.com/shreeglass/erp-backend/internal/cms"
	"github.com/shreeglass/erp-backend/internal/cron"
	"github.com/shreeglass/erp-backend/internal/jobwork"
	"github.com/shreeglass/erp-backend/internal/notify"
	"github.com/shreeglass/erp-backend/internal/numbering"
	"github.com/shreeglass/erp-backend/internal/orders"
	"github.com/shreeglass/erp-backend/internal/payments"
	"github.com/shreeglass/erp-backend/internal/production"
	"github.com/shreeglass/erp-backend/internal/reports"
	"github.com/shreeglass/erp-backend/internal/settings"
	"github.com/shreeglass/erp-backend/internal/vendors"
	"github.com/shreeglass/erp-backend/pkg/config"
	"github.com/shreeglass/erp-backend/pkg/db"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/mailer"
	"github.com/shreeglass/erp-backend/pkg/metrics"
	"github.com/shreeglass/erp-backend/pkg/migrate"
	"github.com/shreeglass/erp-backend/pkg/razorpay"
	"github.com/shreeglass/erp-backend/pkg/redis"
	"github.com/shreeglass/erp-backend/pkg/whatsapp"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	gateway, err := razorpay.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	renderer := artifacts.NewRenderer(cfg.Artifacts)
	pool := artifacts.NewPool(cfg.Artifacts.WorkerPool, logg)
	defer pool.Close()

	notifySvc := notify.NewService(
		notify.NewMailerSender(mailer.New(cfg.SMTP)),
		notify.NewWhatsAppClientSender(whatsapp.NewClient(cfg.WhatsApp)),
		redisClient,
		logg,
	)
	hooks := notify.NewHooks(notifySvc, renderer, pool, logg)

	numbers := numbering.NewService()
	settingsSvc := settings.NewService(settings.NewRepository(dbClient.DB()), redisClient, logg)
	productionSvc := production.NewService(dbClient, production.NewRepository(dbClient.DB()), numbers, logg)
	ordersSvc := orders.NewService(
		dbClient,
		orders.NewRepository(dbClient.DB()),
		numbers,
		settingsSvc,
		productionSvc,
		hooks,
		cfg.Tax.SellerStateCode,
		logg,
	)
	jobworkSvc := jobwork.NewService(
		dbClient,
		jobwork.NewRepository(dbClient.DB()),
		numbers,
		hooks,
		cfg.Tax.SellerStateCode,
		logg,
	)
	paymentsSvc := payments.NewService(ordersSvc, gateway, cfg.Gateway.KeyID, logg)
	reportsSvc := reports.NewService(dbClient.DB())
	cmsSvc := cms.NewService(cms.NewRepository(dbClient.DB()), logg)
	vendorsSvc := vendors.NewService(vendors.NewRepository(dbClient.DB()), logg)
	authSvc := auth.NewService(auth.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password, logg)

	schedulerSvc, err := buildScheduler(cfg, logg, dbClient, redisClient, reportsSvc, notifySvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(
		cfg,
		logg,
		redisClient,
		map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		routes.Services{
			Auth:       authSvc,
			Orders:     ordersSvc,
			Jobwork:    jobworkSvc,
			Production: productionSvc,
			Payments:   paymentsSvc,
			Reports:    reportsSvc,
			CMS:        cmsSvc,
			Vendors:    vendorsSvc,
			Settings:   settingsSvc,
			Scheduler:  schedulerSvc,
			Renderer:   renderer,
		},
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{Addr: addr, Handler: router}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildScheduler wires the job registry without starting the ticker; the
// API only exposes manual runs and history, the cron worker owns the clock.
func buildScheduler(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	reportsSvc *reports.Service,
	notifySvc *notify.Service,
) (*cron.Service, error) {
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
		return nil, err
	}
	plReport, err := cron.NewPLReportJob(cron.PLReportJobParams{
		Logger:      logg,
		Reports:     reportsSvc,
		Alerts:      notifySvc,
		AdminEmails: cfg.Scheduler.AdminEmailList(),
		Spec:        cfg.Scheduler.PLReportSpec,
	})
	if err != nil {
		return nil, err
	}
	vendorSummary, err := cron.NewVendorSummaryJob(cron.VendorSummaryJobParams{
		Logger:      logg,
		Reports:     reportsSvc,
		Alerts:      notifySvc,
		AdminEmails: cfg.Scheduler.AdminEmailList(),
		Spec:        cfg.Scheduler.VendorSummarySpec,
	})
	if err != nil {
		return nil, err
	}
	registry := cron.NewRegistry(paymentAlerts, plReport, vendorSummary)

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
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
}
