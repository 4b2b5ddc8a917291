package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shreeglass/erp-backend/api/controllers"
	"github.com/shreeglass/erp-backend/api/middleware"
	"github.com/shreeglass/erp-backend/internal/artifacts"
	internalauth "github.com/shreeglass/erp-backend/internal/auth"
	internalcms "github.com/shreeglass/erp-backend/internal/cms"
	internalcron "github.com/shreeglass/erp-backend/internal/cron"
	internaljobwork "github.com/shreeglass/erp-backend/internal/jobwork"
	internalorders "github.com/shreeglass/erp-backend/internal/orders"
	internalpayments "github.com/shreeglass/erp-backend/internal/payments"
	internalproduction "github.com/shreeglass/erp-backend/internal/production"
	internalreports "github.com/shreeglass/erp-backend/internal/reports"
	internalsettings "github.com/shreeglass/erp-backend/internal/settings"
	internalvendors "github.com/shreeglass/erp-backend/internal/vendors"
	"github.com/shreeglass/erp-backend/pkg/config"
	"github.com/shreeglass/erp-backend/pkg/enums"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth       *internalauth.Service
	Orders     *internalorders.Service
	Jobwork    *internaljobwork.Service
	Production *internalproduction.Service
	Payments   *internalpayments.Service
	Reports    *internalreports.Service
	CMS        *internalcms.Service
	Vendors    *internalvendors.Service
	Settings   *internalsettings.Service
	Scheduler  *internalcron.Service
	Renderer   *artifacts.Renderer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	health map[string]controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	admin := middleware.RequireRoles(logg, string(enums.UserRoleAdmin))
	accounts := middleware.RequireRoles(logg, string(enums.UserRoleAdmin), string(enums.UserRoleAccountant))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, health))
	})

	r.Route("/cms/public/blog", func(r chi.Router) {
		r.Get("/", controllers.BlogList(svcs.CMS, logg))
		r.Get("/{slug}", controllers.BlogGet(svcs.CMS, logg))
	})

	r.Post("/qr/verify", controllers.QRVerify(cfg.Artifacts, logg))

	r.Post("/api/v1/auth/login", controllers.AuthLogin(svcs.Auth, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(admin).Post("/users", controllers.AuthCreateUser(svcs.Auth, logg))
			r.Patch("/users/me/opt-ins", controllers.AuthUpdateOptIns(svcs.Auth, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersCreate(svcs.Orders, logg))
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/advance-options", controllers.OrdersAdvanceOptions(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrdersGet(svcs.Orders, logg))
			r.Get("/{orderId}/payments", controllers.OrdersPaymentEvents(svcs.Orders, logg))
			r.Patch("/{orderId}/stage", controllers.OrdersAdvanceStage(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrdersCancel(svcs.Orders, logg))
			r.With(admin).Delete("/{orderId}", controllers.OrdersDelete(svcs.Orders, logg))
		})

		r.Route("/jobwork", func(r chi.Router) {
			r.Post("/", controllers.JobworkCreate(svcs.Jobwork, logg))
			r.Get("/", controllers.JobworkList(svcs.Jobwork, logg))
			r.Get("/{jobworkId}", controllers.JobworkGet(svcs.Jobwork, logg))
			r.Patch("/{jobworkId}/stage", controllers.JobworkAdvanceStage(svcs.Jobwork, logg))
			r.With(accounts).Post("/{jobworkId}/payments", controllers.JobworkRecordPayment(svcs.Jobwork, logg))
		})

		r.Route("/production", func(r chi.Router) {
			r.Get("/", controllers.ProductionList(svcs.Production, logg))
			r.Get("/analytics", controllers.ProductionAnalytics(svcs.Production, logg))
			r.Get("/breakage", controllers.ProductionListBreakage(svcs.Production, logg))
			r.Get("/{cardId}", controllers.ProductionGet(svcs.Production, logg))
			r.Patch("/{cardId}/stage", controllers.ProductionAdvanceStage(svcs.Production, logg))
			r.Patch("/{cardId}/priority", controllers.ProductionSetPriority(svcs.Production, logg))
			r.Post("/{cardId}/breakage", controllers.ProductionRecordBreakage(svcs.Production, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/initiate", controllers.PaymentsInitiate(svcs.Payments, logg))
			r.Post("/verify", controllers.PaymentsVerify(svcs.Payments, logg))
			r.With(accounts).Post("/cash", controllers.PaymentsRecordCash(svcs.Payments, logg))
			r.With(admin).Post("/refund", controllers.PaymentsRecordRefund(svcs.Payments, logg))
			r.With(accounts).Post("/cash-preference", controllers.PaymentsCashPreference(svcs.Payments, logg))
		})

		r.Route("/pdf", func(r chi.Router) {
			r.Get("/invoice/{orderId}", controllers.PDFInvoice(svcs.Orders, svcs.Renderer, logg))
			r.Get("/dispatch-slip/{orderId}", controllers.PDFDispatchSlip(svcs.Orders, svcs.Renderer, logg))
			r.Get("/design-sheet/{orderId}", controllers.PDFDesignSheet(svcs.Orders, svcs.Renderer, logg))
			r.Get("/job-card/{jc}", controllers.PDFJobCard(svcs.Production, svcs.Orders, svcs.Renderer, logg))
			r.With(accounts).Get("/cash-daybook", controllers.PDFCashDaybook(svcs.Reports, svcs.Renderer, logg))
		})

		r.Route("/qr/job-card/{jc}", func(r chi.Router) {
			r.Get("/", controllers.QRJobCard(svcs.Production, cfg.Artifacts, logg))
			r.Get("/barcode", controllers.BarcodeJobCard(svcs.Production, logg))
			r.Get("/print-data", controllers.PrintData(svcs.Production, svcs.Orders, cfg.Artifacts, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(accounts)
			r.Get("/accounts/dashboard", controllers.ReportsDashboard(svcs.Reports, logg))
			r.Get("/profit-loss", controllers.ReportsProfitAndLoss(svcs.Reports, logg))
			r.Get("/gst-report", controllers.ReportsMonthlyGST(svcs.Reports, logg))
			r.Get("/revenue-chart", controllers.ReportsRevenueChart(svcs.Reports, logg))
			r.Get("/production-chart", controllers.ReportsProductionChart(svcs.Reports, logg))
			r.Get("/top-customers", controllers.ReportsTopCustomers(svcs.Reports, logg))
			r.Get("/vendor-summary", controllers.ReportsVendorSummary(svcs.Reports, logg))
			r.Get("/{kind}/export", controllers.ReportsExport(svcs.Reports, svcs.Renderer, logg))
		})

		r.Route("/cms/blog", func(r chi.Router) {
			r.Use(admin)
			r.Post("/", controllers.BlogCreate(svcs.CMS, logg))
			r.Put("/{postId}", controllers.BlogUpdate(svcs.CMS, logg))
		})

		r.Route("/settings/advance", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", controllers.SettingsGet(svcs.Settings, logg))
			r.Put("/", controllers.SettingsUpdate(svcs.Settings, logg))
		})

		r.Route("/scheduler/jobs/{job}", func(r chi.Router) {
			r.Use(admin)
			r.Post("/run", controllers.SchedulerRunNow(svcs.Scheduler, logg))
			r.Get("/history", controllers.SchedulerHistory(svcs.Scheduler, logg))
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Use(accounts)
			r.Post("/", controllers.VendorsCreate(svcs.Vendors, logg))
			r.Get("/", controllers.VendorsList(svcs.Vendors, logg))
			r.Post("/payments/{paymentId}/complete", controllers.VendorsCompletePayment(svcs.Vendors, logg))
			r.Get("/{vendorId}", controllers.VendorsGet(svcs.Vendors, logg))
			r.Get("/{vendorId}/purchase-orders", controllers.VendorsListPurchaseOrders(svcs.Vendors, logg))
			r.Post("/{vendorId}/purchase-orders", controllers.VendorsCreatePurchaseOrder(svcs.Vendors, logg))
			r.Get("/{vendorId}/payments", controllers.VendorsListPayments(svcs.Vendors, logg))
			r.Post("/{vendorId}/payments", controllers.VendorsRecordPayment(svcs.Vendors, logg))
		})
	})

	return r
}
