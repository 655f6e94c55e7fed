package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resort/internal/config"
	"resort/internal/middleware"
	"resort/internal/modules/auth"
	"resort/internal/modules/booking"
	"resort/internal/modules/catalog"
	"resort/internal/modules/invoice"
	"resort/internal/modules/nightaudit"
	"resort/internal/modules/payment"
	"resort/internal/modules/realtime"
	"resort/internal/modules/servicebooking"
	"resort/internal/notification"
	jwtsvc "resort/internal/pkg/jwt"
	"resort/internal/pkg/lock"
	"resort/internal/repository"
)

// app holds the wired services behind the HTTP router.
type app struct {
	router   *gin.Engine
	hub      *realtime.Hub
	notifier *notification.Notifier
	audit    *nightaudit.Service
	gateways int
}

func newApp(cfg *config.Config, store *repository.Store, locks lock.Locker, mailer notification.Mailer, lg *zap.Logger) *app {
	hub := realtime.NewHub(lg)
	notifier := notification.NewNotifier(mailer, hub, lg)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	pricing := booking.NewPricing(cfg.CurrencyDecimals, cfg.DepositRate)

	bookingService := booking.NewService(store, pricing, locks, notifier, lg,
		booking.WithLocation(cfg.Location),
		booking.WithCurrency(cfg.Currency),
	)
	invoiceService := invoice.NewService(store, pricing, cfg.TaxRate, notifier, lg, invoice.WithLocation(cfg.Location))
	paymentLedger := invoice.NewPaymentService(store, notifier, lg, invoice.WithLocation(cfg.Location))
	serviceBookings := servicebooking.NewService(store, pricing, notifier, lg, servicebooking.WithLocation(cfg.Location))
	catalogService := catalog.NewService(store, lg, catalog.WithLocation(cfg.Location))
	authService := auth.NewService(store.Users, tokens, lg)

	var gateways []payment.Gateway
	if cfg.MoMo.Enabled() {
		gateways = append(gateways, payment.NewMoMo(cfg.MoMo, nil))
	}
	if cfg.Stripe.Enabled() {
		gateways = append(gateways, payment.NewStripe(cfg.Stripe, cfg.Currency, cfg.CurrencyDecimals))
	}
	onlinePayments := payment.NewService(store, bookingService, notifier, lg, gateways...)
	audit := nightaudit.NewService(store, bookingService.Machine(), notifier, lg, nil)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(lg), middleware.CORS(cfg.CORSAllowedOrigins))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": hub.OnlineCount()})
	})

	authHandler := auth.NewHandler(authService, lg)
	paymentHandler := payment.NewHandler(onlinePayments, lg)

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.NewRateLimiter(cfg.CallbackRatePerMin, lg).Middleware())
		authHandler.RegisterPublicRoutes(public)
		paymentHandler.RegisterPublicRoutes(public)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens))
		authHandler.RegisterProtectedRoutes(protected)
		catalog.NewHandler(catalogService, lg).RegisterRoutes(protected)
		booking.NewHandler(bookingService, lg).RegisterRoutes(protected)
		servicebooking.NewHandler(serviceBookings, lg).RegisterRoutes(protected)
		invoice.NewHandler(invoiceService, paymentLedger, lg).RegisterRoutes(protected)
		paymentHandler.RegisterProtectedRoutes(protected)
		nightaudit.NewHandler(audit, cfg.Location, lg).RegisterRoutes(protected)
		realtime.NewHandler(hub, cfg.CORSAllowedOrigins).RegisterRoutes(protected)
	}

	return &app{
		router:   r,
		hub:      hub,
		notifier: notifier,
		audit:    audit,
		gateways: len(gateways),
	}
}

// Close waits for queued notifications, then drops websocket clients.
func (a *app) Close() {
	a.notifier.Wait()
	a.hub.Close()
}
