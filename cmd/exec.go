package cmd

import (
	"log"
	"net/http"

	"ticket-resale/config"
	"ticket-resale/internal/handlers"
	"ticket-resale/internal/services"
	"ticket-resale/internal/services/gateway/razorpay"
	"ticket-resale/internal/services/mirror"
	_ "ticket-resale/migrations"
	"ticket-resale/monitoring"
	"ticket-resale/security"
	"ticket-resale/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub (optional, seller notifications only)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		pn = pubnub.NewPubNub(pnConfig)
	}

	// Initialize services
	lockService := services.NewSaleLockService(redisClient, cfg.SaleLockTTL)
	notifier := services.NewSaleNotifier(pn)
	verifier := razorpay.NewVerifier(cfg.RazorpayKeySecret)
	mirrorClient := mirror.New(&mirror.ClientConfig{
		BaseURL:    cfg.MirrorBaseURL,
		ServiceKey: cfg.MirrorServiceKey,
		AnonKey:    cfg.MirrorAnonKey,
	})
	if mirrorClient == nil {
		log.Println("Mirror store not configured, passenger name mirroring disabled")
	}

	// Initialize handlers
	saleHandler := handlers.NewSaleHandler(app, cfg, lockService, notifier, verifier, mirrorClient)

	// Middleware
	corsCfg := &security.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultOrigin:  cfg.DefaultOrigin,
	}
	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Metrics listener
	if cfg.EnableMetrics {
		monitoring.StartMetricsServer(cfg.MetricsPort)
	}

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		e.Router.BindFunc(security.CORSMiddleware(corsCfg))

		// Sale endpoints
		e.Router.POST("/api/v1/sales/confirm", saleHandler.ConfirmSale).
			BindFunc(rateLimiter.ConfirmRateLimit())
		e.Router.GET("/api/v1/sales/{ticketId}/status", saleHandler.GetSaleStatus)

		// Preflight for clients that send OPTIONS before POST
		e.Router.Route(http.MethodOptions, "/api/v1/{path...}", security.PreflightHandler(corsCfg))

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}
