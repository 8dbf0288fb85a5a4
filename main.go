package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"milk-backend/config"
	"milk-backend/realtime"
	"milk-backend/routes"
	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := config.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var relay realtime.Relay
	if cfg.RedisURL != "" {
		client, err := realtime.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		relay = realtime.NewRedisRelay(client, "", log)
	}

	broker := realtime.NewBroker(relay, log)
	if err := broker.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start event broker")
	}
	hub := realtime.NewHub(broker, log)
	go hub.Run(ctx)

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.TwilioEnabled() {
		notifier = services.NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.TwilioWhatsApp, log)
	} else {
		log.Info("Twilio credentials not set, reservation confirmations disabled")
	}

	loc := cfg.Location()
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	mirror := services.NewAccountMirror(db, log)

	scheduler, err := services.StartReconcileScheduler(cfg.ReconcileSchedule, mirror, log)
	if err != nil {
		log.WithError(err).Fatal("invalid RECONCILE_SCHEDULE")
	}

	limiter := utils.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	limiterStop := make(chan struct{})
	limiter.StartCleanup(10*time.Minute, limiterStop)

	reservations := services.NewReservationService(db, broker, notifier, log)

	gin.SetMode(gin.ReleaseMode)
	r := routes.SetupRouter(routes.Deps{
		Config:       cfg,
		Log:          log,
		Tokens:       tokens,
		AuthLimiter:  limiter,
		Hub:          hub,
		Accounts:     services.NewAccountService(db, tokens, log),
		Ledger:       services.NewLedgerService(db, mirror, broker, loc, log),
		Orders:       services.NewOrderService(db, broker, log),
		Reservations: reservations,
		Promotions:   services.NewPromotionService(db, broker),
		Products:     services.NewProductService(db),
		Stats:        services.NewStatsService(db, loc),
	})
	printRoutes(log, r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Milk backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}

	reservations.Wait()
	<-scheduler.Stop().Done()
	close(limiterStop)
	if err := broker.Close(); err != nil {
		log.WithError(err).Warn("broker close")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func printRoutes(log logrus.FieldLogger, r *gin.Engine) {
	for _, route := range r.Routes() {
		log.Debugf("%-6s %s", route.Method, route.Path)
	}
}
