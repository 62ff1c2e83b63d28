// Command server runs the credit request intake API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/aramkechichian/fintech-credits/internal/audit"
	"github.com/aramkechichian/fintech-credits/internal/bankprovider"
	"github.com/aramkechichian/fintech-credits/internal/config"
	"github.com/aramkechichian/fintech-credits/internal/db"
	"github.com/aramkechichian/fintech-credits/internal/http/api"
	"github.com/aramkechichian/fintech-credits/internal/logging"
	"github.com/aramkechichian/fintech-credits/internal/mail"
	"github.com/aramkechichian/fintech-credits/internal/rules"
	"github.com/aramkechichian/fintech-credits/internal/security"
	"github.com/aramkechichian/fintech-credits/internal/validation"
)

// shutdownTimeout bounds how long in-flight requests may run during shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, errLoad := config.Load(*configPath)
	if errLoad != nil {
		log.WithError(errLoad).Fatal("load configuration")
	}
	logging.Setup(cfg.Logging)

	if errRun := run(cfg); errRun != nil {
		log.WithError(errRun).Fatal("server exited")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	ruleStore := rules.NewStore(conn)
	if errSeed := ruleStore.SeedDefaults(ctx); errSeed != nil {
		return errSeed
	}
	if errAdmin := db.EnsureAdminUser(ctx, conn, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); errAdmin != nil {
		return errAdmin
	}

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.RegisterRoutes(router, api.Deps{
		DB:           conn,
		JWT:          cfg.JWT,
		Rules:        ruleStore,
		Validator:    validation.NewValidator(ruleStore),
		Audit:        audit.NewStore(conn),
		Mail:         mail.NewSender(cfg.SMTP),
		Bank:         bankprovider.NewClient(""),
		LoginLimiter: security.NewLoginLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	select {
	case errServe := <-errCh:
		return errServe
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
