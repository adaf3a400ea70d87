package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/app"
	"github.com/noah-isme/academy-admin/internal/handler"
	"github.com/noah-isme/academy-admin/internal/middleware"
	"github.com/noah-isme/academy-admin/pkg/config"
	"github.com/noah-isme/academy-admin/pkg/logger"
	reqidmiddleware "github.com/noah-isme/academy-admin/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Session.UsesDefaultSecret() {
		logr.Warn("SECRET_KEY is not set, using the development session secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("startup failed", "error", err)
	}
	defer a.Close() //nolint:errcheck

	generated, err := a.BootstrapAdmin(ctx)
	if err != nil {
		logr.Sugar().Fatalw("bootstrap admin failed", "error", err)
	}
	if generated != "" {
		fmt.Fprintf(os.Stderr, "Administrador %q criado com a senha: %s\n", cfg.Bootstrap.AdminUsername, generated)
	}

	tmpl, err := handler.Templates()
	if err != nil {
		logr.Sugar().Fatalw("failed to parse templates", "error", err)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(a.Metrics))
	r.Use(middleware.Session(a.Auth, cfg.Session.CookieName))
	r.SetHTMLTemplate(tmpl)

	handler.RegisterRoutes(r, handler.Handlers{
		Auth: handler.NewAuthHandler(a.Auth, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Env == config.EnvProduction,
		}),
		Home:     handler.NewHomeHandler(a.Academies),
		Students: handler.NewStudentHandler(a.Students, a.Academies, cfg.Web.AcademyID),
		Reports:  handler.NewReportHandler(a.Reports),
		Metrics:  handler.NewMetricsHandler(a.Metrics, a.Store),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}
