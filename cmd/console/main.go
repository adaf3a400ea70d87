package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/noah-isme/academy-admin/internal/app"
	"github.com/noah-isme/academy-admin/internal/console"
	"github.com/noah-isme/academy-admin/pkg/config"
	"github.com/noah-isme/academy-admin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "stderr")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("startup failed", "error", err)
	}
	defer a.Close() //nolint:errcheck

	shell := console.New(console.Services{
		Academies:   a.Academies,
		Students:    a.Students,
		Modalities:  a.Modalities,
		Coaches:     a.Coaches,
		Enrollments: a.Enrollments,
		Users:       a.Users,
		Reports:     a.Reports,
	}, a.Exports, console.Config{
		MaxLoginAttempts: cfg.Console.MaxLoginAttempts,
		AcademyID:        cfg.Web.AcademyID,
	}, os.Stdin, os.Stdout, logr)

	if err := shell.Run(ctx); err != nil {
		if !errors.Is(err, console.ErrLoginFailed) {
			logr.Sugar().Errorw("console stopped", "error", err)
		}
		_ = a.Close()
		os.Exit(1)
	}
}
