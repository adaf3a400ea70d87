package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/app"
	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/config"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/logger"
)

var demoAcademies = []models.CreateAcademyRequest{
	{Name: "Academia Maricá Fight", Responsible: "Sensei João"},
	{Name: "Projeto Luta pela Vida", Responsible: "Instrutora Ana"},
	{Name: "CT Guerreiro", Responsible: "Professor Carlos"},
}

var demoStudents = []models.CreateStudentRequest{
	{FullName: "Lucas Silva", NationalID: "12345678901", Phone: "21999990000", Grade: "Faixa Branca"},
	{FullName: "Maria Oliveira", NationalID: "98765432100", Phone: "21988887777", Grade: "Faixa Amarela"},
	{FullName: "Pedro Santos", NationalID: "11122233344", Phone: "21977776666", Grade: "Faixa Laranja"},
	{FullName: "Juliana Costa", NationalID: "55566677788", Phone: "21966665555", Grade: "Faixa Verde"},
	{FullName: "André Lima", NationalID: "99988877766", Phone: "21955554444", Grade: "Faixa Azul"},
}

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

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("startup failed", "error", err)
	}
	defer a.Close() //nolint:errcheck

	if generated, err := a.BootstrapAdmin(ctx); err != nil {
		logr.Sugar().Fatalw("bootstrap admin failed", "error", err)
	} else if generated != "" {
		logr.Sugar().Infow("bootstrap admin created", "username", cfg.Bootstrap.AdminUsername, "password", generated)
	}

	actor := &models.Principal{Username: "seed", Role: models.RoleAdmin}
	if err := seed(ctx, a, actor, logr); err != nil {
		logr.Sugar().Fatalw("seed failed", "error", err)
	}
	logr.Info("demo data ready")
}

func seed(ctx context.Context, a *app.App, actor *models.Principal, logr *zap.Logger) error {
	academies, err := a.Academies.List(ctx, actor)
	if err != nil {
		return err
	}
	if len(academies) == 0 {
		for _, req := range demoAcademies {
			academy, err := a.Academies.Create(ctx, actor, req)
			if err != nil {
				return err
			}
			academies = append(academies, *academy)
		}
	} else {
		logr.Info("academies already present, skipping")
	}

	for i, req := range demoStudents {
		req.AcademyID = academies[i%len(academies)].ID
		student, err := a.Students.Create(ctx, actor, req)
		if err != nil {
			if appErrors.FromError(err).Code == appErrors.ErrDuplicateKey.Code {
				logr.Info("student already present", zap.String("name", req.FullName))
				continue
			}
			return err
		}
		logr.Info("student created", zap.String("name", student.FullName), zap.Int64("academy_id", req.AcademyID))
	}
	return nil
}
