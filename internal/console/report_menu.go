package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/export"
)

func (s *Shell) reportMenu(ctx context.Context) error {
	for {
		s.println()
		s.println("[ RELATÓRIOS GERENCIAIS ]")
		s.println("1. Contagem de Alunos Ativos por Academia")
		s.println("2. Contagem de Alunos por Modalidade e Graduação")
		s.println("3. Listar Alunos por Modalidade e Graduação")
		s.println("4. Exportar Relatório (CSV/PDF)")
		s.println("9. Voltar ao Menu Principal")

		choice, err := s.prompt("Escolha uma opção: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			s.printActiveByAcademy(ctx)
		case "2":
			s.printGradeCounts(ctx)
		case "3":
			err = s.printRoster(ctx)
		case "4":
			err = s.exportReport(ctx)
		case "9":
			return nil
		default:
			s.println("Opção inválida. Tente novamente.")
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) printActiveByAcademy(ctx context.Context) {
	rows, err := s.svc.Reports.ActiveStudentsByAcademy(ctx, s.principal)
	if err != nil {
		s.report(err)
		return
	}
	s.println("--- RELATÓRIO: ALUNOS POR ACADEMIA ---")
	if len(rows) == 0 {
		s.println("Nenhuma academia com alunos ativos encontrada.")
		return
	}
	for _, r := range rows {
		s.printf("  > %s: %d alunos ativos\n", r.AcademyName, r.Count)
	}
}

func (s *Shell) printGradeCounts(ctx context.Context) {
	buckets, err := s.svc.Reports.GradeBuckets(ctx, s.principal)
	if err != nil {
		s.report(err)
		return
	}
	s.println("--- RELATÓRIO: ALUNOS POR MODALIDADE E GRADUAÇÃO ---")
	if len(buckets) == 0 {
		s.println("Nenhuma matrícula de aluno ativo encontrada.")
		return
	}
	for _, b := range buckets {
		s.printf("  > %s | %s: %d\n", b.ModalityName, b.Grade, b.Count)
	}
}

func (s *Shell) printRoster(ctx context.Context) error {
	modality, err := s.prompt("Nome da Modalidade: ")
	if err != nil {
		return err
	}
	grade, err := s.prompt("Graduação (Faixa/Nível) a ser buscada: ")
	if err != nil {
		return err
	}
	roster, err := s.svc.Reports.ListStudentsByModalityAndGrade(ctx, s.principal, modality, grade)
	if err != nil {
		s.report(err)
		return nil
	}
	if len(roster) == 0 {
		s.println("Nenhum aluno encontrado com esses critérios.")
		return nil
	}
	s.printf("Total de %d alunos encontrados em '%s' (%s):\n", len(roster), modality, grade)
	for _, r := range roster {
		s.printf("  > Matrícula: %s | Aluno: %s | Polo: %s\n", r.EnrollmentNumber, r.StudentName, r.AcademyName)
	}
	return nil
}

func (s *Shell) exportReport(ctx context.Context) error {
	s.println("Relatórios: 1. Alunos ativos por polo  2. Contagem por graduação  3. Lista por modalidade e graduação")
	choice, err := s.prompt("Relatório: ")
	if err != nil {
		return err
	}
	var req models.ReportRequest
	switch choice {
	case "1":
		req.Kind = models.ReportActiveByAcademy
	case "2":
		req.Kind = models.ReportGradeCounts
	case "3":
		req.Kind = models.ReportRoster
		if req.ModalityName, err = s.prompt("Nome da Modalidade: "); err != nil {
			return err
		}
		if req.Grade, err = s.prompt("Graduação: "); err != nil {
			return err
		}
	default:
		s.println("Opção inválida.")
		return nil
	}

	rawFormat, err := s.prompt("Formato (csv/pdf) [csv]: ")
	if err != nil {
		return err
	}
	if rawFormat == "" {
		rawFormat = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		s.println("Formato inválido. Use csv ou pdf.")
		return nil
	}

	file, err := s.svc.Reports.Export(ctx, s.principal, req, format)
	if err != nil {
		s.report(err)
		return nil
	}
	path, err := s.exports.Save(file.Name, file.Data)
	if err != nil {
		s.logger.Error("Failed to save export", zap.String("file", file.Name), zap.Error(err))
		s.println("ERRO: não foi possível salvar o arquivo exportado.")
		return nil
	}
	s.printf("Relatório salvo em %s\n", path)
	return nil
}
