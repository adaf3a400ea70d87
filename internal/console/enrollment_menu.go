package console

import (
	"context"

	"github.com/noah-isme/academy-admin/internal/models"
)

func (s *Shell) enrollmentMenu(ctx context.Context) error {
	for {
		s.println()
		s.println("[ GERENCIAMENTO DE MATRÍCULAS/GRADUAÇÕES ]")
		s.println("1. Matricular Aluno em Modalidade")
		s.println("2. Listar Matrículas do Aluno")
		s.println("3. Atualizar Graduação (Faixa/Nível)")
		s.println("4. Remover Matrícula")
		s.println("9. Voltar ao Menu Principal")

		choice, err := s.prompt("Escolha uma opção: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.enrollStudent(ctx)
		case "2":
			err = s.listEnrollments(ctx)
		case "3":
			err = s.updateGrade(ctx)
		case "4":
			err = s.removeEnrollment(ctx)
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

func (s *Shell) enrollStudent(ctx context.Context) error {
	studentID, ok, err := s.promptID("ID do Aluno: ")
	if err != nil || !ok {
		return err
	}
	s.listModalities(ctx)
	modalityID, ok, err := s.promptID("ID da Modalidade: ")
	if err != nil || !ok {
		return err
	}
	req := models.CreateEnrollmentRequest{StudentID: studentID, ModalityID: modalityID}
	if req.EnrollmentNumber, err = s.prompt("Número da Matrícula (Único): "); err != nil {
		return err
	}
	if req.Grade, err = s.prompt("Graduação Inicial (ex: Branca, Iniciante): "); err != nil {
		return err
	}
	enrollment, err := s.svc.Enrollments.Create(ctx, s.principal, req)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Matrícula %s registrada.\n", enrollment.EnrollmentNumber)
	return nil
}

func (s *Shell) listEnrollments(ctx context.Context) error {
	studentID, ok, err := s.promptID("ID do Aluno para listar as matrículas: ")
	if err != nil || !ok {
		return err
	}
	enrollments, err := s.svc.Enrollments.ListByStudent(ctx, s.principal, studentID)
	if err != nil {
		s.report(err)
		return nil
	}
	if len(enrollments) == 0 {
		s.printf("Nenhuma matrícula encontrada para o Aluno ID %d.\n", studentID)
		return nil
	}
	s.printf("Matrículas encontradas para o Aluno ID %d:\n", studentID)
	for _, e := range enrollments {
		s.printf("  > Matrícula: %s | Modalidade: %s | Graduação: %s\n", e.EnrollmentNumber, e.ModalityName, gradeLabel(e.Grade))
	}
	return nil
}

func (s *Shell) updateGrade(ctx context.Context) error {
	studentID, ok, err := s.promptID("ID do Aluno: ")
	if err != nil || !ok {
		return err
	}
	modalityID, ok, err := s.promptID("ID da Modalidade para atualizar: ")
	if err != nil || !ok {
		return err
	}
	grade, err := s.prompt("Nova Graduação (ex: Faixa Azul, Nível 2): ")
	if err != nil {
		return err
	}
	enrollment, err := s.svc.Enrollments.UpdateGradeByPair(ctx, s.principal, studentID, modalityID, grade)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Graduação da matrícula %s atualizada para %s.\n", enrollment.EnrollmentNumber, gradeLabel(enrollment.Grade))
	return nil
}

func (s *Shell) removeEnrollment(ctx context.Context) error {
	studentID, ok, err := s.promptID("ID do Aluno: ")
	if err != nil || !ok {
		return err
	}
	modalityID, ok, err := s.promptID("ID da Modalidade: ")
	if err != nil || !ok {
		return err
	}
	if err := s.svc.Enrollments.DeleteByPair(ctx, s.principal, studentID, modalityID); err != nil {
		s.report(err)
		return nil
	}
	s.println("Matrícula removida.")
	return nil
}
