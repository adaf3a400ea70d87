package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/identifier"
)

func (s *Shell) studentMenu(ctx context.Context) error {
	for {
		s.println()
		s.println("[ GERENCIAMENTO DE ALUNOS ]")
		s.println("1. Cadastrar Novo Aluno")
		s.println("2. Listar Todos os Alunos (Ativos/Inativos)")
		s.println("3. Buscar Aluno por CPF")
		s.println("4. Mudar Status")
		s.println("5. Atualizar Dados do Aluno")
		s.println("6. Remover Aluno (ADMIN)")
		s.println("9. Voltar ao Menu Principal")

		choice, err := s.prompt("Escolha uma opção: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.registerStudent(ctx)
		case "2":
			err = s.listStudents(ctx)
		case "3":
			err = s.findStudentByNationalID(ctx)
		case "4":
			err = s.changeStudentStatus(ctx)
		case "5":
			err = s.updateStudent(ctx)
		case "6":
			err = s.gated(models.RoleAdmin, func() error { return s.removeStudent(ctx) })
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

func (s *Shell) registerStudent(ctx context.Context) error {
	s.println("--- CADASTRO ---")
	var req models.CreateStudentRequest
	var err error
	if req.FullName, err = s.prompt("Nome Completo: "); err != nil {
		return err
	}
	if req.NationalID, err = s.prompt("CPF (ex: 000.000.000-00): "); err != nil {
		return err
	}
	if req.BirthDate, err = s.prompt("Data de Nascimento (DD-MM-AAAA): "); err != nil {
		return err
	}
	if req.Phone, err = s.prompt("Telefone (opcional): "); err != nil {
		return err
	}
	if req.GuardianName, err = s.prompt("Responsável (opcional): "); err != nil {
		return err
	}
	academy, err := s.prompt("ID do Polo [" + strconv.FormatInt(s.cfg.AcademyID, 10) + "]: ")
	if err != nil {
		return err
	}
	req.AcademyID = s.cfg.AcademyID
	if academy != "" {
		id, convErr := strconv.ParseInt(academy, 10, 64)
		if convErr != nil {
			s.println("Entrada inválida. Digite um número inteiro positivo.")
			return nil
		}
		req.AcademyID = id
	}

	student, err := s.svc.Students.Create(ctx, s.principal, req)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Aluno %s cadastrado com sucesso (ID: %d, CPF: %s).\n", student.FullName, student.ID, student.NationalIDFormatted)
	return nil
}

func (s *Shell) listStudents(ctx context.Context) error {
	students, err := s.svc.Students.List(ctx, s.principal, models.StudentFilter{})
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Total de Alunos Encontrados: %d\n", len(students))
	if len(students) == 0 {
		return nil
	}
	s.println("ID  | Status  | CPF            | Nome")
	for _, st := range students {
		s.printf("%-3d | %-7s | %s | %s\n", st.ID, activeLabel(st.Active), st.NationalIDFormatted, st.FullName)
	}

	for {
		raw, err := s.prompt("[DETALHES] Digite o ID do aluno para ver as informações (0 para voltar): ")
		if err != nil {
			return err
		}
		id, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			s.println("Entrada inválida. Por favor, digite um número inteiro.")
			continue
		}
		if id == 0 {
			return nil
		}
		detail, err := s.svc.Students.Get(ctx, s.principal, id)
		if err != nil {
			s.report(err)
			continue
		}
		s.printStudentDetail(detail)
	}
}

func (s *Shell) printStudentDetail(d *models.StudentDetail) {
	s.println("--- INFORMAÇÕES COMPLETAS DO ALUNO ---")
	s.printf("  ID: %d\n", d.ID)
	s.printf("  Nome Completo: %s\n", d.FullName)
	s.printf("  CPF: %s\n", d.NationalIDFormatted)
	if d.BirthDate != nil {
		s.printf("  Data de Nascimento: %s\n", identifier.FormatDate(*d.BirthDate))
	}
	if d.Phone != nil {
		s.printf("  Telefone: %s\n", identifier.FormatPhone(*d.Phone))
	}
	if d.GuardianName != nil {
		s.printf("  Responsável: %s\n", *d.GuardianName)
	}
	s.printf("  Status: %s\n", activeLabel(d.Active))
	s.printf("  Academia/Polo: %s (ID: %d)\n", d.AcademyName, d.AcademyID)
	if len(d.Enrollments) == 0 {
		s.println("  Matrículas: Nenhuma")
		return
	}
	s.println("  --- MATRÍCULAS ---")
	for _, e := range d.Enrollments {
		s.printf("    - Nº: %s | Modalidade: %s | Graduação: %s\n", e.EnrollmentNumber, e.ModalityName, gradeLabel(e.Grade))
	}
}

func (s *Shell) findStudentByNationalID(ctx context.Context) error {
	raw, err := s.prompt("Digite o CPF para busca: ")
	if err != nil {
		return err
	}
	detail, err := s.svc.Students.GetByNationalID(ctx, s.principal, raw)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("  Encontrado: %s | Status: %s | Academia: %s\n", detail.FullName, activeLabel(detail.Active), detail.AcademyName)
	return nil
}

func (s *Shell) changeStudentStatus(ctx context.Context) error {
	raw, err := s.prompt("CPF do aluno: ")
	if err != nil {
		return err
	}
	status, err := s.prompt("Novo Status (A para Ativo / I para Inativo): ")
	if err != nil {
		return err
	}
	var active bool
	switch strings.ToUpper(status) {
	case "A":
		active = true
	case "I":
		active = false
	default:
		s.println("Status inválido. Use A ou I.")
		return nil
	}
	student, err := s.svc.Students.SetActiveByNationalID(ctx, s.principal, raw, active)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Status de %s atualizado para %s.\n", student.FullName, activeLabel(student.Active))
	return nil
}

func (s *Shell) updateStudent(ctx context.Context) error {
	id, ok, err := s.promptID("ID do aluno que deseja atualizar: ")
	if err != nil || !ok {
		return err
	}
	s.println("Deixe em branco para manter o valor atual.")
	var req models.UpdateStudentRequest
	fields := []struct {
		label  string
		target **string
	}{
		{"Nome Completo: ", &req.FullName},
		{"CPF: ", &req.NationalID},
		{"Data de Nascimento (DD-MM-AAAA): ", &req.BirthDate},
		{"Telefone: ", &req.Phone},
		{"Responsável: ", &req.GuardianName},
	}
	for _, f := range fields {
		if *f.target, err = s.promptOptional(f.label); err != nil {
			return err
		}
	}
	if _, err := s.svc.Students.Update(ctx, s.principal, id, req); err != nil {
		s.report(err)
		return nil
	}
	s.println("Aluno atualizado com sucesso.")
	return nil
}

func (s *Shell) removeStudent(ctx context.Context) error {
	id, ok, err := s.promptID("ID do aluno que deseja remover: ")
	if err != nil || !ok {
		return err
	}
	if err := s.svc.Students.Delete(ctx, s.principal, id); err != nil {
		s.report(err)
		return nil
	}
	s.printf("Aluno %d removido.\n", id)
	return nil
}

func gradeLabel(grade *string) string {
	if grade == nil || *grade == "" {
		return models.GradeNotInformed
	}
	return *grade
}
