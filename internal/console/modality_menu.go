package console

import (
	"context"

	"github.com/noah-isme/academy-admin/internal/models"
)

func (s *Shell) modalityMenu(ctx context.Context) error {
	for {
		s.println()
		s.println("[ GERENCIAMENTO DE MODALIDADES E TREINADORES ]")
		s.println("1. Cadastrar Modalidade")
		s.println("2. Listar Modalidades")
		s.println("3. Cadastrar Treinador")
		s.println("4. Listar Treinadores por Modalidade")
		s.println("5. Remover Treinador (ADMIN)")
		s.println("6. Remover Modalidade (ADMIN)")
		s.println("9. Voltar ao Menu Principal")

		choice, err := s.prompt("Escolha uma opção: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.registerModality(ctx)
		case "2":
			s.listModalities(ctx)
		case "3":
			err = s.registerCoach(ctx)
		case "4":
			err = s.listCoaches(ctx)
		case "5":
			err = s.gated(models.RoleAdmin, func() error { return s.removeCoach(ctx) })
		case "6":
			err = s.gated(models.RoleAdmin, func() error { return s.removeModality(ctx) })
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

func (s *Shell) registerModality(ctx context.Context) error {
	var req models.CreateModalityRequest
	var err error
	if req.Name, err = s.prompt("Nome da Modalidade: "); err != nil {
		return err
	}
	if req.Category, err = s.prompt("Tipo (ex: Base, Alto Rendimento): "); err != nil {
		return err
	}
	modality, err := s.svc.Modalities.Create(ctx, s.principal, req)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Modalidade %s cadastrada (ID: %d).\n", modality.Name, modality.ID)
	return nil
}

func (s *Shell) listModalities(ctx context.Context) {
	modalities, err := s.svc.Modalities.List(ctx, s.principal)
	if err != nil {
		s.report(err)
		return
	}
	s.printf("Total de Modalidades: %d\n", len(modalities))
	for _, m := range modalities {
		s.printf("  ID: %d | Nome: %s | Tipo: %s\n", m.ID, m.Name, models.StringValue(m.Category))
	}
}

func (s *Shell) registerCoach(ctx context.Context) error {
	var req models.CreateCoachRequest
	var err error
	if req.FullName, err = s.prompt("Nome do Treinador: "); err != nil {
		return err
	}
	if req.Phone, err = s.prompt("Telefone: "); err != nil {
		return err
	}
	if req.Certification, err = s.prompt("Certificação: "); err != nil {
		return err
	}
	s.listModalities(ctx)
	modalityID, ok, err := s.promptID("ID da Modalidade que irá treinar: ")
	if err != nil || !ok {
		return err
	}
	academyID, ok, err := s.promptID("ID da Academia: ")
	if err != nil || !ok {
		return err
	}
	req.ModalityID = modalityID
	req.AcademyID = academyID

	coach, err := s.svc.Coaches.Create(ctx, s.principal, req)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Treinador %s cadastrado em %s (%s).\n", coach.FullName, coach.AcademyName, coach.ModalityName)
	return nil
}

func (s *Shell) listCoaches(ctx context.Context) error {
	s.listModalities(ctx)
	modalityID, ok, err := s.promptID("ID da Modalidade para listar treinadores: ")
	if err != nil || !ok {
		return err
	}
	coaches, err := s.svc.Coaches.List(ctx, s.principal, models.CoachFilter{ModalityID: &modalityID})
	if err != nil {
		s.report(err)
		return nil
	}
	if len(coaches) == 0 {
		s.printf("Nenhum treinador encontrado para a modalidade ID %d.\n", modalityID)
		return nil
	}
	for _, c := range coaches {
		s.printf("  ID: %d | Nome: %s | Cert.: %s | Polo: %s\n", c.ID, c.FullName, models.StringValue(c.Certification), c.AcademyName)
	}
	return nil
}

func (s *Shell) removeCoach(ctx context.Context) error {
	id, ok, err := s.promptID("ID do Treinador que deseja remover: ")
	if err != nil || !ok {
		return err
	}
	if err := s.svc.Coaches.Delete(ctx, s.principal, id); err != nil {
		s.report(err)
		return nil
	}
	s.printf("Treinador %d removido.\n", id)
	return nil
}

func (s *Shell) removeModality(ctx context.Context) error {
	id, ok, err := s.promptID("ID da Modalidade que deseja remover: ")
	if err != nil || !ok {
		return err
	}
	if err := s.svc.Modalities.Delete(ctx, s.principal, id); err != nil {
		s.report(err)
		return nil
	}
	s.printf("Modalidade %d removida.\n", id)
	return nil
}
