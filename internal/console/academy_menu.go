package console

import (
	"context"

	"github.com/noah-isme/academy-admin/internal/models"
)

func (s *Shell) academyMenu(ctx context.Context) error {
	for {
		s.println()
		s.println("[ GERENCIAMENTO DE ACADEMIAS/POLOS ]")
		s.println("1. Cadastrar Novo Polo")
		s.println("2. Listar Todos os Polos")
		s.println("3. Atualizar Polo")
		s.println("4. Remover Polo (ADMIN)")
		s.println("9. Voltar ao Menu Principal")

		choice, err := s.prompt("Escolha uma opção: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.registerAcademy(ctx)
		case "2":
			s.listAcademies(ctx)
		case "3":
			err = s.updateAcademy(ctx)
		case "4":
			err = s.gated(models.RoleAdmin, func() error { return s.removeAcademy(ctx) })
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

func (s *Shell) registerAcademy(ctx context.Context) error {
	var req models.CreateAcademyRequest
	var err error
	if req.Name, err = s.prompt("Nome do Polo/Academia: "); err != nil {
		return err
	}
	if req.Address, err = s.prompt("Endereço Completo: "); err != nil {
		return err
	}
	if req.Responsible, err = s.prompt("Nome do Responsável: "); err != nil {
		return err
	}
	academy, err := s.svc.Academies.Create(ctx, s.principal, req)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Polo %s cadastrado (ID: %d).\n", academy.Name, academy.ID)
	return nil
}

func (s *Shell) listAcademies(ctx context.Context) {
	academies, err := s.svc.Academies.List(ctx, s.principal)
	if err != nil {
		s.report(err)
		return
	}
	s.printf("Total de Polos Cadastrados: %d\n", len(academies))
	for _, a := range academies {
		s.printf("  ID: %d | Nome: %s | Responsável: %s\n", a.ID, a.Name, models.StringValue(a.Responsible))
	}
}

func (s *Shell) updateAcademy(ctx context.Context) error {
	id, ok, err := s.promptID("ID do Polo que deseja atualizar: ")
	if err != nil || !ok {
		return err
	}
	var req models.UpdateAcademyRequest
	if req.Name, err = s.promptOptional("Novo Nome (vazio para não alterar): "); err != nil {
		return err
	}
	if req.Address, err = s.promptOptional("Novo Endereço (vazio para não alterar): "); err != nil {
		return err
	}
	if req.Responsible, err = s.promptOptional("Novo Responsável (vazio para não alterar): "); err != nil {
		return err
	}
	academy, err := s.svc.Academies.Update(ctx, s.principal, id, req)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Polo %s atualizado.\n", academy.Name)
	return nil
}

func (s *Shell) removeAcademy(ctx context.Context) error {
	id, ok, err := s.promptID("ID do Polo que deseja remover: ")
	if err != nil || !ok {
		return err
	}
	if err := s.svc.Academies.Delete(ctx, s.principal, id); err != nil {
		s.report(err)
		return nil
	}
	s.printf("Polo %d removido.\n", id)
	return nil
}
