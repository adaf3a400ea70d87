package console

import (
	"context"

	"github.com/noah-isme/academy-admin/internal/models"
)

func (s *Shell) userMenu(ctx context.Context) error {
	for {
		s.println()
		s.println("[ GERENCIAMENTO DE USUÁRIOS ]")
		s.println("1. Listar Usuários (ADMIN)")
		s.println("2. Registrar Novo Usuário (ADMIN)")
		s.println("3. Alterar Nível de Acesso (ADMIN)")
		s.println("4. Excluir Usuário (ADMIN)")
		s.println("5. Alterar Minha Senha")
		s.println("9. Voltar ao Menu Principal")

		choice, err := s.prompt("Escolha uma opção: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.gated(models.RoleAdmin, func() error { s.listUsers(ctx); return nil })
		case "2":
			err = s.gated(models.RoleAdmin, func() error { return s.registerUser(ctx) })
		case "3":
			err = s.gated(models.RoleAdmin, func() error { return s.changeRole(ctx) })
		case "4":
			err = s.gated(models.RoleAdmin, func() error { return s.deleteUser(ctx) })
		case "5":
			err = s.changeOwnPassword(ctx)
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

func (s *Shell) listUsers(ctx context.Context) {
	users, err := s.svc.Users.List(ctx, s.principal)
	if err != nil {
		s.report(err)
		return
	}
	s.println("--- LISTA DE USUÁRIOS ---")
	for _, u := range users {
		s.printf("  > ID: %d | Usuário: %s | Papel: %s\n", u.ID, u.Username, u.Role)
	}
}

func (s *Shell) registerUser(ctx context.Context) error {
	var req models.CreateUserRequest
	var err error
	if req.Username, err = s.prompt("Nome de Usuário: "); err != nil {
		return err
	}
	if req.Password, err = s.promptPassword("Senha: "); err != nil {
		return err
	}
	rawRole, err := s.prompt("Papel (ADMIN, EDITOR ou VIEWER) [VIEWER]: ")
	if err != nil {
		return err
	}
	if rawRole != "" {
		role, parseErr := models.ParseRole(rawRole)
		if parseErr != nil {
			s.println("Papel inválido. Use ADMIN, EDITOR ou VIEWER.")
			return nil
		}
		req.Role = role
	}
	user, err := s.svc.Users.Register(ctx, s.principal, req)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Usuário %s registrado com papel %s.\n", user.Username, user.Role)
	return nil
}

func (s *Shell) changeRole(ctx context.Context) error {
	id, ok, err := s.promptID("ID do usuário: ")
	if err != nil || !ok {
		return err
	}
	rawRole, err := s.prompt("Novo Papel (ADMIN, EDITOR ou VIEWER): ")
	if err != nil {
		return err
	}
	role, parseErr := models.ParseRole(rawRole)
	if parseErr != nil {
		s.println("Papel inválido. Use ADMIN, EDITOR ou VIEWER.")
		return nil
	}
	user, err := s.svc.Users.UpdateRole(ctx, s.principal, id, role)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Papel de %s alterado para %s.\n", user.Username, user.Role)
	return nil
}

func (s *Shell) deleteUser(ctx context.Context) error {
	id, ok, err := s.promptID("ID do usuário para excluir: ")
	if err != nil || !ok {
		return err
	}
	if err := s.svc.Users.Delete(ctx, s.principal, id); err != nil {
		s.report(err)
		return nil
	}
	s.printf("Usuário %d excluído.\n", id)
	return nil
}

func (s *Shell) changeOwnPassword(ctx context.Context) error {
	var req models.ChangePasswordRequest
	var err error
	if req.OldPassword, err = s.promptPassword("Senha atual: "); err != nil {
		return err
	}
	if req.NewPassword, err = s.promptPassword("Nova senha: "); err != nil {
		return err
	}
	if err := s.svc.Users.ChangePassword(ctx, s.principal, req); err != nil {
		s.report(err)
		return nil
	}
	s.println("Senha alterada com sucesso.")
	return nil
}
