// Package console implements the interactive menu shell used by operators at
// the front desk.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/internal/service"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/export"
)

// ErrLoginFailed is returned by Run when the operator exhausts the login attempts.
var ErrLoginFailed = errors.New("maximum login attempts exceeded")

var readPasswordFunc = term.ReadPassword // mockable

type academyService interface {
	Create(ctx context.Context, actor *models.Principal, req models.CreateAcademyRequest) (*models.Academy, error)
	List(ctx context.Context, actor *models.Principal) ([]models.Academy, error)
	Update(ctx context.Context, actor *models.Principal, id int64, req models.UpdateAcademyRequest) (*models.Academy, error)
	Delete(ctx context.Context, actor *models.Principal, id int64) error
}

type studentService interface {
	Create(ctx context.Context, actor *models.Principal, req models.CreateStudentRequest) (*models.Student, error)
	Get(ctx context.Context, actor *models.Principal, id int64) (*models.StudentDetail, error)
	GetByNationalID(ctx context.Context, actor *models.Principal, raw string) (*models.StudentDetail, error)
	List(ctx context.Context, actor *models.Principal, filter models.StudentFilter) ([]models.StudentListItem, error)
	Update(ctx context.Context, actor *models.Principal, id int64, req models.UpdateStudentRequest) (*models.Student, error)
	SetActiveByNationalID(ctx context.Context, actor *models.Principal, raw string, active bool) (*models.Student, error)
	Delete(ctx context.Context, actor *models.Principal, id int64) error
}

type modalityService interface {
	Create(ctx context.Context, actor *models.Principal, req models.CreateModalityRequest) (*models.Modality, error)
	List(ctx context.Context, actor *models.Principal) ([]models.Modality, error)
	Delete(ctx context.Context, actor *models.Principal, id int64) error
}

type coachService interface {
	Create(ctx context.Context, actor *models.Principal, req models.CreateCoachRequest) (*models.CoachDetail, error)
	List(ctx context.Context, actor *models.Principal, filter models.CoachFilter) ([]models.CoachDetail, error)
	Delete(ctx context.Context, actor *models.Principal, id int64) error
}

type enrollmentService interface {
	Create(ctx context.Context, actor *models.Principal, req models.CreateEnrollmentRequest) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, actor *models.Principal, studentID int64) ([]models.EnrollmentDetail, error)
	UpdateGradeByPair(ctx context.Context, actor *models.Principal, studentID, modalityID int64, grade string) (*models.Enrollment, error)
	DeleteByPair(ctx context.Context, actor *models.Principal, studentID, modalityID int64) error
}

type userService interface {
	HasUsers(ctx context.Context) (bool, error)
	RegisterFirstAdmin(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, actor *models.Principal, req models.CreateUserRequest) (*models.User, error)
	List(ctx context.Context, actor *models.Principal) ([]models.User, error)
	UpdateRole(ctx context.Context, actor *models.Principal, id int64, role models.UserRole) (*models.User, error)
	ChangePassword(ctx context.Context, actor *models.Principal, req models.ChangePasswordRequest) error
	Delete(ctx context.Context, actor *models.Principal, id int64) error
}

type reportService interface {
	ActiveStudentsByAcademy(ctx context.Context, actor *models.Principal) ([]models.AcademyCount, error)
	GradeBuckets(ctx context.Context, actor *models.Principal) ([]models.GradeBucket, error)
	ListStudentsByModalityAndGrade(ctx context.Context, actor *models.Principal, modalityName, grade string) ([]models.RosterEntry, error)
	Export(ctx context.Context, actor *models.Principal, req models.ReportRequest, format export.Format) (*service.ExportFile, error)
}

type fileSaver interface {
	Save(filename string, data []byte) (string, error)
}

// Services groups the operations reachable from the menus.
type Services struct {
	Academies   academyService
	Students    studentService
	Modalities  modalityService
	Coaches     coachService
	Enrollments enrollmentService
	Users       userService
	Reports     reportService
}

// Config tunes the shell.
type Config struct {
	MaxLoginAttempts int
	AcademyID        int64
}

// Shell is one interactive session. The logged-in principal lives here and is
// passed to every service call.
type Shell struct {
	svc       Services
	exports   fileSaver
	cfg       Config
	logger    *zap.Logger
	in        *bufio.Reader
	out       io.Writer
	passwdFd  int
	principal *models.Principal
}

// New builds a shell reading from in and writing to out. Password prompts do
// not echo when in is a terminal.
func New(svc Services, exports fileSaver, cfg Config, in io.Reader, out io.Writer, logger *zap.Logger) *Shell {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Shell{
		svc:      svc,
		exports:  exports,
		cfg:      cfg,
		logger:   logger,
		in:       bufio.NewReader(in),
		out:      out,
		passwdFd: fd,
	}
}

// Principal returns the logged-in operator, if any.
func (s *Shell) Principal() *models.Principal {
	return s.principal
}

// Run logs the operator in and serves the main menu until exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.ensureFirstUser(ctx); err != nil {
		return err
	}
	if err := s.login(ctx); err != nil {
		return err
	}

	for {
		s.println()
		s.println("==============================================")
		s.println("      SISTEMA DE GESTÃO - SECRETARIA DE LUTAS")
		s.println("==============================================")
		s.println("1. Gerenciar Alunos")
		s.println("2. Gerenciar Academias/Polos")
		s.println("3. Gerenciar Modalidades e Treinadores")
		s.println("4. Gerenciar Matrículas e Graduações")
		s.println("5. Relatórios Gerenciais")
		s.println("6. Gerenciar Usuários")
		s.println("9. Sair")

		choice, err := s.prompt("Escolha uma opção: ")
		if err != nil {
			return endOfInput(err)
		}

		var menuErr error
		switch choice {
		case "1":
			menuErr = s.gated(models.RoleEditor, func() error { return s.studentMenu(ctx) })
		case "2":
			menuErr = s.gated(models.RoleEditor, func() error { return s.academyMenu(ctx) })
		case "3":
			menuErr = s.gated(models.RoleEditor, func() error { return s.modalityMenu(ctx) })
		case "4":
			menuErr = s.gated(models.RoleEditor, func() error { return s.enrollmentMenu(ctx) })
		case "5":
			menuErr = s.reportMenu(ctx)
		case "6":
			menuErr = s.userMenu(ctx)
		case "9":
			s.println("Encerrando sistema. Até mais!")
			return nil
		default:
			s.println("Opção inválida. Digite 1, 2, 3, 4, 5, 6 ou 9.")
		}
		if menuErr != nil {
			return endOfInput(menuErr)
		}
	}
}

func (s *Shell) ensureFirstUser(ctx context.Context) error {
	hasUsers, err := s.svc.Users.HasUsers(ctx)
	if err != nil {
		return err
	}
	if hasUsers {
		return nil
	}

	s.println("ALERTA: Nenhum usuário encontrado. Registre o primeiro administrador para acessar.")
	for {
		username, err := s.prompt("Definir novo usuário: ")
		if err != nil {
			return endOfInput(err)
		}
		password, err := s.promptPassword("Definir nova senha: ")
		if err != nil {
			return endOfInput(err)
		}
		user, err := s.svc.Users.RegisterFirstAdmin(ctx, username, password)
		if err == nil {
			s.printf("Administrador %s registrado.\n", user.Username)
			return nil
		}
		if appErrors.FromError(err).Code == appErrors.ErrPreconditionFailed.Code {
			return nil
		}
		s.report(err)
	}
}

func (s *Shell) login(ctx context.Context) error {
	for attempt := 1; attempt <= s.cfg.MaxLoginAttempts; attempt++ {
		s.println()
		s.println("==============================================")
		s.println("          ACESSO RESTRITO - LOGIN")
		s.println("==============================================")
		username, err := s.prompt("Usuário: ")
		if err != nil {
			return loginInputError(err)
		}
		password, err := s.promptPassword("Senha: ")
		if err != nil {
			return loginInputError(err)
		}

		user, err := s.svc.Users.Authenticate(ctx, username, password)
		if err == nil {
			s.principal = models.PrincipalFromUser(user)
			s.logger.Info("Console login", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
			s.printf("Acesso concedido. Bem-vindo %s!\n", user.Username)
			return nil
		}
		if appErrors.FromError(err).Code != appErrors.ErrInvalidCredentials.Code {
			s.report(err)
		}
		s.printf("Credenciais inválidas. Tentativas restantes: %d\n", s.cfg.MaxLoginAttempts-attempt)
	}
	s.println("Número máximo de tentativas excedido. Encerrando o sistema.")
	return ErrLoginFailed
}

// gated runs menu only when the principal holds required.
func (s *Shell) gated(required models.UserRole, menu func() error) error {
	if !s.principal.Role.Satisfies(required) {
		s.printf("ACESSO NEGADO: esta opção exige o perfil %s.\n", required)
		return nil
	}
	return menu()
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// report prints a service error and lets the loop continue.
func (s *Shell) report(err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= 500 {
		s.logger.Error("Console operation failed", zap.Error(err))
		s.println("ERRO: ocorreu um erro inesperado. Tente novamente.")
		return
	}
	s.printf("ERRO: %s\n", appErr.Message)
}

// prompt reads one trimmed line. io.EOF is returned only when nothing was read.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) promptPassword(label string) (string, error) {
	if s.passwdFd < 0 {
		return s.prompt(label)
	}
	fmt.Fprint(s.out, label)
	pwd, err := readPasswordFunc(s.passwdFd)
	fmt.Fprintln(s.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// promptID reads a positive integer. ok is false when the input was not a number.
func (s *Shell) promptID(label string) (id int64, ok bool, err error) {
	raw, err := s.prompt(label)
	if err != nil {
		return 0, false, err
	}
	id, convErr := strconv.ParseInt(raw, 10, 64)
	if convErr != nil || id <= 0 {
		s.println("Entrada inválida. Digite um número inteiro positivo.")
		return 0, false, nil
	}
	return id, true, nil
}

// promptOptional returns nil for blank input so the stored value is kept.
func (s *Shell) promptOptional(label string) (*string, error) {
	raw, err := s.prompt(label)
	if err != nil || raw == "" {
		return nil, err
	}
	return &raw, nil
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func loginInputError(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrLoginFailed
	}
	return err
}

func activeLabel(active bool) string {
	if active {
		return "ATIVO"
	}
	return "INATIVO"
}
