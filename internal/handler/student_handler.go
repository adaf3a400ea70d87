package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/identifier"
	"github.com/noah-isme/academy-admin/pkg/response"
)

const studentsPath = "/alunos"

type studentManager interface {
	Create(ctx context.Context, actor *models.Principal, req models.CreateStudentRequest) (*models.Student, error)
	Get(ctx context.Context, actor *models.Principal, id int64) (*models.StudentDetail, error)
	ListActiveByAcademy(ctx context.Context, actor *models.Principal, academyID int64) ([]models.StudentListItem, error)
	Update(ctx context.Context, actor *models.Principal, id int64, req models.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, actor *models.Principal, id int64) error
}

// studentForm mirrors the HTML form fields.
type studentForm struct {
	FullName     string `form:"full_name"`
	NationalID   string `form:"national_id"`
	BirthDate    string `form:"birth_date"`
	Phone        string `form:"phone"`
	GuardianName string `form:"guardian_name"`
	Grade        string `form:"grade"`
	Active       bool   `form:"active"`
}

func formFromStudent(s *models.Student) studentForm {
	form := studentForm{
		FullName:     s.FullName,
		NationalID:   s.NationalIDFormatted,
		GuardianName: models.StringValue(s.GuardianName),
		Grade:        models.StringValue(s.Grade),
		Active:       s.Active,
	}
	if s.BirthDate != nil {
		form.BirthDate = identifier.FormatDate(*s.BirthDate)
	}
	if s.Phone != nil {
		form.Phone = identifier.FormatPhone(*s.Phone)
	}
	return form
}

// StudentHandler serves the student pages of the configured academy.
type StudentHandler struct {
	students  studentManager
	academies academyReader
	academyID int64
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentManager, academies academyReader, academyID int64) *StudentHandler {
	return &StudentHandler{students: students, academies: academies, academyID: academyID}
}

// List renders the active students of the academy.
func (h *StudentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	actor := principalFromContext(c)
	data := page(c, "Alunos")

	academy, err := h.academies.Get(ctx, actor, h.academyID)
	if err != nil {
		_ = c.Error(err)
		data["Flash"] = &response.Flash{Kind: response.FlashError, Message: response.ErrorMessage(err)}
		response.HTML(c, http.StatusOK, "students.html", data)
		return
	}
	students, err := h.students.ListActiveByAcademy(ctx, actor, h.academyID)
	if err != nil {
		_ = c.Error(err)
		data["Flash"] = &response.Flash{Kind: response.FlashError, Message: response.ErrorMessage(err)}
	}
	data["AcademyName"] = academy.Name
	data["Students"] = students
	response.HTML(c, http.StatusOK, "students.html", data)
}

// NewForm renders an empty student form.
func (h *StudentHandler) NewForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "Adicionar aluno", studentsPath+"/adicionar", false, studentForm{Active: true}, nil)
}

// Create registers the submitted student under the configured academy.
func (h *StudentHandler) Create(c *gin.Context) {
	var form studentForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, "Adicionar aluno", studentsPath+"/adicionar", false, form,
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "formulário inválido"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), principalFromContext(c), models.CreateStudentRequest{
		FullName:     form.FullName,
		NationalID:   form.NationalID,
		BirthDate:    form.BirthDate,
		Phone:        form.Phone,
		GuardianName: form.GuardianName,
		Grade:        form.Grade,
		AcademyID:    h.academyID,
	})
	if err != nil {
		h.renderForm(c, appErrors.FromError(err).Status, "Adicionar aluno", studentsPath+"/adicionar", false, form, err)
		return
	}
	response.RedirectWithFlash(c, studentsPath, response.FlashSuccess,
		fmt.Sprintf("Aluno %s cadastrado com sucesso.", student.FullName))
}

// EditForm renders the form prefilled with the stored student.
func (h *StudentHandler) EditForm(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, studentsPath, err)
		return
	}
	student, err := h.ownedStudent(c, id)
	if err != nil {
		response.Error(c, studentsPath, err)
		return
	}
	h.renderForm(c, http.StatusOK, "Editar aluno", editPath(id), true, formFromStudent(student), nil)
}

// Update applies every submitted field. Blank optional fields are cleared.
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, studentsPath, err)
		return
	}
	var form studentForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, "Editar aluno", editPath(id), true, form,
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "formulário inválido"))
		return
	}
	if _, err := h.ownedStudent(c, id); err != nil {
		response.Error(c, studentsPath, err)
		return
	}
	req := models.UpdateStudentRequest{
		FullName:     &form.FullName,
		NationalID:   &form.NationalID,
		BirthDate:    &form.BirthDate,
		Phone:        &form.Phone,
		GuardianName: &form.GuardianName,
		Grade:        &form.Grade,
		Active:       &form.Active,
	}
	if _, err := h.students.Update(c.Request.Context(), principalFromContext(c), id, req); err != nil {
		h.renderForm(c, appErrors.FromError(err).Status, "Editar aluno", editPath(id), true, form, err)
		return
	}
	response.RedirectWithFlash(c, studentsPath, response.FlashSuccess, "Aluno atualizado com sucesso.")
}

// Delete removes the student and its enrollments.
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, studentsPath, err)
		return
	}
	if _, err := h.ownedStudent(c, id); err != nil {
		response.Error(c, studentsPath, err)
		return
	}
	if err := h.students.Delete(c.Request.Context(), principalFromContext(c), id); err != nil {
		response.Error(c, studentsPath, err)
		return
	}
	response.RedirectWithFlash(c, studentsPath, response.FlashSuccess, "Aluno removido.")
}

// ownedStudent loads a student and hides those of other academies.
func (h *StudentHandler) ownedStudent(c *gin.Context, id int64) (*models.Student, error) {
	detail, err := h.students.Get(c.Request.Context(), principalFromContext(c), id)
	if err != nil {
		return nil, err
	}
	if detail.AcademyID != h.academyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &detail.Student, nil
}

func (h *StudentHandler) renderForm(c *gin.Context, status int, title, action string, editing bool, form studentForm, err error) {
	data := page(c, title)
	data["Action"] = action
	data["Editing"] = editing
	data["Form"] = form
	if err != nil {
		_ = c.Error(err)
		data["Error"] = response.ErrorMessage(err)
	}
	response.HTML(c, status, "student_form.html", data)
}

func editPath(id int64) string {
	return fmt.Sprintf("%s/editar/%d", studentsPath, id)
}
