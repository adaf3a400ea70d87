package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academy-admin/internal/models"
)

type memoryState struct {
	academies   map[int64]models.Academy
	students    map[int64]models.Student
	modalities  map[int64]models.Modality
	coaches     map[int64]models.Coach
	enrollments map[int64]models.Enrollment
	users       map[int64]models.User
	nextID      int64
}

func newMemoryState() *memoryState {
	return &memoryState{
		academies:   map[int64]models.Academy{},
		students:    map[int64]models.Student{},
		modalities:  map[int64]models.Modality{},
		coaches:     map[int64]models.Coach{},
		enrollments: map[int64]models.Enrollment{},
		users:       map[int64]models.User{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	c.nextID = s.nextID
	for k, v := range s.academies {
		c.academies[k] = v
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.modalities {
		c.modalities[k] = v
	}
	for k, v := range s.coaches {
		c.coaches[k] = v
	}
	for k, v := range s.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *memoryState) id() int64 {
	s.nextID++
	return s.nextID
}

// memoryUnitOfWork snapshots state before each unit and restores it when the
// callback fails.
type memoryUnitOfWork struct {
	state     *memoryState
	calls     int
	rollbacks int
}

func newMemoryUnitOfWork() *memoryUnitOfWork {
	return &memoryUnitOfWork{state: newMemoryState()}
}

func (u *memoryUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	u.calls++
	snapshot := u.state.clone()
	if err := fn(memoryRepositories{s: u.state}); err != nil {
		u.state = snapshot
		u.rollbacks++
		return err
	}
	return nil
}

type memoryRepositories struct {
	s *memoryState
}

func (r memoryRepositories) Academies() academyRepository { return memAcademies(r) }
func (r memoryRepositories) Students() studentRepository { return memStudents(r) }
func (r memoryRepositories) Modalities() modalityRepository { return memModalities(r) }
func (r memoryRepositories) Coaches() coachRepository { return memCoaches(r) }
func (r memoryRepositories) Enrollments() enrollmentRepository { return memEnrollments(r) }
func (r memoryRepositories) Users() userRepository { return memUsers(r) }
func (r memoryRepositories) Reports() reportRepository { return memReports(r) }

type memAcademies memoryRepositories

func (r memAcademies) Create(ctx context.Context, a *models.Academy) error {
	a.ID = r.s.id()
	r.s.academies[a.ID] = *a
	return nil
}

func (r memAcademies) FindByID(ctx context.Context, id int64) (*models.Academy, error) {
	a, ok := r.s.academies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (r memAcademies) FindByName(ctx context.Context, name string) (*models.Academy, error) {
	for _, a := range r.s.academies {
		if a.Name == name {
			found := a
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memAcademies) List(ctx context.Context) ([]models.Academy, error) {
	out := make([]models.Academy, 0, len(r.s.academies))
	for _, a := range r.s.academies {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memAcademies) Update(ctx context.Context, a *models.Academy) error {
	if _, ok := r.s.academies[a.ID]; !ok {
		return sql.ErrNoRows
	}
	r.s.academies[a.ID] = *a
	return nil
}

func (r memAcademies) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.academies[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.academies, id)
	return nil
}

func (r memAcademies) CountDependants(ctx context.Context, id int64) (int, int, error) {
	students, coaches := 0, 0
	for _, s := range r.s.students {
		if s.AcademyID == id {
			students++
		}
	}
	for _, c := range r.s.coaches {
		if c.AcademyID == id {
			coaches++
		}
	}
	return students, coaches, nil
}

type memStudents memoryRepositories

func (r memStudents) Create(ctx context.Context, s *models.Student) error {
	s.ID = r.s.id()
	r.s.students[s.ID] = *s
	return nil
}

func (r memStudents) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	s, ok := r.s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r memStudents) FindByNationalID(ctx context.Context, nationalID string) (*models.Student, error) {
	for _, s := range r.s.students {
		if s.NationalID == nationalID {
			found := s
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memStudents) FindListItem(ctx context.Context, id int64) (*models.StudentListItem, error) {
	s, ok := r.s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.StudentListItem{Student: s, AcademyName: r.s.academies[s.AcademyID].Name}, nil
}

func (r memStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, error) {
	out := []models.StudentListItem{}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, s := range r.s.students {
		if filter.AcademyID != nil && s.AcademyID != *filter.AcademyID {
			continue
		}
		if filter.Active != nil && s.Active != *filter.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.FullName), search) && !strings.Contains(s.NationalID, search) {
			continue
		}
		out = append(out, models.StudentListItem{Student: s, AcademyName: r.s.academies[s.AcademyID].Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r memStudents) Update(ctx context.Context, s *models.Student) error {
	if _, ok := r.s.students[s.ID]; !ok {
		return sql.ErrNoRows
	}
	r.s.students[s.ID] = *s
	return nil
}

func (r memStudents) SetActive(ctx context.Context, id int64, active bool) error {
	s, ok := r.s.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.Active = active
	r.s.students[id] = s
	return nil
}

func (r memStudents) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.students, id)
	return nil
}

func (r memStudents) Count(ctx context.Context) (int, error) {
	return len(r.s.students), nil
}

type memModalities memoryRepositories

func (r memModalities) Create(ctx context.Context, m *models.Modality) error {
	m.ID = r.s.id()
	r.s.modalities[m.ID] = *m
	return nil
}

func (r memModalities) FindByID(ctx context.Context, id int64) (*models.Modality, error) {
	m, ok := r.s.modalities[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (r memModalities) FindByName(ctx context.Context, name string) (*models.Modality, error) {
	for _, m := range r.s.modalities {
		if m.Name == name {
			found := m
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memModalities) List(ctx context.Context) ([]models.Modality, error) {
	out := make([]models.Modality, 0, len(r.s.modalities))
	for _, m := range r.s.modalities {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memModalities) Update(ctx context.Context, m *models.Modality) error {
	if _, ok := r.s.modalities[m.ID]; !ok {
		return sql.ErrNoRows
	}
	r.s.modalities[m.ID] = *m
	return nil
}

func (r memModalities) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.modalities[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.modalities, id)
	return nil
}

func (r memModalities) CountDependants(ctx context.Context, id int64) (int, int, error) {
	coaches, enrollments := 0, 0
	for _, c := range r.s.coaches {
		if c.ModalityID == id {
			coaches++
		}
	}
	for _, e := range r.s.enrollments {
		if e.ModalityID == id {
			enrollments++
		}
	}
	return coaches, enrollments, nil
}

type memCoaches memoryRepositories

func (r memCoaches) detail(c models.Coach) models.CoachDetail {
	return models.CoachDetail{
		Coach:        c,
		AcademyName:  r.s.academies[c.AcademyID].Name,
		ModalityName: r.s.modalities[c.ModalityID].Name,
	}
}

func (r memCoaches) Create(ctx context.Context, c *models.Coach) error {
	c.ID = r.s.id()
	r.s.coaches[c.ID] = *c
	return nil
}

func (r memCoaches) FindByID(ctx context.Context, id int64) (*models.CoachDetail, error) {
	c, ok := r.s.coaches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := r.detail(c)
	return &d, nil
}

func (r memCoaches) List(ctx context.Context, filter models.CoachFilter) ([]models.CoachDetail, error) {
	out := []models.CoachDetail{}
	for _, c := range r.s.coaches {
		if filter.AcademyID != nil && c.AcademyID != *filter.AcademyID {
			continue
		}
		if filter.ModalityID != nil && c.ModalityID != *filter.ModalityID {
			continue
		}
		out = append(out, r.detail(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r memCoaches) Update(ctx context.Context, c *models.Coach) error {
	if _, ok := r.s.coaches[c.ID]; !ok {
		return sql.ErrNoRows
	}
	r.s.coaches[c.ID] = *c
	return nil
}

func (r memCoaches) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.coaches[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.coaches, id)
	return nil
}

type memEnrollments memoryRepositories

func (r memEnrollments) Create(ctx context.Context, e *models.Enrollment) error {
	e.ID = r.s.id()
	r.s.enrollments[e.ID] = *e
	return nil
}

func (r memEnrollments) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	e, ok := r.s.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (r memEnrollments) find(match func(models.Enrollment) bool) (*models.Enrollment, error) {
	for _, e := range r.s.enrollments {
		if match(e) {
			found := e
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memEnrollments) FindByNumber(ctx context.Context, number string) (*models.Enrollment, error) {
	return r.find(func(e models.Enrollment) bool { return e.EnrollmentNumber == number })
}

func (r memEnrollments) FindByPair(ctx context.Context, studentID, modalityID int64) (*models.Enrollment, error) {
	return r.find(func(e models.Enrollment) bool { return e.StudentID == studentID && e.ModalityID == modalityID })
}

func (r memEnrollments) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	out := []models.EnrollmentDetail{}
	for _, e := range r.s.enrollments {
		if e.StudentID != studentID {
			continue
		}
		out = append(out, models.EnrollmentDetail{
			Enrollment:   e,
			StudentName:  r.s.students[e.StudentID].FullName,
			ModalityName: r.s.modalities[e.ModalityID].Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModalityName < out[j].ModalityName })
	return out, nil
}

func (r memEnrollments) UpdateGrade(ctx context.Context, id int64, grade *string) error {
	e, ok := r.s.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Grade = grade
	r.s.enrollments[id] = e
	return nil
}

func (r memEnrollments) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.enrollments, id)
	return nil
}

func (r memEnrollments) DeleteByStudent(ctx context.Context, studentID int64) (int64, error) {
	var removed int64
	for id, e := range r.s.enrollments {
		if e.StudentID == studentID {
			delete(r.s.enrollments, id)
			removed++
		}
	}
	return removed, nil
}

type memUsers memoryRepositories

func (r memUsers) Create(ctx context.Context, u *models.User) error {
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memUsers) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r memUsers) Count(ctx context.Context) (int, error) {
	return len(r.s.users), nil
}

func (r memUsers) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	n := 0
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r memUsers) UpdateRole(ctx context.Context, id int64, role models.UserRole) error {
	u, ok := r.s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

func (r memUsers) UpdatePassword(ctx context.Context, id int64, hash string) error {
	u, ok := r.s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

func (r memUsers) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.users, id)
	return nil
}

type memReports memoryRepositories

func (r memReports) ActiveStudentsByAcademy(ctx context.Context) ([]models.AcademyCount, error) {
	counts := map[int64]int{}
	for _, s := range r.s.students {
		if s.Active {
			counts[s.AcademyID]++
		}
	}
	out := []models.AcademyCount{}
	for id, n := range counts {
		out = append(out, models.AcademyCount{AcademyName: r.s.academies[id].Name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AcademyName < out[j].AcademyName })
	return out, nil
}

func (r memReports) GradeCounts(ctx context.Context) ([]models.GradeCount, error) {
	type key struct {
		modality int64
		grade    string
		null     bool
	}
	counts := map[key]int{}
	for _, e := range r.s.enrollments {
		if !r.s.students[e.StudentID].Active {
			continue
		}
		k := key{modality: e.ModalityID, null: e.Grade == nil}
		if e.Grade != nil {
			k.grade = *e.Grade
		}
		counts[k]++
	}
	out := []models.GradeCount{}
	for k, n := range counts {
		row := models.GradeCount{ModalityID: k.modality, ModalityName: r.s.modalities[k.modality].Name, Count: n}
		if !k.null {
			grade := k.grade
			row.Grade = &grade
		}
		out = append(out, row)
	}
	return out, nil
}

func (r memReports) Roster(ctx context.Context, modalityID int64, grade string) ([]models.RosterEntry, error) {
	out := []models.RosterEntry{}
	for _, e := range r.s.enrollments {
		s := r.s.students[e.StudentID]
		if e.ModalityID != modalityID || !s.Active || models.StringValue(e.Grade) != grade {
			continue
		}
		out = append(out, models.RosterEntry{
			StudentName:      s.FullName,
			EnrollmentNumber: e.EnrollmentNumber,
			AcademyName:      r.s.academies[s.AcademyID].Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

type testServices struct {
	uow         *memoryUnitOfWork
	academies   *AcademyService
	students    *StudentService
	modalities  *ModalityService
	coaches     *CoachService
	enrollments *EnrollmentService
	users       *UserService
	reports     *ReportService
	revoked     []int64
}

func (ts *testServices) RevokeUser(ctx context.Context, userID int64) error {
	ts.revoked = append(ts.revoked, userID)
	return nil
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	uow := newMemoryUnitOfWork()
	validate := validator.New()
	logger := zap.NewNop()
	ts := &testServices{uow: uow}
	ts.academies = NewAcademyService(uow, validate, logger)
	ts.students = NewStudentService(uow, validate, logger)
	ts.modalities = NewModalityService(uow, validate, logger)
	ts.coaches = NewCoachService(uow, validate, logger)
	ts.enrollments = NewEnrollmentService(uow, validate, logger)
	ts.users = NewUserService(uow, ts, nil, validate, logger)
	ts.users.hashCost = bcrypt.MinCost
	ts.reports = NewReportService(uow, nil, nil, logger)
	return ts
}

var (
	adminActor  = &models.Principal{UserID: 1000, Username: "root", Role: models.RoleAdmin}
	editorActor = &models.Principal{UserID: 1001, Username: "editor", Role: models.RoleEditor}
	viewerActor = &models.Principal{UserID: 1002, Username: "viewer", Role: models.RoleViewer}
)

func strPtr(s string) *string { return &s }
