package models

import "time"

// Student represents an athlete registered at one academy.
type Student struct {
	ID                  int64      `db:"id" json:"id"`
	FullName            string     `db:"full_name" json:"full_name"`
	BirthDate           *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	NationalID          string     `db:"national_id" json:"national_id"`
	NationalIDFormatted string     `db:"national_id_formatted" json:"national_id_formatted"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	GuardianName        *string    `db:"guardian_name" json:"guardian_name,omitempty"`
	Grade               *string    `db:"grade" json:"grade,omitempty"`
	Active              bool       `db:"active" json:"active"`
	RegisteredAt        time.Time  `db:"registered_at" json:"registered_at"`
	AcademyID           int64      `db:"academy_id" json:"academy_id"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	AcademyID *int64
	Active    *bool
	Search    string
}

// StudentListItem is a listing row with the academy name joined in.
type StudentListItem struct {
	Student
	AcademyName string `db:"academy_name" json:"academy_name"`
}

// StudentDetail contains student information with enrollment context.
type StudentDetail struct {
	StudentListItem
	Enrollments []EnrollmentDetail `json:"enrollments"`
}

// CreateStudentRequest carries raw operator input; dates and ids are normalized by the service.
type CreateStudentRequest struct {
	FullName     string `validate:"required,max=150"`
	BirthDate    string
	NationalID   string `validate:"required"`
	AcademyID    int64  `validate:"required,gt=0"`
	Phone        string
	GuardianName string
	Grade        string
}

// UpdateStudentRequest applies only non-nil fields. A non-nil empty string
// clears optional fields.
type UpdateStudentRequest struct {
	FullName     *string
	BirthDate    *string
	NationalID   *string
	AcademyID    *int64
	Phone        *string
	GuardianName *string
	Grade        *string
	Active       *bool
}
