package models

import "time"

// Enrollment links one student to one modality with a grade (belt) label.
type Enrollment struct {
	ID               int64     `db:"id" json:"id"`
	EnrollmentNumber string    `db:"enrollment_number" json:"enrollment_number"`
	Grade            *string   `db:"grade" json:"grade,omitempty"`
	EnrolledAt       time.Time `db:"enrolled_at" json:"enrolled_at"`
	StudentID        int64     `db:"student_id" json:"student_id"`
	ModalityID       int64     `db:"modality_id" json:"modality_id"`
}

// EnrollmentDetail adds display names.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	ModalityName string `db:"modality_name" json:"modality_name"`
}

type CreateEnrollmentRequest struct {
	StudentID        int64  `validate:"required,gt=0"`
	ModalityID       int64  `validate:"required,gt=0"`
	EnrollmentNumber string `validate:"required,max=40"`
	Grade            string
	EnrolledAt       string
}
