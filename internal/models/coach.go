package models

// Coach teaches one modality at one academy.
type Coach struct {
	ID            int64   `db:"id" json:"id"`
	FullName      string  `db:"full_name" json:"full_name"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Certification *string `db:"certification" json:"certification,omitempty"`
	AcademyID     int64   `db:"academy_id" json:"academy_id"`
	ModalityID    int64   `db:"modality_id" json:"modality_id"`
}

// CoachDetail adds the display names of the referenced rows.
type CoachDetail struct {
	Coach
	AcademyName  string `db:"academy_name" json:"academy_name"`
	ModalityName string `db:"modality_name" json:"modality_name"`
}

// CoachFilter narrows coach listings.
type CoachFilter struct {
	AcademyID  *int64
	ModalityID *int64
}

type CreateCoachRequest struct {
	FullName      string `validate:"required,max=120"`
	Phone         string
	Certification string
	AcademyID     int64 `validate:"required,gt=0"`
	ModalityID    int64 `validate:"required,gt=0"`
}

type UpdateCoachRequest struct {
	FullName      *string
	Phone         *string
	Certification *string
	AcademyID     *int64
	ModalityID    *int64
}
