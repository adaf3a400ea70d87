package models

// Modality is a sport offered across academies.
type Modality struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Category *string `db:"category" json:"category,omitempty"`
}

type CreateModalityRequest struct {
	Name     string `validate:"required,max=80"`
	Category string
}

type UpdateModalityRequest struct {
	Name     *string
	Category *string
}
