package models

import "time"

// Academy is a training venue ("polo") owning students and coaches.
type Academy struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Address     *string   `db:"address" json:"address,omitempty"`
	Responsible *string   `db:"responsible" json:"responsible,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateAcademyRequest registers a venue.
type CreateAcademyRequest struct {
	Name        string `validate:"required,max=120"`
	Address     string
	Responsible string
}

// UpdateAcademyRequest applies only non-nil fields.
type UpdateAcademyRequest struct {
	Name        *string
	Address     *string
	Responsible *string
}
