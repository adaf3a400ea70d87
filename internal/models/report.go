package models

// GradeNotInformed buckets enrollments without a grade.
const GradeNotInformed = "Não informada"

// ReportKind names an exportable report.
type ReportKind string

const (
	ReportActiveByAcademy ReportKind = "active-by-academy"
	ReportGradeCounts     ReportKind = "grade-counts"
	ReportRoster          ReportKind = "roster"
)

// AcademyCount is one row of the active-students-per-academy report.
type AcademyCount struct {
	AcademyName string `db:"academy_name" json:"academy_name"`
	Count       int    `db:"total" json:"total"`
}

// GradeCount is one (modality, grade) bucket.
type GradeCount struct {
	ModalityID   int64   `db:"modality_id" json:"modality_id"`
	ModalityName string  `db:"modality_name" json:"modality_name"`
	Grade        *string `db:"grade" json:"grade,omitempty"`
	Count        int     `db:"total" json:"total"`
}

// RosterEntry is a row of the students-by-modality-and-grade listing.
type RosterEntry struct {
	StudentName      string `db:"student_name" json:"student_name"`
	EnrollmentNumber string `db:"enrollment_number" json:"enrollment_number"`
	AcademyName      string `db:"academy_name" json:"academy_name"`
}

// ReportRequest selects a report and its parameters for export.
type ReportRequest struct {
	Kind         ReportKind
	ModalityName string
	Grade        string
}

// GradeBucket is a (modality, grade) count with missing grades labelled
// GradeNotInformed.
type GradeBucket struct {
	ModalityID   int64  `json:"modality_id"`
	ModalityName string `json:"modality_name"`
	Grade        string `json:"grade"`
	Count        int    `json:"total"`
}
