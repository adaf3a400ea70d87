package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store opens transactions against the database and hands out repositories
// bound to them.
type Store struct {
	db *sqlx.DB
}

// NewStore constructs a Store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Tx groups the repositories sharing one transaction.
type Tx struct {
	tx *sqlx.Tx
}

func (t *Tx) Academies() *AcademyRepository { return NewAcademyRepository(t.tx) }
func (t *Tx) Students() *StudentRepository { return NewStudentRepository(t.tx) }
func (t *Tx) Modalities() *ModalityRepository { return NewModalityRepository(t.tx) }
func (t *Tx) Coaches() *CoachRepository { return NewCoachRepository(t.tx) }
func (t *Tx) Enrollments() *EnrollmentRepository { return NewEnrollmentRepository(t.tx) }
func (t *Tx) Users() *UserRepository { return NewUserRepository(t.tx) }
func (t *Tx) Reports() *ReportRepository { return NewReportRepository(t.tx) }

// InTx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back on error or panic; a panic is re-raised after rollback.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
