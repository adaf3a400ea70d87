package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// TranslateConstraint maps driver constraint violations onto the domain
// taxonomy. Other errors are returned unchanged.
func TranslateConstraint(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrDuplicateKey.Code, appErrors.ErrDuplicateKey.Status, orDefault(message, appErrors.ErrDuplicateKey.Message))
	case IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrReferential.Code, appErrors.ErrReferential.Status, orDefault(message, appErrors.ErrReferential.Message))
	default:
		return err
	}
}

// IsUniqueViolation reports unique or primary key violations.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports foreign key violations.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
