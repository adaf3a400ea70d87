package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

func TestTranslateConstraint(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &pq.Error{Code: "23503"}
	liteUnique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	liteFK := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}

	assert.ErrorIs(t, TranslateConstraint(unique, ""), appErrors.ErrDuplicateKey)
	assert.ErrorIs(t, TranslateConstraint(fmt.Errorf("insert: %w", liteUnique), "student exists"), appErrors.ErrDuplicateKey)
	assert.ErrorIs(t, TranslateConstraint(fk, ""), appErrors.ErrReferential)
	assert.ErrorIs(t, TranslateConstraint(liteFK, ""), appErrors.ErrReferential)
	assert.ErrorIs(t, TranslateConstraint(errors.New("FOREIGN KEY constraint failed"), ""), appErrors.ErrReferential)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, TranslateConstraint(plain, ""))
	assert.NoError(t, TranslateConstraint(nil, ""))

	translated := appErrors.FromError(TranslateConstraint(liteUnique, "student exists"))
	assert.Equal(t, "student exists", translated.Message)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:academia.db?_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("academia.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on&_busy_timeout=5000", SQLiteDSN("file::memory:?cache=shared"))
}
