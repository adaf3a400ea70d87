package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

func TestStoreErrorMapping(t *testing.T) {
	assert.NoError(t, storeError(nil, "x"))

	typed := appErrors.Clone(appErrors.ErrNotFound, "gone")
	assert.Same(t, typed, storeError(typed, "x"))

	unique := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.ErrorIs(t, storeError(unique, "x"), appErrors.ErrDuplicateKey)

	foreign := &pq.Error{Code: "23503", Message: "violates foreign key constraint"}
	assert.ErrorIs(t, storeError(foreign, "x"), appErrors.ErrReferential)

	internal := storeError(errors.New("disk full"), "failed to save")
	assert.ErrorIs(t, internal, appErrors.ErrInternal)
	assert.Contains(t, internal.Error(), "failed to save")
}

func TestLookupErrorMapsNoRows(t *testing.T) {
	err := lookupError(sql.ErrNoRows, "student not found", "x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, err.Error(), "student not found")
}

func TestMemoryUnitOfWorkRollsBack(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	err := ts.uow.Do(ctx, func(repos Repositories) error {
		require.NoError(t, repos.Academies().Create(ctx, &models.Academy{Name: "Temp"}))
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Empty(t, ts.uow.state.academies)
	assert.Equal(t, 1, ts.uow.rollbacks)
}
