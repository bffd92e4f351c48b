package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/medirent/opsdesk/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows maps to not found", fmt.Errorf("query: %w", sql.ErrNoRows), store.ErrNotFound},
		{"unique violation maps to duplicate", &pgconn.PgError{Code: "23505"}, store.ErrDuplicate},
		{"foreign key violation maps to invalid entity", &pgconn.PgError{Code: "23503", ConstraintName: "tasks_assigned_to_id_fkey"}, store.ErrInvalidEntity},
		{"check violation maps to invalid entity", &pgconn.PgError{Code: "23514"}, store.ErrInvalidEntity},
		{"not null violation maps to invalid entity", &pgconn.PgError{Code: "23502", ColumnName: "title"}, store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("unknown errors pass through unchanged", func(t *testing.T) {
		t.Parallel()

		err := errors.New("connection reset")
		assert.Equal(t, err, MapError(err))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
