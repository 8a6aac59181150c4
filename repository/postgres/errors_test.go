package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorayamlj/FocusTache/domain"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code domain.ErrorCode
	}{
		{"foreign key", &pgconn.PgError{Code: "23503"}, domain.ErrCodeInvalid},
		{"unique", &pgconn.PgError{Code: "23505"}, domain.ErrCodeConflict},
		{"check", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23514"}), domain.ErrCodeConflict},
		{"connection lost", &pgconn.PgError{Code: "08006"}, domain.ErrCodeUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, domain.ErrCodeUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrCodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writeError("save task t1", tt.err)
			assert.True(t, domain.IsDomainError(err, tt.code), err)
		})
	}
}

func TestWriteError_ForeignKeyNamesParent(t *testing.T) {
	err := writeError("insert task", &pgconn.PgError{Code: "23503"})
	details, ok := domain.ValidationDetails(err)
	require.True(t, ok)
	assert.Equal(t, "parent_id", details.Violations[0].Field)
}

func TestWriteError_UnknownFailuresStayUnclassified(t *testing.T) {
	for _, cause := range []error{
		&pgconn.PgError{Code: "42P01"},
		errors.New("closed pool"),
	} {
		err := writeError("save task t1", cause)
		var dErr *domain.Error
		assert.False(t, errors.As(err, &dErr), err)
		assert.ErrorIs(t, err, cause)
	}
}
