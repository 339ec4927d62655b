package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: UniqueViolation, ConstraintName: "attendance_records_user_date_key"}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"any unique violation", uniqueErr, "", true},
		{"matching constraint", uniqueErr, "attendance_records_user_date_key", true},
		{"other constraint", uniqueErr, "users_email_key", false},
		{"wrapped", fmt.Errorf("insert: %w", uniqueErr), "", true},
		{"foreign key", &pgconn.PgError{Code: ForeignKeyViolation}, "", false},
		{"plain error", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err, tt.constraint))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("delete: %w", &pgconn.PgError{Code: ForeignKeyViolation})))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: UniqueViolation}))
}
