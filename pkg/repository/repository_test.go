package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/textkernel/tx-go/pkg/faults"
	"github.com/textkernel/tx-go/pkg/repository"
)

func TestMapError(t *testing.T) {
	errOther := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want []error
	}{
		{
			name: "no rows",
			err:  sql.ErrNoRows,
			want: []error{repository.ErrNotFound, faults.ErrNotFound, sql.ErrNoRows},
		},
		{
			name: "wrapped no rows",
			err:  fmt.Errorf("scan run: %w", sql.ErrNoRows),
			want: []error{repository.ErrNotFound},
		},
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "batch_results_pkey"},
			want: []error{repository.ErrDuplicate},
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "batch_results_run_id_fkey"},
			want: []error{repository.ErrReference, faults.ErrInvalidArgument},
		},
		{
			name: "other postgres error",
			err:  &pgconn.PgError{Code: "42P01"},
			want: nil,
		},
		{
			name: "unrelated",
			err:  errOther,
			want: []error{errOther},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err)
			for _, want := range tt.want {
				if !errors.Is(got, want) {
					t.Errorf("MapError() = %v, want match for %v", got, want)
				}
			}
			if len(tt.want) == 0 && got != tt.err {
				t.Errorf("MapError() = %v, want unchanged %v", got, tt.err)
			}
		})
	}

	if repository.MapError(nil) != nil {
		t.Error("MapError(nil) != nil")
	}
}
