package datasource

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"JetScheduler/internal/models"
)

func TestPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"undefined column", &pgconn.PgError{Code: "42703"}, true},
		{"undefined table wrapped", fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"}), true},
		{"connection failure", &pgconn.PgError{Code: "08006"}, false},
		{"too many connections", &pgconn.PgError{Code: "53300"}, false},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, false},
		{"network error", errors.New("dial tcp: connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permanent(tt.err))
		})
	}
}

func TestTableIdent(t *testing.T) {
	got := tableIdent(models.TableReference{Database: "sales", Table: `weekly"summary`})
	assert.Equal(t, `"sales"."weekly""summary"`, got)
}

func TestCountSQL(t *testing.T) {
	got := countSQL(models.TableReference{Database: "users", Table: "subscribers"}, "email")
	assert.Equal(t, `SELECT count("email") FROM "users"."subscribers"`, got)
}
