package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"JetScheduler/internal/domain"
	"JetScheduler/internal/metrics"
	"JetScheduler/internal/models"
)

var (
	_ domain.Datalake   = (*Postgres)(nil)
	_ domain.RowCounter = (*Postgres)(nil)
)

// Postgres reads report data from a warehouse reachable over the Postgres
// protocol. A TableReference maps to schema.table.
type Postgres struct {
	Pool     *pgxpool.Pool
	Limiter  *rate.Limiter
	RetryFor time.Duration
	Log      *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, limiter *rate.Limiter, retryFor time.Duration, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{
		Pool:     pool,
		Limiter:  limiter,
		RetryFor: retryFor,
		Log:      logger,
	}
}

func (p *Postgres) Query(ctx context.Context, table models.TableReference, column string) ([]float64, error) {
	col := pgx.Identifier{column}.Sanitize()
	sql := fmt.Sprintf(`SELECT %s::float8 FROM %s WHERE %s IS NOT NULL`,
		col, tableIdent(table), col)

	var values []float64
	err := p.withRetry(ctx, "rows", func() error {
		rows, err := p.Pool.Query(ctx, sql)
		if err != nil {
			return err
		}
		values, err = pgx.CollectRows(rows, pgx.RowTo[float64])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", table.Path(), column, err)
	}
	if values == nil {
		values = []float64{}
	}
	return values, nil
}

// Count returns the number of non-null values in column, whatever its type.
func (p *Postgres) Count(ctx context.Context, table models.TableReference, column string) (int, error) {
	var n int64
	err := p.withRetry(ctx, "rows", func() error {
		return p.Pool.QueryRow(ctx, countSQL(table, column)).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count %s.%s: %w", table.Path(), column, err)
	}
	return int(n), nil
}

func (p *Postgres) ResolveEmails(ctx context.Context, table models.TableReference) ([]string, error) {
	if table.EmailColumn == "" {
		return nil, domain.NewValidationError("Email column must be specified for datalake recipients")
	}

	col := pgx.Identifier{table.EmailColumn}.Sanitize()
	sql := fmt.Sprintf(`SELECT DISTINCT %s::text FROM %s WHERE %s IS NOT NULL ORDER BY 1`,
		col, tableIdent(table), col)

	var emails []string
	err := p.withRetry(ctx, "recipients", func() error {
		rows, err := p.Pool.Query(ctx, sql)
		if err != nil {
			return err
		}
		emails, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve recipients from %s: %w", table.Path(), err)
	}
	if emails == nil {
		emails = []string{}
	}
	return emails, nil
}

func (p *Postgres) TableExists(ctx context.Context, table models.TableReference) (bool, error) {
	var exists bool
	err := p.withRetry(ctx, "catalog", func() error {
		return p.Pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema=$1 AND table_name=$2
			)`,
			table.Database,
			table.Table,
		).Scan(&exists)
	})
	return exists, err
}

func (p *Postgres) Columns(ctx context.Context, table models.TableReference) ([]models.ColumnInfo, error) {
	var cols []models.ColumnInfo
	err := p.withRetry(ctx, "catalog", func() error {
		rows, err := p.Pool.Query(ctx,
			`SELECT column_name, data_type
			 FROM information_schema.columns
			 WHERE table_schema=$1 AND table_name=$2
			 ORDER BY ordinal_position`,
			table.Database,
			table.Table,
		)
		if err != nil {
			return err
		}
		cols, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ColumnInfo, error) {
			var c models.ColumnInfo
			err := row.Scan(&c.Name, &c.Type)
			return c, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table.Path(), err)
	}
	return cols, nil
}

// Rows returns every row of the table with each value cast to text. NULL
// becomes the empty string.
func (p *Postgres) Rows(ctx context.Context, table models.TableReference) ([][]string, error) {
	cols, err := p.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return [][]string{}, nil
	}

	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = fmt.Sprintf("COALESCE(%s::text, '')", pgx.Identifier{c.Name}.Sanitize())
	}
	sql := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(exprs, ", "), tableIdent(table))

	var out [][]string
	err = p.withRetry(ctx, "export", func() error {
		rows, err := p.Pool.Query(ctx, sql)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]string, error) {
			rec := make([]string, len(cols))
			dest := make([]any, len(cols))
			for i := range rec {
				dest[i] = &rec[i]
			}
			err := row.Scan(dest...)
			return rec, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", table.Path(), err)
	}
	return out, nil
}

// withRetry runs op with exponential backoff bounded by RetryFor and ctx.
// Errors the server reports for bad SQL or missing objects are not retried.
func (p *Postgres) withRetry(ctx context.Context, kind string, op func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		err := op()
		if err == nil {
			return nil
		}
		if permanent(err) {
			return backoff.Permanent(err)
		}
		p.Log.Warn("datalake query failed, retrying",
			zap.String("kind", kind),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if p.RetryFor > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 200 * time.Millisecond
		exp.MaxElapsedTime = p.RetryFor
		b = exp
	}

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	if err != nil {
		metrics.DatalakeQueries.WithLabelValues(kind, "error").Inc()
		return err
	}
	metrics.DatalakeQueries.WithLabelValues(kind, "ok").Inc()
	return nil
}

// permanent reports errors that will not go away on retry: anything the
// server rejected with an SQLSTATE outside the connection/resource classes.
func permanent(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return false
	}
	switch pgErr.Code[:2] {
	case "08", "53", "57", "40":
		return false
	}
	return true
}

func countSQL(t models.TableReference, column string) string {
	return fmt.Sprintf(`SELECT count(%s) FROM %s`, pgx.Identifier{column}.Sanitize(), tableIdent(t))
}

func tableIdent(t models.TableReference) string {
	return pgx.Identifier{t.Database, t.Table}.Sanitize()
}
