package domain

import (
	"context"

	"JetScheduler/internal/models"
)

// RowSource returns the numeric values of one column of a report table.
type RowSource interface {
	Query(ctx context.Context, table models.TableReference, column string) ([]float64, error)
}

// RowCounter is implemented by sources that can count the non-null
// values of a column without reading them as numbers, so count works on
// text columns too.
type RowCounter interface {
	Count(ctx context.Context, table models.TableReference, column string) (int, error)
}

// RecipientSource resolves the addresses stored in a table's email column.
type RecipientSource interface {
	ResolveEmails(ctx context.Context, table models.TableReference) ([]string, error)
}

// TableCatalog answers metadata questions about datalake tables and
// produces raw rows for exports.
type TableCatalog interface {
	TableExists(ctx context.Context, table models.TableReference) (bool, error)
	Columns(ctx context.Context, table models.TableReference) ([]models.ColumnInfo, error)
	Rows(ctx context.Context, table models.TableReference) ([][]string, error)
}

// Datalake is everything the services need from the warehouse.
type Datalake interface {
	RowSource
	RecipientSource
	TableCatalog
}
