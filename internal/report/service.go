// Package report manages the table each configuration reads its report
// data from, and exports that table as CSV or XLSX.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"JetScheduler/internal/csvcodec"
	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
	"JetScheduler/internal/store"
)

const sheetName = "Report"

type Service struct {
	mu      sync.Mutex
	repo    *store.Repository[models.ReportConfig]
	catalog domain.TableCatalog
	log     *zap.Logger
}

func NewService(kv store.KV, catalog domain.TableCatalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    store.NewRepository[models.ReportConfig](kv, store.BucketReports),
		catalog: catalog,
		log:     logger,
	}
}

// Init stores an empty report source for a new configuration.
func (s *Service) Init(ctx context.Context, configID string) (models.ReportConfig, error) {
	rc := models.ReportConfig{ID: configID}
	return rc, s.save(ctx, rc)
}

// SetSource points the configuration at ref after checking the table exists.
func (s *Service) SetSource(ctx context.Context, configID string, ref models.TableReference) (models.ReportConfig, error) {
	if err := s.ensureTable(ctx, ref); err != nil {
		return models.ReportConfig{}, err
	}

	rc := models.ReportConfig{ID: configID, TableReference: ref}
	if err := s.save(ctx, rc); err != nil {
		return models.ReportConfig{}, err
	}

	s.log.Info("report source set",
		zap.String("config_id", configID),
		zap.String("table", ref.Path()),
	)
	return rc, nil
}

func (s *Service) Get(ctx context.Context, configID string) (models.ReportConfig, error) {
	rc, err := s.repo.Get(ctx, configID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ReportConfig{}, domain.NewNotFoundError("Report config", configID)
	}
	if err != nil {
		return models.ReportConfig{}, fmt.Errorf("load report config: %w", err)
	}
	return rc, nil
}

func (s *Service) Columns(ctx context.Context, configID string) ([]models.ColumnInfo, error) {
	ref, err := s.source(ctx, configID)
	if err != nil {
		return nil, err
	}

	cols, err := s.catalog.Columns(ctx, ref)
	if err != nil {
		return nil, err
	}
	if cols == nil {
		cols = []models.ColumnInfo{}
	}
	return cols, nil
}

// ExportCSV returns the whole source table as CSV text, header first.
func (s *Service) ExportCSV(ctx context.Context, configID string) (string, error) {
	header, rows, err := s.table(ctx, configID)
	if err != nil {
		return "", err
	}
	return csvcodec.ToCSV(append([][]string{header}, rows...)), nil
}

// ExportXLSX writes the source table as a single-sheet workbook with a
// bold header row.
func (s *Service) ExportXLSX(ctx context.Context, configID string, w io.Writer) error {
	header, rows, err := s.table(ctx, configID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if len(header) > 0 {
		last, _ := excelize.ColumnNumberToName(len(header))
		if err := f.SetColWidth(sheetName, "A", last, 15); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Delete removes the report source. A missing entry is not an error.
func (s *Service) Delete(ctx context.Context, configID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Delete(ctx, configID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) table(ctx context.Context, configID string) ([]string, [][]string, error) {
	ref, err := s.source(ctx, configID)
	if err != nil {
		return nil, nil, err
	}

	cols, err := s.catalog.Columns(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.catalog.Rows(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	return header, rows, nil
}

// source loads the configured table and checks it still exists.
func (s *Service) source(ctx context.Context, configID string) (models.TableReference, error) {
	rc, err := s.Get(ctx, configID)
	if err != nil {
		return models.TableReference{}, err
	}
	if rc.TableReference.Database == "" && rc.TableReference.Table == "" {
		return models.TableReference{}, domain.NewValidationError("Report source is not configured")
	}
	if err := s.ensureTable(ctx, rc.TableReference); err != nil {
		return models.TableReference{}, err
	}
	return rc.TableReference, nil
}

func (s *Service) ensureTable(ctx context.Context, ref models.TableReference) error {
	ok, err := s.catalog.TableExists(ctx, ref)
	if err != nil {
		return fmt.Errorf("check table %s: %w", ref.Path(), err)
	}
	if !ok {
		return domain.NewValidationError(fmt.Sprintf("Table %s does not exist", ref.Path()))
	}
	return nil
}

func (s *Service) save(ctx context.Context, rc models.ReportConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Put(ctx, rc.ID, rc); err != nil {
		return fmt.Errorf("save report config: %w", err)
	}
	return nil
}
