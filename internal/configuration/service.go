// Package configuration owns the email configuration aggregate. The
// configuration record holds the label and template; recipients, report
// source, aggregations and schedule live in their own services and are
// attached on every read.
package configuration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"JetScheduler/internal/aggregation"
	"JetScheduler/internal/domain"
	"JetScheduler/internal/metrics"
	"JetScheduler/internal/models"
	"JetScheduler/internal/recipient"
	"JetScheduler/internal/report"
	"JetScheduler/internal/schedule"
	"JetScheduler/internal/store"
)

// record is the stored part of a configuration.
type record struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Template  models.Template `json:"template"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type Service struct {
	mu    sync.Mutex
	locks idLocks
	repo  *store.Repository[record]

	Recipients   *recipient.Service
	Reports      *report.Service
	Aggregations *aggregation.Service
	Schedules    *schedule.Service

	log *zap.Logger
}

func NewService(
	kv store.KV,
	recipients *recipient.Service,
	reports *report.Service,
	aggregations *aggregation.Service,
	schedules *schedule.Service,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:         store.NewRepository[record](kv, store.BucketConfigurations),
		Recipients:   recipients,
		Reports:      reports,
		Aggregations: aggregations,
		Schedules:    schedules,
		log:          logger,
	}
}

// Create stores a new configuration with an empty HTML template, an empty
// manual recipient list and no report table.
func (s *Service) Create(ctx context.Context, label string) (models.EmailConfiguration, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.EmailConfiguration{}, domain.NewValidationError("Configuration label is required")
	}

	now := time.Now().UTC()
	rec := record{
		ID:    uuid.NewString(),
		Label: label,
		Template: models.Template{
			ID:        uuid.NewString(),
			Content:   models.DefaultTemplateContent,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.Recipients.SetManual(ctx, rec.ID, nil); err != nil {
		return models.EmailConfiguration{}, err
	}
	if _, err := s.Reports.Init(ctx, rec.ID); err != nil {
		s.rollback(ctx, rec.ID)
		return models.EmailConfiguration{}, err
	}

	s.mu.Lock()
	err := s.repo.Put(ctx, rec.ID, rec)
	s.mu.Unlock()
	if err != nil {
		s.rollback(ctx, rec.ID)
		return models.EmailConfiguration{}, fmt.Errorf("save configuration: %w", err)
	}

	metrics.ConfigurationsCreated.Inc()
	s.log.Info("configuration created",
		zap.String("config_id", rec.ID),
		zap.String("label", rec.Label),
	)

	return s.assemble(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id string) (models.EmailConfiguration, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return models.EmailConfiguration{}, err
	}
	return s.assemble(ctx, rec)
}

// Exists returns a NotFound error when id is unknown.
func (s *Service) Exists(ctx context.Context, id string) error {
	_, err := s.load(ctx, id)
	return err
}

// WithConfiguration runs fn while holding the lock for id, after checking
// the configuration exists. Delete holds the same lock for its whole
// cascade.
func (s *Service) WithConfiguration(ctx context.Context, id string, fn func() error) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.Exists(ctx, id); err != nil {
		return err
	}
	return fn()
}

// List returns every configuration in creation order.
func (s *Service) List(ctx context.Context) ([]models.EmailConfiguration, error) {
	return s.filter(ctx, func(record) bool { return true })
}

// Search returns the configurations whose label contains filter, compared
// under Unicode case folding. An empty filter matches everything.
func (s *Service) Search(ctx context.Context, filter string) ([]models.EmailConfiguration, error) {
	folder := cases.Fold()
	needle := folder.String(filter)
	return s.filter(ctx, func(r record) bool {
		return strings.Contains(folder.String(r.Label), needle)
	})
}

// Update applies patch. id and createdAt never change; updatedAt is
// always refreshed.
func (s *Service) Update(ctx context.Context, id string, patch models.ConfigurationPatch) (models.EmailConfiguration, error) {
	var label string
	if patch.Label != nil {
		label = strings.TrimSpace(*patch.Label)
		if label == "" {
			return models.EmailConfiguration{}, domain.NewValidationError("Configuration label is required")
		}
	}

	s.mu.Lock()
	rec, err := s.load(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return models.EmailConfiguration{}, err
	}

	if patch.Label != nil {
		rec.Label = label
	}
	rec.UpdatedAt = time.Now().UTC()

	err = s.repo.Put(ctx, id, rec)
	s.mu.Unlock()
	if err != nil {
		return models.EmailConfiguration{}, fmt.Errorf("save configuration: %w", err)
	}

	return s.assemble(ctx, rec)
}

// Delete removes the configuration and everything stored under its id.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	s.mu.Lock()
	err := s.repo.Delete(ctx, id)
	s.mu.Unlock()
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewNotFoundError("Configuration", id)
	}
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}

	var errs []error
	errs = append(errs, s.Recipients.Delete(ctx, id))
	errs = append(errs, s.Reports.Delete(ctx, id))
	errs = append(errs, s.Aggregations.DeleteAll(ctx, id))
	if err := s.Schedules.Delete(ctx, id); err != nil && !domain.IsNotFound(err) {
		errs = append(errs, err)
	}

	metrics.ConfigurationsDeleted.Inc()
	s.log.Info("configuration deleted", zap.String("config_id", id))

	if err := errors.Join(errs...); err != nil {
		s.log.Error("cascade delete incomplete", zap.String("config_id", id), zap.Error(err))
		return fmt.Errorf("cascade delete: %w", err)
	}
	return nil
}

// SetTemplate replaces the template content. The template keeps its id
// and createdAt.
func (s *Service) SetTemplate(ctx context.Context, id, content string) (models.Template, error) {
	if strings.TrimSpace(content) == "" {
		return models.Template{}, domain.NewValidationError("Template content cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, id)
	if err != nil {
		return models.Template{}, err
	}

	now := time.Now().UTC()
	rec.Template.Content = content
	rec.Template.UpdatedAt = now
	rec.UpdatedAt = now

	if err := s.repo.Put(ctx, id, rec); err != nil {
		return models.Template{}, fmt.Errorf("save configuration: %w", err)
	}
	return rec.Template, nil
}

// ExportForAirflow builds the projection handed to the downstream
// orchestrator.
func (s *Service) ExportForAirflow(ctx context.Context, id string) (models.AirflowConfig, error) {
	cfg, err := s.Get(ctx, id)
	if err != nil {
		return models.AirflowConfig{}, err
	}

	defs := make([]models.AggregationDef, len(cfg.Aggregations))
	for i, a := range cfg.Aggregations {
		defs[i] = a.Def()
	}

	return models.AirflowConfig{
		ConfigID:        cfg.ID,
		Label:           cfg.Label,
		TemplateContent: cfg.Template.Content,
		RecipientSource: cfg.RecipientConfig,
		ReportTable:     cfg.ReportConfig.TableReference,
		Aggregations:    defs,
		Schedule:        cfg.Schedule,
	}, nil
}

// rollback removes the satellite entries of a configuration whose record
// was never stored.
func (s *Service) rollback(ctx context.Context, id string) {
	if err := errors.Join(s.Recipients.Delete(ctx, id), s.Reports.Delete(ctx, id)); err != nil {
		s.log.Error("create rollback incomplete", zap.String("config_id", id), zap.Error(err))
	}
}

func (s *Service) load(ctx context.Context, id string) (record, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return record{}, domain.NewNotFoundError("Configuration", id)
	}
	if err != nil {
		return record{}, fmt.Errorf("load configuration: %w", err)
	}
	return rec, nil
}

func (s *Service) filter(ctx context.Context, keep func(record) bool) ([]models.EmailConfiguration, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}

	out := make([]models.EmailConfiguration, 0, len(recs))
	for _, rec := range recs {
		if !keep(rec) {
			continue
		}
		cfg, err := s.assemble(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

// assemble attaches the satellite state stored under the configuration id.
func (s *Service) assemble(ctx context.Context, rec record) (models.EmailConfiguration, error) {
	cfg := models.EmailConfiguration{
		ID:        rec.ID,
		Label:     rec.Label,
		Template:  rec.Template,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}

	rc, err := s.Recipients.Get(ctx, rec.ID)
	switch {
	case domain.IsNotFound(err):
		rc = models.NewManualRecipients(rec.ID, nil)
	case err != nil:
		return models.EmailConfiguration{}, err
	}
	cfg.RecipientConfig = rc

	rep, err := s.Reports.Get(ctx, rec.ID)
	switch {
	case domain.IsNotFound(err):
		rep = models.ReportConfig{ID: rec.ID}
	case err != nil:
		return models.EmailConfiguration{}, err
	}
	cfg.ReportConfig = rep

	cfg.Aggregations, err = s.Aggregations.List(ctx, rec.ID)
	if err != nil {
		return models.EmailConfiguration{}, err
	}

	sc, err := s.Schedules.Get(ctx, rec.ID)
	switch {
	case err == nil:
		cfg.Schedule = &sc
	case !domain.IsNotFound(err):
		return models.EmailConfiguration{}, err
	}

	return cfg, nil
}
