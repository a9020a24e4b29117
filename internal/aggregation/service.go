package aggregation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
	"JetScheduler/internal/store"
	"JetScheduler/internal/worker"
)

// Service stores the ordered aggregation list of every configuration.
type Service struct {
	mu     sync.Mutex
	repo   *store.Repository[[]models.AggregationConfig]
	source domain.RowSource
	pool   *worker.Pool
	log    *zap.Logger
}

func NewService(kv store.KV, source domain.RowSource, pool *worker.Pool, logger *zap.Logger) *Service {
	if pool == nil {
		pool = worker.New(1, nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   store.NewRepository[[]models.AggregationConfig](kv, store.BucketAggregations),
		source: source,
		pool:   pool,
		log:    logger,
	}
}

// Add appends def to the configuration's list under a fresh ID.
func (s *Service) Add(ctx context.Context, configID string, def models.AggregationDef) (models.AggregationConfig, error) {
	if strings.TrimSpace(def.Column) == "" {
		return models.AggregationConfig{}, domain.NewValidationError("Aggregation column is required")
	}
	if strings.TrimSpace(def.Label) == "" {
		return models.AggregationConfig{}, domain.NewValidationError("Aggregation label is required")
	}
	if !def.Type.Valid() {
		return models.AggregationConfig{}, domain.NewValidationError(fmt.Sprintf("Unknown aggregation type: %s", def.Type))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, configID)
	if err != nil {
		return models.AggregationConfig{}, err
	}

	agg := models.AggregationConfig{
		ID:       uuid.NewString(),
		ConfigID: configID,
		Column:   def.Column,
		Type:     def.Type,
		Label:    def.Label,
	}

	if err := s.repo.Put(ctx, configID, append(existing, agg)); err != nil {
		return models.AggregationConfig{}, fmt.Errorf("save aggregations: %w", err)
	}

	s.log.Info("aggregation added",
		zap.String("config_id", configID),
		zap.String("aggregation_id", agg.ID),
		zap.String("type", string(agg.Type)),
	)
	return agg, nil
}

func (s *Service) Remove(ctx context.Context, configID, aggregationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, configID)
	if err != nil {
		return err
	}

	filtered := make([]models.AggregationConfig, 0, len(existing))
	for _, a := range existing {
		if a.ID != aggregationID {
			filtered = append(filtered, a)
		}
	}
	if len(filtered) == len(existing) {
		return domain.NewNotFoundError("Aggregation", aggregationID)
	}

	if err := s.repo.Put(ctx, configID, filtered); err != nil {
		return fmt.Errorf("save aggregations: %w", err)
	}
	return nil
}

// List returns the aggregations in insertion order; never nil.
func (s *Service) List(ctx context.Context, configID string) ([]models.AggregationConfig, error) {
	return s.load(ctx, configID)
}

// DeleteAll drops every aggregation of the configuration.
func (s *Service) DeleteAll(ctx context.Context, configID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Delete(ctx, configID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// ComputeAll evaluates every aggregation of the configuration against
// table. Source queries run on the worker pool; results keep definition
// order. Count asks a RowCounter source for the number of values instead
// of reading them.
func (s *Service) ComputeAll(ctx context.Context, configID string, table models.TableReference) ([]models.ComputedAggregation, error) {
	aggs, err := s.List(ctx, configID)
	if err != nil {
		return nil, err
	}

	results := make([]models.ComputedAggregation, len(aggs))
	err = s.pool.Run(ctx, len(aggs), func(ctx context.Context, i int) error {
		agg := aggs[i]

		if counter, ok := s.source.(domain.RowCounter); ok && agg.Type == models.AggregationCount {
			n, err := counter.Count(ctx, table, agg.Column)
			if err != nil {
				return fmt.Errorf("aggregation %q: %w", agg.Label, err)
			}
			results[i] = models.ComputedAggregation{Label: agg.Label, Value: float64(n)}
			return nil
		}

		values, err := s.source.Query(ctx, table, agg.Column)
		if err != nil {
			return fmt.Errorf("aggregation %q: %w", agg.Label, err)
		}

		v, err := Compute(agg.Type, values)
		if err != nil {
			return err
		}

		results[i] = models.ComputedAggregation{Label: agg.Label, Value: v}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) load(ctx context.Context, configID string) ([]models.AggregationConfig, error) {
	aggs, err := s.repo.Get(ctx, configID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && aggs == nil) {
		return []models.AggregationConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load aggregations: %w", err)
	}
	return aggs, nil
}
