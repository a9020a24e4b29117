// Package schedule stores the delivery schedule of each configuration and
// derives its cron expression, description and upcoming run times.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
	"JetScheduler/internal/store"
)

const (
	DefaultTime     = "09:00"
	DefaultTimezone = "UTC"
)

var timeRe = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):([0-5][0-9])$`)

// Service keeps one schedule per configuration id.
type Service struct {
	mu   sync.Mutex
	repo *store.Repository[models.ScheduleConfig]
	log  *zap.Logger
}

func NewService(kv store.KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo: store.NewRepository[models.ScheduleConfig](kv, store.BucketSchedules),
		log:  logger,
	}
}

// Create stores a disabled default schedule, replacing any existing one.
func (s *Service) Create(ctx context.Context, configID string) (models.ScheduleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, configID)
}

func (s *Service) Get(ctx context.Context, configID string) (models.ScheduleConfig, error) {
	sc, err := s.repo.Get(ctx, configID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ScheduleConfig{}, notFound(configID)
	}
	if err != nil {
		return models.ScheduleConfig{}, fmt.Errorf("load schedule: %w", err)
	}
	return normalize(sc), nil
}

// GetOrCreate returns the stored schedule, creating the default one on
// first access. Later calls never reset it.
func (s *Service) GetOrCreate(ctx context.Context, configID string) (models.ScheduleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, err := s.Get(ctx, configID)
	if domain.IsNotFound(err) {
		return s.create(ctx, configID)
	}
	return sc, err
}

// Update applies patch to an existing schedule. The whole patch is
// validated before anything is written.
func (s *Service) Update(ctx context.Context, configID string, patch models.SchedulePatch) (models.ScheduleConfig, error) {
	if err := validatePatch(patch); err != nil {
		return models.ScheduleConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc, err := s.Get(ctx, configID)
	if err != nil {
		return models.ScheduleConfig{}, err
	}

	if patch.Enabled != nil {
		sc.Enabled = *patch.Enabled
	}
	if patch.DaysOfWeek != nil {
		sc.DaysOfWeek = append([]models.DayOfWeek{}, (*patch.DaysOfWeek)...)
	}
	if patch.Time != nil {
		sc.Time = *patch.Time
	}
	if patch.DatesOfMonth != nil {
		sc.DatesOfMonth = append([]int{}, (*patch.DatesOfMonth)...)
	}
	if patch.Timezone != nil {
		sc.Timezone = *patch.Timezone
	}
	sc.UpdatedAt = time.Now().UTC()

	if len(sc.DatesOfMonth) > 0 && len(sc.DaysOfWeek) > 0 {
		s.log.Warn("schedule has both dates of month and days of week, dates take precedence",
			zap.String("config_id", configID),
		)
	}

	if err := s.repo.Put(ctx, configID, sc); err != nil {
		return models.ScheduleConfig{}, fmt.Errorf("save schedule: %w", err)
	}
	return sc, nil
}

func (s *Service) Delete(ctx context.Context, configID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Delete(ctx, configID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(configID)
	}
	return err
}

func (s *Service) create(ctx context.Context, configID string) (models.ScheduleConfig, error) {
	now := time.Now().UTC()
	sc := models.ScheduleConfig{
		ID:           uuid.NewString(),
		ConfigID:     configID,
		Enabled:      false,
		DaysOfWeek:   []models.DayOfWeek{},
		Time:         DefaultTime,
		DatesOfMonth: []int{},
		Timezone:     DefaultTimezone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, configID, sc); err != nil {
		return models.ScheduleConfig{}, fmt.Errorf("save schedule: %w", err)
	}

	s.log.Info("schedule created", zap.String("config_id", configID))
	return sc, nil
}

func validatePatch(p models.SchedulePatch) error {
	if p.Time != nil && !timeRe.MatchString(*p.Time) {
		return domain.NewValidationError("Invalid time format. Use HH:MM (24-hour format)")
	}
	if p.DatesOfMonth != nil {
		for _, d := range *p.DatesOfMonth {
			if d < 1 || d > 31 {
				return domain.NewValidationError("Dates of month must be between 1 and 31")
			}
		}
	}
	if p.DaysOfWeek != nil {
		for _, d := range *p.DaysOfWeek {
			if _, ok := d.Weekday(); !ok {
				return domain.NewValidationError(fmt.Sprintf("Invalid day of week: %s", d))
			}
		}
	}
	if p.Timezone != nil {
		if _, err := time.LoadLocation(*p.Timezone); err != nil || *p.Timezone == "" {
			return domain.NewValidationError(fmt.Sprintf("Invalid timezone: %s", *p.Timezone))
		}
	}
	return nil
}

func notFound(configID string) error {
	return &domain.DomainError{
		Code:    domain.ErrCodeNotFound,
		Message: fmt.Sprintf("Schedule not found for configuration: %s", configID),
		Err:     domain.ErrNotFound,
	}
}

func normalize(sc models.ScheduleConfig) models.ScheduleConfig {
	if sc.DaysOfWeek == nil {
		sc.DaysOfWeek = []models.DayOfWeek{}
	}
	if sc.DatesOfMonth == nil {
		sc.DatesOfMonth = []int{}
	}
	return sc
}
