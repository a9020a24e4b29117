// Package recipient stores each configuration's recipient source and
// resolves it to concrete addresses.
package recipient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"JetScheduler/internal/csvcodec"
	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
	"JetScheduler/internal/store"
	"JetScheduler/internal/validate"
)

type Service struct {
	mu     sync.Mutex
	repo   *store.Repository[models.RecipientConfig]
	source domain.RecipientSource
	log    *zap.Logger
}

func NewService(kv store.KV, source domain.RecipientSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   store.NewRepository[models.RecipientConfig](kv, store.BucketRecipients),
		source: source,
		log:    logger,
	}
}

// SetManual replaces the recipient source with a fixed address list. Every
// address must pass validate.Email.
func (s *Service) SetManual(ctx context.Context, configID string, emails []string) (models.RecipientConfig, error) {
	if bad := validate.InvalidEmails(emails); len(bad) > 0 {
		return models.RecipientConfig{}, domain.NewValidationError(
			fmt.Sprintf("Invalid email format: %s", strings.Join(bad, ", ")),
		)
	}

	rc := models.NewManualRecipients(configID, slices.Clone(emails))
	return rc, s.save(ctx, rc)
}

// SetDatalake points the recipient source at a table column.
func (s *Service) SetDatalake(ctx context.Context, configID string, ref models.TableReference) (models.RecipientConfig, error) {
	if strings.TrimSpace(ref.EmailColumn) == "" {
		return models.RecipientConfig{}, domain.NewValidationError("Email column must be specified for datalake recipients")
	}

	rc := models.NewDatalakeRecipients(configID, ref)
	return rc, s.save(ctx, rc)
}

// ImportCSV reads an uploaded CSV with an Email column and stores the
// addresses as the manual list.
func (s *Service) ImportCSV(ctx context.Context, configID string, r io.Reader, maxRows int) (models.RecipientConfig, error) {
	emails, err := csvcodec.ParseEmails(r, maxRows)
	if err != nil {
		return models.RecipientConfig{}, domain.NewValidationError(err.Error())
	}
	return s.SetManual(ctx, configID, emails)
}

func (s *Service) Get(ctx context.Context, configID string) (models.RecipientConfig, error) {
	rc, err := s.repo.Get(ctx, configID)
	if errors.Is(err, store.ErrNotFound) {
		return models.RecipientConfig{}, domain.NewNotFoundError("Recipient config", configID)
	}
	if err != nil {
		return models.RecipientConfig{}, fmt.Errorf("load recipients: %w", err)
	}
	if rc.Type == models.RecipientManual && rc.ManualEmails == nil {
		rc.ManualEmails = []string{}
	}
	return rc, nil
}

// Resolve returns the addresses the configuration would send to. Manual
// lists come from the store, datalake references from the recipient source.
func (s *Service) Resolve(ctx context.Context, configID string) ([]string, error) {
	rc, err := s.Get(ctx, configID)
	if err != nil {
		return nil, err
	}

	switch rc.Type {
	case models.RecipientManual:
		return slices.Clone(rc.ManualEmails), nil

	case models.RecipientDatalake:
		if rc.TableReference == nil {
			return nil, domain.NewValidationError("Email column must be specified for datalake recipients")
		}
		emails, err := s.source.ResolveEmails(ctx, *rc.TableReference)
		if err != nil {
			return nil, fmt.Errorf("resolve datalake recipients: %w", err)
		}
		return emails, nil

	default:
		return nil, fmt.Errorf("unknown recipient type %q", rc.Type)
	}
}

// Delete removes the recipient source. A missing entry is not an error.
func (s *Service) Delete(ctx context.Context, configID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Delete(ctx, configID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) save(ctx context.Context, rc models.RecipientConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Put(ctx, rc.ID, rc); err != nil {
		return fmt.Errorf("save recipients: %w", err)
	}

	s.log.Info("recipients updated",
		zap.String("config_id", rc.ID),
		zap.String("type", string(rc.Type)),
	)
	return nil
}
