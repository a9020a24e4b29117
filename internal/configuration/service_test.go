package configuration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"JetScheduler/internal/aggregation"
	"JetScheduler/internal/datasource"
	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
	"JetScheduler/internal/recipient"
	"JetScheduler/internal/report"
	"JetScheduler/internal/schedule"
	"JetScheduler/internal/store"
	"JetScheduler/internal/worker"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return newTestServiceWithKV(t, store.NewMemory())
}

func newTestServiceWithKV(t *testing.T, kv store.KV) *Service {
	t.Helper()

	fx := datasource.DefaultFixture()
	log := zap.NewNop()

	return NewService(
		kv,
		recipient.NewService(kv, fx, log),
		report.NewService(kv, fx, log),
		aggregation.NewService(kv, fx, worker.New(2, nil, log), log),
		schedule.NewService(kv, log),
		log,
	)
}

func ptr[T any](v T) *T { return &v }

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cfg, err := svc.Create(ctx, "  Weekly Report ")
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ID)
	assert.Equal(t, "Weekly Report", cfg.Label)
	assert.Equal(t, "<html><body></body></html>", cfg.Template.Content)
	assert.NotEmpty(t, cfg.Template.ID)
	assert.Equal(t, models.NewManualRecipients(cfg.ID, nil), cfg.RecipientConfig)
	assert.Equal(t, models.ReportConfig{ID: cfg.ID}, cfg.ReportConfig)
	assert.Equal(t, []models.AggregationConfig{}, cfg.Aggregations)
	assert.Nil(t, cfg.Schedule)
	assert.Equal(t, cfg.CreatedAt, cfg.UpdatedAt)

	got, err := svc.Get(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID)
	assert.Equal(t, cfg.Label, got.Label)
}

func TestService_CreateRequiresLabel(t *testing.T) {
	svc := newTestService(t)

	for _, label := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), label)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, "Configuration label is required", err.Error())
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_GetMissing(t *testing.T) {
	_, err := newTestService(t).Get(context.Background(), "nope")
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "Configuration not found: nope", err.Error())
}

func TestService_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, l := range []string{"Weekly Sales", "Monthly KPIs", "weekly churn", "ÜBERSICHT"} {
		_, err := svc.Create(ctx, l)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Weekly Sales", all[0].Label)
	assert.Equal(t, "ÜBERSICHT", all[3].Label)

	weekly, err := svc.Search(ctx, "WEEK")
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, "Weekly Sales", weekly[0].Label)
	assert.Equal(t, "weekly churn", weekly[1].Label)

	// folding is Unicode-aware
	folded, err := svc.Search(ctx, "übersicht")
	require.NoError(t, err)
	require.Len(t, folded, 1)

	none, err := svc.Search(ctx, "quarterly")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	every, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, every, 4)
}

func TestService_UpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cfg, err := svc.Create(ctx, "Old")
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	updated, err := svc.Update(ctx, cfg.ID, models.ConfigurationPatch{Label: ptr(" New ")})
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, updated.ID)
	assert.True(t, cfg.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(cfg.UpdatedAt))
	assert.Equal(t, "New", updated.Label)

	// empty patch still refreshes updatedAt
	again, err := svc.Update(ctx, cfg.ID, models.ConfigurationPatch{})
	require.NoError(t, err)
	assert.Equal(t, "New", again.Label)
	assert.False(t, again.UpdatedAt.Before(updated.UpdatedAt))

	_, err = svc.Update(ctx, cfg.ID, models.ConfigurationPatch{Label: ptr("  ")})
	assert.True(t, domain.IsValidation(err))

	got, _ := svc.Get(ctx, cfg.ID)
	assert.Equal(t, "New", got.Label)

	_, err = svc.Update(ctx, "missing", models.ConfigurationPatch{Label: ptr("x")})
	assert.True(t, domain.IsNotFound(err))
}

func TestService_SetTemplate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cfg, err := svc.Create(ctx, "T")
	require.NoError(t, err)

	tmpl, err := svc.SetTemplate(ctx, cfg.ID, "<p>{{aggregation.Rev}}</p>")
	require.NoError(t, err)
	assert.Equal(t, cfg.Template.ID, tmpl.ID)
	assert.True(t, cfg.Template.CreatedAt.Equal(tmpl.CreatedAt))
	assert.Equal(t, "<p>{{aggregation.Rev}}</p>", tmpl.Content)

	got, err := svc.Get(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, tmpl.Content, got.Template.Content)
	assert.False(t, got.UpdatedAt.Before(cfg.UpdatedAt))

	_, err = svc.SetTemplate(ctx, cfg.ID, "   ")
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Template content cannot be empty", err.Error())

	_, err = svc.SetTemplate(ctx, "missing", "<p/>")
	assert.True(t, domain.IsNotFound(err))
}

func TestService_AssemblesSatellites(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cfg, err := svc.Create(ctx, "Nested")
	require.NoError(t, err)

	_, err = svc.Recipients.SetManual(ctx, cfg.ID, []string{"a@b.com"})
	require.NoError(t, err)
	_, err = svc.Reports.SetSource(ctx, cfg.ID, models.TableReference{Database: "sales", Table: "weekly_summary"})
	require.NoError(t, err)
	agg, err := svc.Aggregations.Add(ctx, cfg.ID, models.AggregationDef{Column: "revenue", Type: models.AggregationSum, Label: "Rev"})
	require.NoError(t, err)
	sc, err := svc.Schedules.GetOrCreate(ctx, cfg.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com"}, got.RecipientConfig.ManualEmails)
	assert.Equal(t, "weekly_summary", got.ReportConfig.TableReference.Table)
	assert.Equal(t, []models.AggregationConfig{agg}, got.Aggregations)
	require.NotNil(t, got.Schedule)
	assert.Equal(t, sc.ID, got.Schedule.ID)
}

func TestService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cfg, err := svc.Create(ctx, "Gone")
	require.NoError(t, err)
	_, err = svc.Aggregations.Add(ctx, cfg.ID, models.AggregationDef{Column: "id", Type: models.AggregationCount, Label: "N"})
	require.NoError(t, err)
	_, err = svc.Schedules.GetOrCreate(ctx, cfg.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, cfg.ID))

	_, err = svc.Get(ctx, cfg.ID)
	assert.True(t, domain.IsNotFound(err))

	_, err = svc.Recipients.Get(ctx, cfg.ID)
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.Reports.Get(ctx, cfg.ID)
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.Schedules.Get(ctx, cfg.ID)
	assert.True(t, domain.IsNotFound(err))
	aggs, err := svc.Aggregations.List(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Empty(t, aggs)

	assert.True(t, domain.IsNotFound(svc.Delete(ctx, cfg.ID)))
}

func TestService_ExportForAirflow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cfg, err := svc.Create(ctx, "Airflow")
	require.NoError(t, err)
	_, err = svc.SetTemplate(ctx, cfg.ID, "<b>{{aggregation.Max}}</b>")
	require.NoError(t, err)
	ref := models.TableReference{Database: "users", Table: "subscribers", EmailColumn: "email"}
	_, err = svc.Recipients.SetDatalake(ctx, cfg.ID, ref)
	require.NoError(t, err)
	_, err = svc.Aggregations.Add(ctx, cfg.ID, models.AggregationDef{Column: "count", Type: models.AggregationMax, Label: "Max"})
	require.NoError(t, err)

	out, err := svc.ExportForAirflow(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, out.ConfigID)
	assert.Equal(t, "Airflow", out.Label)
	assert.Equal(t, "<b>{{aggregation.Max}}</b>", out.TemplateContent)
	assert.Equal(t, models.RecipientDatalake, out.RecipientSource.Type)
	assert.Equal(t, &ref, out.RecipientSource.TableReference)
	assert.Equal(t, models.TableReference{}, out.ReportTable)
	assert.Equal(t, []models.AggregationDef{{Column: "count", Type: models.AggregationMax, Label: "Max"}}, out.Aggregations)
	assert.Nil(t, out.Schedule)

	_, err = svc.ExportForAirflow(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestService_DeleteRacingNestedWrites(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for i := 0; i < 50; i++ {
		cfg, err := svc.Create(ctx, fmt.Sprintf("Race %d", i))
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = svc.WithConfiguration(ctx, cfg.ID, func() error {
				_, err := svc.Aggregations.Add(ctx, cfg.ID, models.AggregationDef{Column: "id", Type: models.AggregationCount, Label: "N"})
				return err
			})
		}()
		go func() {
			defer wg.Done()
			_ = svc.WithConfiguration(ctx, cfg.ID, func() error {
				_, err := svc.Schedules.GetOrCreate(ctx, cfg.ID)
				return err
			})
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Delete(ctx, cfg.ID))
		}()
		wg.Wait()

		aggs, err := svc.Aggregations.List(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Empty(t, aggs, "aggregations left under %s", cfg.ID)

		_, err = svc.Schedules.Get(ctx, cfg.ID)
		assert.True(t, domain.IsNotFound(err), "schedule left under %s", cfg.ID)

		_, err = svc.Recipients.Get(ctx, cfg.ID)
		assert.True(t, domain.IsNotFound(err))
	}

	assert.Zero(t, svc.locks.size())
}

func TestService_WithConfigurationMissing(t *testing.T) {
	svc := newTestService(t)

	called := false
	err := svc.WithConfiguration(context.Background(), "nope", func() error {
		called = true
		return nil
	})
	assert.True(t, domain.IsNotFound(err))
	assert.False(t, called)
}

// failingKV rejects writes to one bucket.
type failingKV struct {
	store.KV
	bucket string
}

func (f failingKV) Put(ctx context.Context, bucket, key string, value []byte) error {
	if bucket == f.bucket {
		return errors.New("disk full")
	}
	return f.KV.Put(ctx, bucket, key, value)
}

func TestService_CreateRollsBackOnSaveError(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc := newTestServiceWithKV(t, failingKV{KV: mem, bucket: store.BucketConfigurations})

	_, err := svc.Create(ctx, "Doomed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	for _, bucket := range []string{store.BucketRecipients, store.BucketReports} {
		left, err := mem.List(ctx, bucket)
		require.NoError(t, err)
		assert.Empty(t, left, bucket)
	}
}
