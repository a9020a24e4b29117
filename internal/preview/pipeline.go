// Package preview projects what a configuration would send right now.
package preview

import (
	"context"

	"go.uber.org/zap"

	"JetScheduler/internal/metrics"
	"JetScheduler/internal/models"
	"JetScheduler/internal/render"
)

const unresolvedMessage = "Template contains unresolved placeholders"

type AggregationComputer interface {
	ComputeAll(ctx context.Context, configID string, table models.TableReference) ([]models.ComputedAggregation, error)
}

type RecipientResolver interface {
	Resolve(ctx context.Context, configID string) ([]string, error)
}

type Pipeline struct {
	Aggregations AggregationComputer
	Recipients   RecipientResolver
	Log          *zap.Logger
}

func NewPipeline(aggs AggregationComputer, recipients RecipientResolver, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Aggregations: aggs, Recipients: recipients, Log: logger}
}

// Generate computes the aggregations, renders the template and resolves
// recipients. It never fails: a step error yields an empty preview with
// the message in Errors. Unresolved placeholders are reported but keep
// the rendered HTML.
func (p *Pipeline) Generate(ctx context.Context, cfg models.EmailConfiguration) models.EmailPreview {
	errs := []string{}

	aggs, err := p.Aggregations.ComputeAll(ctx, cfg.ID, cfg.ReportConfig.TableReference)
	if err != nil {
		return p.degraded(cfg.ID, append(errs, err.Error()), err)
	}

	html := render.Render(cfg.Template.Content, aggs)
	if render.HasUnresolved(html) {
		errs = append(errs, unresolvedMessage)
	}

	recipients, err := p.Recipients.Resolve(ctx, cfg.ID)
	if err != nil {
		return p.degraded(cfg.ID, append(errs, err.Error()), err)
	}
	if recipients == nil {
		recipients = []string{}
	}

	metrics.PreviewsGenerated.Inc()

	return models.EmailPreview{
		RenderedHTML:   html,
		RecipientCount: len(recipients),
		Recipients:     recipients,
		Aggregations:   aggs,
		Errors:         errs,
	}
}

func (p *Pipeline) degraded(configID string, errs []string, cause error) models.EmailPreview {
	metrics.PreviewFailures.Inc()
	p.Log.Warn("preview degraded",
		zap.String("config_id", configID),
		zap.Error(cause),
	)

	return models.EmailPreview{
		RenderedHTML:   "",
		RecipientCount: 0,
		Recipients:     []string{},
		Aggregations:   []models.ComputedAggregation{},
		Errors:         errs,
	}
}
