package models

import "time"

// DefaultTemplateContent is the HTML shell every new configuration starts with.
const DefaultTemplateContent = "<html><body></body></html>"

type Template struct {
	ID      string `json:"id"`
	Content string `json:"content"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmailConfiguration is the aggregate root. Recipients, report source,
// aggregations and schedule are stored separately, keyed by ID, and
// attached on read.
type EmailConfiguration struct {
	ID              string              `json:"id"`
	Label           string              `json:"label"`
	Template        Template            `json:"template"`
	RecipientConfig RecipientConfig     `json:"recipientConfig"`
	ReportConfig    ReportConfig        `json:"reportConfig"`
	Aggregations    []AggregationConfig `json:"aggregations"`
	Schedule        *ScheduleConfig     `json:"schedule,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ConfigurationPatch struct {
	Label *string `json:"label,omitempty"`
}

type EmailPreview struct {
	RenderedHTML   string                `json:"renderedHtml"`
	RecipientCount int                   `json:"recipientCount"`
	Recipients     []string              `json:"recipients"`
	Aggregations   []ComputedAggregation `json:"aggregations"`
	Errors         []string              `json:"errors"`
}

// AirflowConfig is the read-only projection handed to the downstream
// orchestrator.
type AirflowConfig struct {
	ConfigID        string           `json:"configId"`
	Label           string           `json:"label"`
	TemplateContent string           `json:"templateContent"`
	RecipientSource RecipientConfig  `json:"recipientSource"`
	ReportTable     TableReference   `json:"reportTable"`
	Aggregations    []AggregationDef `json:"aggregations"`
	Schedule        *ScheduleConfig  `json:"schedule,omitempty"`
}
