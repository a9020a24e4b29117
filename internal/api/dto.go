package api

import (
	"time"

	"JetScheduler/internal/models"
)

type createConfigurationRequest struct {
	Label string `json:"label"`
}

type templateRequest struct {
	Content string `json:"content"`
}

type tableReferenceRequest struct {
	Database    string `json:"database" validate:"required"`
	Table       string `json:"table" validate:"required"`
	EmailColumn string `json:"emailColumn"`
}

func (t tableReferenceRequest) model() models.TableReference {
	return models.TableReference{Database: t.Database, Table: t.Table, EmailColumn: t.EmailColumn}
}

type recipientsRequest struct {
	Type           string                 `json:"type" validate:"required,oneof=manual datalake"`
	Emails         []string               `json:"emails"`
	TableReference *tableReferenceRequest `json:"tableReference" validate:"required_if=Type datalake"`
}

// normalize ignores a table reference sent along with a manual list.
func (r *recipientsRequest) normalize() {
	if r.Type != string(models.RecipientDatalake) {
		r.TableReference = nil
	}
}

type aggregationRequest struct {
	Column string `json:"column" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=sum average count min max"`
	Label  string `json:"label" validate:"required"`
}

type reportRequest struct {
	TableReference tableReferenceRequest `json:"tableReference"`
}

type descriptionResponse struct {
	Description string      `json:"description"`
	Cron        string      `json:"cron"`
	NextRuns    []time.Time `json:"nextRuns,omitempty"`
}
