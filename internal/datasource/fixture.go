// Package datasource provides the datalake collaborators: a fixture
// backed by static (optionally YAML-supplied) data, and a Postgres client
// for a real warehouse.
package datasource

import (
	"context"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
)

var _ domain.Datalake = (*Fixture)(nil)

// Fixture serves canned data. Values are keyed by column name only and
// every known table exposes the same schema and data rows.
type Fixture struct {
	Values     map[string][]float64    `yaml:"values"`
	Recipients []string                `yaml:"recipients"`
	Tables     []models.TableReference `yaml:"tables"`
	Schema     []models.ColumnInfo     `yaml:"schema"`
	Data       [][]string              `yaml:"data"`
}

// DefaultFixture returns the demo dataset the service ships with.
func DefaultFixture() *Fixture {
	return &Fixture{
		Values: map[string][]float64{
			"revenue": {1000.50, 2500.75, 750.25},
			"count":   {10, 25, 5},
			"id":      {1, 2, 3},
		},
		Recipients: []string{"user1@example.com", "user2@example.com"},
		Tables: []models.TableReference{
			{Database: "sales", Table: "weekly_summary"},
			{Database: "users", Table: "subscribers"},
			{Database: "analytics", Table: "metrics"},
		},
		Schema: []models.ColumnInfo{
			{Name: "id", Type: "integer"},
			{Name: "name", Type: "string"},
			{Name: "revenue", Type: "number"},
			{Name: "count", Type: "integer"},
			{Name: "created_at", Type: "timestamp"},
		},
		Data: [][]string{
			{"1", "Product A", "1000.50", "10", "2024-01-01"},
			{"2", "Product B", "2500.75", "25", "2024-01-02"},
			{"3", "Product C", "750.25", "5", "2024-01-03"},
		},
	}
}

// LoadFixture reads a YAML fixture (with ${VAR} expansion). Sections left
// out of the file keep the DefaultFixture values.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file %s: %w", path, err)
	}

	var raw Fixture
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return nil, fmt.Errorf("parse fixture YAML: %w", err)
	}

	f := DefaultFixture()
	if raw.Values != nil {
		f.Values = raw.Values
	}
	if raw.Recipients != nil {
		f.Recipients = raw.Recipients
	}
	if raw.Tables != nil {
		f.Tables = raw.Tables
	}
	if raw.Schema != nil {
		f.Schema = raw.Schema
	}
	if raw.Data != nil {
		f.Data = raw.Data
	}
	return f, nil
}

// Query returns the values for column, or an empty slice for an unknown column.
func (f *Fixture) Query(_ context.Context, _ models.TableReference, column string) ([]float64, error) {
	return slices.Clone(f.Values[column]), nil
}

func (f *Fixture) ResolveEmails(_ context.Context, _ models.TableReference) ([]string, error) {
	out := slices.Clone(f.Recipients)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (f *Fixture) TableExists(_ context.Context, table models.TableReference) (bool, error) {
	for _, t := range f.Tables {
		if t.Database == table.Database && t.Table == table.Table {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fixture) Columns(_ context.Context, _ models.TableReference) ([]models.ColumnInfo, error) {
	return slices.Clone(f.Schema), nil
}

func (f *Fixture) Rows(_ context.Context, _ models.TableReference) ([][]string, error) {
	out := make([][]string, 0, len(f.Data))
	for _, r := range f.Data {
		out = append(out, slices.Clone(r))
	}
	return out, nil
}
