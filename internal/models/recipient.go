package models

import "encoding/json"

// TableReference points at a table in the datalake.
type TableReference struct {
	Database    string `json:"database"`
	Table       string `json:"table"`
	EmailColumn string `json:"emailColumn,omitempty"`
}

// Path returns the dotted database.table form.
func (t TableReference) Path() string {
	return t.Database + "." + t.Table
}

type RecipientType string

const (
	RecipientManual   RecipientType = "manual"
	RecipientDatalake RecipientType = "datalake"
)

// RecipientConfig is either a manual address list or a datalake table
// reference, discriminated by Type. Build it with NewManualRecipients or
// NewDatalakeRecipients so the payload always matches the tag.
type RecipientConfig struct {
	ID             string          `json:"id"`
	Type           RecipientType   `json:"type"`
	ManualEmails   []string        `json:"manualEmails,omitempty"`
	TableReference *TableReference `json:"tableReference,omitempty"`
}

// MarshalJSON emits only the payload that belongs to Type, and always
// includes manualEmails for the manual variant.
func (r RecipientConfig) MarshalJSON() ([]byte, error) {
	if r.Type == RecipientManual {
		emails := r.ManualEmails
		if emails == nil {
			emails = []string{}
		}
		return json.Marshal(struct {
			ID           string        `json:"id"`
			Type         RecipientType `json:"type"`
			ManualEmails []string      `json:"manualEmails"`
		}{r.ID, r.Type, emails})
	}
	return json.Marshal(struct {
		ID             string          `json:"id"`
		Type           RecipientType   `json:"type"`
		TableReference *TableReference `json:"tableReference,omitempty"`
	}{r.ID, r.Type, r.TableReference})
}

func NewManualRecipients(configID string, emails []string) RecipientConfig {
	if emails == nil {
		emails = []string{}
	}
	return RecipientConfig{
		ID:           configID,
		Type:         RecipientManual,
		ManualEmails: emails,
	}
}

func NewDatalakeRecipients(configID string, ref TableReference) RecipientConfig {
	return RecipientConfig{
		ID:             configID,
		Type:           RecipientDatalake,
		TableReference: &ref,
	}
}

// ReportConfig identifies the table aggregations read from.
type ReportConfig struct {
	ID             string         `json:"id"`
	TableReference TableReference `json:"tableReference"`
}

type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
