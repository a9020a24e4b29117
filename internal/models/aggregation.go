package models

type AggregationType string

const (
	AggregationSum     AggregationType = "sum"
	AggregationAverage AggregationType = "average"
	AggregationCount   AggregationType = "count"
	AggregationMin     AggregationType = "min"
	AggregationMax     AggregationType = "max"
)

// Valid reports whether t is one of the supported aggregation kinds.
func (t AggregationType) Valid() bool {
	switch t {
	case AggregationSum, AggregationAverage, AggregationCount, AggregationMin, AggregationMax:
		return true
	}
	return false
}

type AggregationDef struct {
	Column string          `json:"column"`
	Type   AggregationType `json:"type"`
	Label  string          `json:"label"`
}

type AggregationConfig struct {
	ID       string          `json:"id"`
	ConfigID string          `json:"configId"`
	Column   string          `json:"column"`
	Type     AggregationType `json:"type"`
	Label    string          `json:"label"`
}

// Def strips the identity fields.
func (a AggregationConfig) Def() AggregationDef {
	return AggregationDef{Column: a.Column, Type: a.Type, Label: a.Label}
}

type ComputedAggregation struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
