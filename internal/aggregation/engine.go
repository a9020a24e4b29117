// Package aggregation keeps the aggregation definitions of each
// configuration and computes their values against the report table.
package aggregation

import (
	"fmt"

	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
)

// Compute reduces values according to kind. Every known kind yields 0 for
// an empty input; count is the number of values.
func Compute(kind models.AggregationType, values []float64) (float64, error) {
	if !kind.Valid() {
		return 0, domain.NewComputationError(fmt.Sprintf("Unknown aggregation type: %s", kind))
	}
	if len(values) == 0 {
		return 0, nil
	}

	switch kind {
	case models.AggregationSum:
		return sum(values), nil
	case models.AggregationAverage:
		return sum(values) / float64(len(values)), nil
	case models.AggregationCount:
		return float64(len(values)), nil
	case models.AggregationMin:
		m := values[0]
		for _, v := range values[1:] {
			m = min(m, v)
		}
		return m, nil
	case models.AggregationMax:
		m := values[0]
		for _, v := range values[1:] {
			m = max(m, v)
		}
		return m, nil
	}
	return 0, domain.NewComputationError(fmt.Sprintf("Unknown aggregation type: %s", kind))
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
