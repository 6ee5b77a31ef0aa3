package dataprocessing

import (
	"fmt"

	"datapulse/internal/config"
)

// InvariantNonNegativeLatency rejects log records with a negative latency
const InvariantNonNegativeLatency = "non_negative_latency"

// PriceStages builds the price cleaning chain: repair, coerce, repair again so
// values that failed coercion meet the drop rules, de-duplicate, then check
// invariants.
func PriceStages(cfg config.PricesConfig) ([]Stage, error) {
	rules, err := PriceInvariants(cfg.Invariants)
	if err != nil {
		return nil, fmt.Errorf("price invariants: %w", err)
	}
	repair := RepairMissing{
		Fill:              FillZero(cfg.FillZeroColumns...),
		Required:          cfg.RequiredColumns,
		RequiredIfPresent: cfg.RequiredIfPresent,
	}
	return []Stage{
		repair,
		CoerceTypes{Dates: cfg.DateColumns, Numbers: cfg.NumericColumns, Layouts: cfg.DateLayouts},
		repair,
		Deduplicate{Keys: cfg.DedupKeys},
		ValidateInvariants{Rules: rules},
	}, nil
}

// LogStages builds the chain for decoded log records. Latency is coerced to a
// number and negative latencies are rejected. De-duplication only runs when
// keys are configured.
func LogStages(cfg config.LogsConfig) []Stage {
	stages := []Stage{
		CoerceTypes{Numbers: []string{cfg.ValueColumn}},
	}
	if len(cfg.DedupKeys) > 0 {
		stages = append(stages, Deduplicate{Keys: cfg.DedupKeys})
	}
	return append(stages, ValidateInvariants{Rules: []Invariant{
		NonNegative(InvariantNonNegativeLatency, cfg.ValueColumn),
	}})
}
