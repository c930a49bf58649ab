package model

import "time"

// Risk labels, ordered by severity. Thresholds on the composite are closed
// and non-overlapping; see risk.LabelFor.
const (
	LabelStable  = "STABLE"
	LabelMonitor = "MONITOR"
	LabelWatch   = "WATCH"
	LabelWarning = "WARNING"
	LabelDanger  = "DANGER"
	LabelCrisis  = "CRISIS"
)

// RiskScore is a derived artifact: a materialized view over events and
// confirmed claims at AsOf. It is regenerable at any time from the same
// inputs and is never hand-edited.
type RiskScore struct {
	AsOf                 time.Time `json:"as_of"`
	FundingStress        int       `json:"funding_stress"`        // 0-100
	EnforcementHeat      int       `json:"enforcement_heat"`      // 0-100
	DeliverabilityStress int       `json:"deliverability_stress"` // 0-100
	Composite            float64   `json:"composite"`             // 0-10
	Label                string    `json:"label"`
	Cascade              bool      `json:"cascade"`
	Degraded             bool      `json:"degraded"` // True when a dimension had no data and defaulted to neutral
	ComputedAt           time.Time `json:"computed_at"`
}

// SubScores returns the three dimensions in a fixed order.
func (r RiskScore) SubScores() [3]int {
	return [3]int{r.FundingStress, r.EnforcementHeat, r.DeliverabilityStress}
}
