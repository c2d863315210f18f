package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompensationVersion is one date-ranged entry in a DAO's version history.
// A nil EndDate means the version is currently active.
type CompensationVersion struct {
	Version   string     `json:"version" yaml:"version"`
	StartDate time.Time  `json:"startDate" yaml:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty" yaml:"endDate,omitempty"`
}

// DAOCompensationConfig holds the full compensation setup for one DAO.
// Versions must not overlap; when a misconfigured table does overlap,
// resolution picks the entry with the later start date.
type DAOCompensationConfig struct {
	DAOID          string                `json:"daoId" yaml:"id"`
	MonthlyPayment decimal.Decimal       `json:"monthlyPayment" yaml:"monthlyPayment"`
	Versions       []CompensationVersion `json:"versions" yaml:"versions"`
}

// StartDate returns the earliest version start, i.e. when the DAO joined
// the compensation program.
func (c DAOCompensationConfig) StartDate() time.Time {
	if len(c.Versions) == 0 {
		return time.Time{}
	}
	earliest := c.Versions[0].StartDate
	for _, v := range c.Versions[1:] {
		if v.StartDate.Before(earliest) {
			earliest = v.StartDate
		}
	}
	return earliest
}

// AvailableMax is the latest selectable period as of the given time.
func (c DAOCompensationConfig) AvailableMax(asOf time.Time) MonthKey {
	return NewMonthKey(asOf)
}

// DefaultSelected picks the period the dashboard lands on: before the 15th
// the previous month is usually still the one being finalized.
func (c DAOCompensationConfig) DefaultSelected(asOf time.Time) MonthKey {
	if asOf.Day() < 15 {
		return NewMonthKey(asOf).Previous()
	}
	return NewMonthKey(asOf)
}

// Metric names, shared between version definitions and computed breakdowns.
const (
	MetricParticipationRate     = "Participation Rate"
	MetricSnapshotVoting        = "Snapshot Voting"
	MetricOnchainVoting         = "Onchain Voting"
	MetricVotingPowerMultiplier = "Voting Power Multiplier"
	MetricDelegateFeedback      = "Delegate Feedback"
	MetricBonusPoints           = "Bonus Points"
)

// ScoringWeight describes one sub-metric of a version's formula.
type ScoringWeight struct {
	Metric       string  `json:"metric"`
	Abbreviation string  `json:"abbreviation"`
	Weight       float64 `json:"weight"`
	Formula      string  `json:"formula"`
}

// VotingPowerMultiplierSpec is a linear ramp from MinMultiplier at FloorVP
// (or below) to MaxMultiplier at CeilVP (or above).
type VotingPowerMultiplierSpec struct {
	MinMultiplier float64 `json:"minMultiplier"`
	MaxMultiplier float64 `json:"maxMultiplier"`
	FloorVP       float64 `json:"floorVP"`
	CeilVP        float64 `json:"ceilVP"`
}

// VersionDefinition is the declarative formula metadata for one version.
// Composition is an expression over the variables pr, sv, tv, vp, df and
// bonus; the same string drives both the computed total and the rendered
// formula, so the two cannot drift.
type VersionDefinition struct {
	Version     string                    `json:"version"`
	Weights     map[string]ScoringWeight  `json:"weights"`
	Composition string                    `json:"composition"`
	RubricMax   float64                   `json:"rubricMax"`
	Multiplier  VotingPowerMultiplierSpec `json:"multiplier"`
	BonusBoost  float64                   `json:"bonusBoost"`
}

func (d VersionDefinition) Weight(metric string) float64 {
	if w, ok := d.Weights[metric]; ok {
		return w.Weight
	}
	return 0
}
