package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MetricCount is a received/total pair for a rate-based sub-metric.
type MetricCount struct {
	Received float64 `json:"rn"`
	Total    float64 `json:"tn"`
}

// Rate guards against empty periods: no proposals means a 0 rate, not NaN.
func (m MetricCount) Rate() float64 {
	if m.Total == 0 {
		return 0
	}
	return m.Received / m.Total
}

// DelegateFeedback is the five-criteria rubric plus the presence-in-discussions
// multiplier applied on top of the rubric average.
type DelegateFeedback struct {
	Relevance               float64 `json:"relevance"`
	DepthOfAnalysis         float64 `json:"depthOfAnalysis"`
	Timing                  float64 `json:"timing"`
	ClarityAndCommunication float64 `json:"clarityAndCommunication"`
	ImpactOnDecisionMaking  float64 `json:"impactOnDecisionMaking"`
	PresenceMultiplier      float64 `json:"presenceMultiplier"`
	FinalScore              float64 `json:"finalScore"`
}

func (f DelegateFeedback) RubricAverage() float64 {
	return (f.Relevance +
		f.DepthOfAnalysis +
		f.Timing +
		f.ClarityAndCommunication +
		f.ImpactOnDecisionMaking) / 5
}

// DelegateStatsBreakdown is the canonical per-delegate, per-month record the
// calculator consumes. Optional upstream fields are already folded into
// neutral defaults by the normalizer.
type DelegateStatsBreakdown struct {
	Delegate string  `json:"delegate"`
	Name     *string `json:"name,omitempty"`
	ENSName  *string `json:"ensName,omitempty"`
	OptedIn  bool    `json:"optedIn"`

	Month   MonthKey `json:"period"`
	Version string   `json:"version"`

	ParticipationRate  MetricCount       `json:"participationRate"`
	SnapshotVoting     MetricCount       `json:"snapshotVoting"`
	OnchainVoting      MetricCount       `json:"onchainVoting"`
	VotingPowerAverage *float64          `json:"votingPowerAverage,omitempty"`
	DelegateFeedback   *DelegateFeedback `json:"delegateFeedback,omitempty"`

	// BonusPoints is the granted boost as a fraction of the running total,
	// e.g. 0.3 for the +30% discretionary bonus.
	BonusPoints float64 `json:"bonusPoint"`
}

func (b DelegateStatsBreakdown) ParticipationRatePercent() float64 {
	return b.ParticipationRate.Rate() * 100
}

// ScoreType selects the display rounding policy.
type ScoreType string

const (
	ScoreTypeRounded ScoreType = "rounded"
	ScoreTypeFloored ScoreType = "floored"
)

// Valid accepts the empty string, which means the default rounded display.
func (s ScoreType) Valid() bool {
	return s == "" || s == ScoreTypeRounded || s == ScoreTypeFloored
}

func (s ScoreType) Apply(raw float64) float64 {
	if s == ScoreTypeFloored {
		return math.Floor(raw)
	}
	return math.Round(raw)
}

// SubScore is one computed term of the total, kept unrounded.
type SubScore struct {
	Metric       string  `json:"metric"`
	Abbreviation string  `json:"abbreviation"`
	Weight       float64 `json:"weight"`
	Score        float64 `json:"score"`
}

// ScoreResult is the calculator output. TotalParticipation stays exact;
// rounding happens only when a ScoreType is applied at the display edge.
type ScoreResult struct {
	SubScores             []SubScore `json:"subScores"`
	VotingPowerMultiplier float64    `json:"votingPowerMultiplier"`
	TotalParticipation    float64    `json:"totalParticipation"`
	Formula               string     `json:"formula"`
	FormulaBreakdown      string     `json:"formulaBreakdown"`
}

func (r ScoreResult) SubScore(metric string) float64 {
	for _, s := range r.SubScores {
		if s.Metric == metric {
			return s.Score
		}
	}
	return 0
}

// DelegateCompensationStats is the outbound record the display layer renders
// verbatim. Rank is nil past the visible cutoff.
type DelegateCompensationStats struct {
	Delegate           string             `json:"publicAddress"`
	Name               *string            `json:"name,omitempty"`
	ENSName            *string            `json:"ensName,omitempty"`
	OptedIn            bool               `json:"optedIn"`
	Month              MonthKey           `json:"period"`
	Version            string             `json:"version"`
	SubScores          map[string]float64 `json:"subScores"`
	ParticipationRate  float64            `json:"participationRatePercent"`
	TotalParticipation float64            `json:"totalParticipation"`
	Payment            decimal.Decimal    `json:"payment"`
	Rank               *int               `json:"rank"`
	Formula            string             `json:"formula"`
	FormulaBreakdown   string             `json:"formulaBreakdown"`
}

// MonthStatus distinguishes a month that computed (possibly to zero
// delegates) from one whose upstream fetch failed.
type MonthStatus string

const (
	MonthComputed    MonthStatus = "computed"
	MonthUnavailable MonthStatus = "unavailable"
)

// MonthResult carries one month's ranked delegates plus enough bookkeeping
// for callers to tell partial data from genuinely empty data.
type MonthResult struct {
	DAOID          string                      `json:"daoId"`
	Month          MonthKey                    `json:"period"`
	Version        string                      `json:"version"`
	Status         MonthStatus                 `json:"status"`
	Delegates      []DelegateCompensationStats `json:"delegates"`
	SkippedRecords int                         `json:"skippedRecords"`
}
