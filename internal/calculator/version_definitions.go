package calculator

import (
	"delegatecomp/internal/domain"
	"fmt"
)

// Formula variables shared by every composition expression. The same names
// feed the evaluator, the labeled formula string and the numeric breakdown.
const (
	varParticipationRate = "pr"
	varSnapshotVoting    = "sv"
	varOnchainVoting     = "tv"
	varVotingPower       = "vp"
	varDelegateFeedback  = "df"
	varBonusPoints       = "bonus"
)

// versionDefinitions maps each formula version to its declarative metadata.
// Adding a version is a data change here, not a code change: the evaluator
// in score.go interprets whatever composition the entry declares.
var versionDefinitions = map[string]domain.VersionDefinition{
	"old": {
		Version:     "old",
		Composition: "pr + sv + tv",
		Weights: map[string]domain.ScoringWeight{
			domain.MetricParticipationRate: {
				Metric:       domain.MetricParticipationRate,
				Abbreviation: "PR",
				Weight:       35,
				Formula:      "(participated proposals / total proposals) * 35",
			},
			domain.MetricSnapshotVoting: {
				Metric:       domain.MetricSnapshotVoting,
				Abbreviation: "SV",
				Weight:       30,
				Formula:      "(snapshot votes cast / snapshot proposals) * 30",
			},
			domain.MetricOnchainVoting: {
				Metric:       domain.MetricOnchainVoting,
				Abbreviation: "TV",
				Weight:       35,
				Formula:      "(onchain votes cast / onchain proposals) * 35",
			},
		},
	},
	"v1.5": {
		Version:     "v1.5",
		Composition: "(pr + sv + tv) * vp * (1 + bonus)",
		BonusBoost:  0.3,
		Multiplier: domain.VotingPowerMultiplierSpec{
			MinMultiplier: 0.85,
			MaxMultiplier: 1.05,
			FloorVP:       50_000,
			CeilVP:        1_500_000,
		},
		Weights: map[string]domain.ScoringWeight{
			domain.MetricParticipationRate: {
				Metric:       domain.MetricParticipationRate,
				Abbreviation: "PR",
				Weight:       25,
				Formula:      "(participated proposals / total proposals) * 25",
			},
			domain.MetricSnapshotVoting: {
				Metric:       domain.MetricSnapshotVoting,
				Abbreviation: "SV",
				Weight:       30,
				Formula:      "(snapshot votes cast / snapshot proposals) * 30",
			},
			domain.MetricOnchainVoting: {
				Metric:       domain.MetricOnchainVoting,
				Abbreviation: "TV",
				Weight:       30,
				Formula:      "(onchain votes cast / onchain proposals) * 30",
			},
			domain.MetricVotingPowerMultiplier: {
				Metric:       domain.MetricVotingPowerMultiplier,
				Abbreviation: "VP",
				Weight:       0,
				Formula:      "linear in avg voting power, clamped to [0.85, 1.05]",
			},
			domain.MetricBonusPoints: {
				Metric:       domain.MetricBonusPoints,
				Abbreviation: "BP",
				Weight:       0,
				Formula:      "+30% of the running total when granted",
			},
		},
	},
	"v1.6": {
		Version:     "v1.6",
		Composition: "((pr + sv + tv) * vp + df) * (1 + bonus)",
		RubricMax:   10,
		BonusBoost:  0.3,
		Multiplier: domain.VotingPowerMultiplierSpec{
			MinMultiplier: 0.8,
			MaxMultiplier: 1.0,
			FloorVP:       50_000,
			CeilVP:        1_500_000,
		},
		Weights: map[string]domain.ScoringWeight{
			domain.MetricParticipationRate: {
				Metric:       domain.MetricParticipationRate,
				Abbreviation: "PR",
				Weight:       15,
				Formula:      "(participated proposals / total proposals) * 15",
			},
			domain.MetricSnapshotVoting: {
				Metric:       domain.MetricSnapshotVoting,
				Abbreviation: "SV",
				Weight:       20,
				Formula:      "(snapshot votes cast / snapshot proposals) * 20",
			},
			domain.MetricOnchainVoting: {
				Metric:       domain.MetricOnchainVoting,
				Abbreviation: "TV",
				Weight:       25,
				Formula:      "(onchain votes cast / onchain proposals) * 25",
			},
			domain.MetricVotingPowerMultiplier: {
				Metric:       domain.MetricVotingPowerMultiplier,
				Abbreviation: "VP",
				Weight:       0,
				Formula:      "linear in avg voting power, clamped to [0.8, 1.0]",
			},
			domain.MetricDelegateFeedback: {
				Metric:       domain.MetricDelegateFeedback,
				Abbreviation: "DF",
				Weight:       30,
				Formula:      "(rubric average / 10) * presence multiplier * 30",
			},
			domain.MetricBonusPoints: {
				Metric:       domain.MetricBonusPoints,
				Abbreviation: "BP",
				Weight:       0,
				Formula:      "+30% of the running total when granted",
			},
		},
	},
}

func GetVersionDefinition(version string) (domain.VersionDefinition, error) {
	def, ok := versionDefinitions[version]
	if !ok {
		return domain.VersionDefinition{}, fmt.Errorf("no definition for version %q", version)
	}
	return def, nil
}
