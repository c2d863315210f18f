package calculator

import (
	"delegatecomp/internal/domain"
	"fmt"
	"math"

	"github.com/maja42/goval"
)

// ComputeScore applies the version's declarative formula to a normalized
// breakdown. Every intermediate stays exact; rounding is the caller's
// concern at the display edge.
func ComputeScore(breakdown domain.DelegateStatsBreakdown, def domain.VersionDefinition) (*domain.ScoreResult, error) {
	prScore := breakdown.ParticipationRate.Rate() * def.Weight(domain.MetricParticipationRate)
	svScore := breakdown.SnapshotVoting.Rate() * def.Weight(domain.MetricSnapshotVoting)
	tvScore := breakdown.OnchainVoting.Rate() * def.Weight(domain.MetricOnchainVoting)

	multiplier := votingPowerMultiplier(def.Multiplier, breakdown.VotingPowerAverage)
	dfScore := delegateFeedbackScore(def, breakdown.DelegateFeedback)
	bonus := breakdown.BonusPoints

	variables := map[string]interface{}{
		varParticipationRate: prScore,
		varSnapshotVoting:    svScore,
		varOnchainVoting:     tvScore,
		varVotingPower:       multiplier,
		varDelegateFeedback:  dfScore,
		varBonusPoints:       bonus,
	}

	eval := goval.NewEvaluator()
	result, err := eval.Evaluate(def.Composition, variables, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate composition for version %s: %w", def.Version, err)
	}

	total, ok := result.(float64)
	if !ok {
		return nil, fmt.Errorf("composition for version %s did not evaluate to a number", def.Version)
	} else if math.IsNaN(total) {
		return nil, fmt.Errorf("calculated NaN as total participation")
	} else if math.IsInf(total, 0) {
		return nil, fmt.Errorf("calculated infinity as total participation")
	}

	subScores := []domain.SubScore{}
	addSubScore := func(metric string, score float64) {
		w, ok := def.Weights[metric]
		if !ok {
			return
		}
		subScores = append(subScores, domain.SubScore{
			Metric:       metric,
			Abbreviation: w.Abbreviation,
			Weight:       w.Weight,
			Score:        score,
		})
	}
	addSubScore(domain.MetricParticipationRate, prScore)
	addSubScore(domain.MetricSnapshotVoting, svScore)
	addSubScore(domain.MetricOnchainVoting, tvScore)
	addSubScore(domain.MetricVotingPowerMultiplier, multiplier)
	addSubScore(domain.MetricDelegateFeedback, dfScore)
	addSubScore(domain.MetricBonusPoints, bonus)

	return &domain.ScoreResult{
		SubScores:             subScores,
		VotingPowerMultiplier: multiplier,
		TotalParticipation:    total,
		Formula:               renderFormula(def),
		FormulaBreakdown:      renderFormulaBreakdown(def, variables),
	}, nil
}

// votingPowerMultiplier ramps linearly between FloorVP and CeilVP, clamped to
// the multiplier bounds.
// A version without a multiplier, or a delegate without an average, stays
// neutral at 1.
func votingPowerMultiplier(spec domain.VotingPowerMultiplierSpec, averageVP *float64) float64 {
	if spec.MaxMultiplier == 0 || averageVP == nil {
		return 1
	}
	if spec.CeilVP <= spec.FloorVP {
		return spec.MaxMultiplier
	}

	position := (*averageVP - spec.FloorVP) / (spec.CeilVP - spec.FloorVP)
	multiplier := spec.MinMultiplier + position*(spec.MaxMultiplier-spec.MinMultiplier)

	return math.Max(spec.MinMultiplier, math.Min(spec.MaxMultiplier, multiplier))
}

func delegateFeedbackScore(def domain.VersionDefinition, feedback *domain.DelegateFeedback) float64 {
	weight := def.Weight(domain.MetricDelegateFeedback)
	if weight == 0 || def.RubricMax == 0 || feedback == nil {
		return 0
	}
	return feedback.FinalScore / def.RubricMax * weight
}
