package calculator

import (
	"delegatecomp/internal/domain"
	"strconv"
	"strings"
)

// abbreviationFor falls back to the variable name when a version never
// declared the metric; its term then simply never appears in the composition.
func abbreviationFor(def domain.VersionDefinition, metric, variable string) string {
	if w, ok := def.Weights[metric]; ok {
		return w.Abbreviation
	}
	return variable
}

// renderFormula produces the labeled display form of a version's
// composition, e.g. "((PR + SV + TV) * VP + DF) * (1 + BP)". It is a pure
// substitution over the same expression the evaluator runs, so the shown
// formula can never drift from the computed number.
func renderFormula(def domain.VersionDefinition) string {
	replacer := strings.NewReplacer(
		varBonusPoints, abbreviationFor(def, domain.MetricBonusPoints, varBonusPoints),
		varParticipationRate, abbreviationFor(def, domain.MetricParticipationRate, varParticipationRate),
		varSnapshotVoting, abbreviationFor(def, domain.MetricSnapshotVoting, varSnapshotVoting),
		varOnchainVoting, abbreviationFor(def, domain.MetricOnchainVoting, varOnchainVoting),
		varVotingPower, abbreviationFor(def, domain.MetricVotingPowerMultiplier, varVotingPower),
		varDelegateFeedback, abbreviationFor(def, domain.MetricDelegateFeedback, varDelegateFeedback),
	)
	return replacer.Replace(def.Composition)
}

// renderFormulaBreakdown substitutes the computed values instead of labels,
// e.g. "((12.50 + 16.00 + 20.00) * 0.95 + 24.00) * (1 + 0.30)".
func renderFormulaBreakdown(def domain.VersionDefinition, variables map[string]interface{}) string {
	format := func(variable string) string {
		v, ok := variables[variable].(float64)
		if !ok {
			return variable
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	replacer := strings.NewReplacer(
		varBonusPoints, format(varBonusPoints),
		varParticipationRate, format(varParticipationRate),
		varSnapshotVoting, format(varSnapshotVoting),
		varOnchainVoting, format(varOnchainVoting),
		varVotingPower, format(varVotingPower),
		varDelegateFeedback, format(varDelegateFeedback),
	)
	return replacer.Replace(def.Composition)
}
