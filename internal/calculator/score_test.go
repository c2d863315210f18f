package calculator

import (
	"delegatecomp/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 {
	return &f
}

func v16Breakdown() domain.DelegateStatsBreakdown {
	return domain.DelegateStatsBreakdown{
		Delegate: "0xabc",
		Month:    domain.MonthKey{Month: 3, Year: 2025},
		Version:  "v1.6",
	}
}

func TestComputeScore(t *testing.T) {
	def, err := GetVersionDefinition("v1.6")
	require.NoError(t, err)

	t.Run("snapshot voting alone", func(t *testing.T) {
		breakdown := v16Breakdown()
		breakdown.SnapshotVoting = domain.MetricCount{Received: 4, Total: 5}

		result, err := ComputeScore(breakdown, def)
		require.NoError(t, err)

		// (4/5) * 20 with a neutral multiplier and no feedback or bonus
		require.InDelta(t, 16, result.TotalParticipation, 1e-9)
		require.InDelta(t, 16, result.SubScore(domain.MetricSnapshotVoting), 1e-9)
		require.Equal(t, float64(1), result.VotingPowerMultiplier)
	})

	t.Run("zero denominators never produce NaN", func(t *testing.T) {
		breakdown := v16Breakdown()
		breakdown.SnapshotVoting = domain.MetricCount{Received: 3, Total: 0}
		breakdown.OnchainVoting = domain.MetricCount{Received: 0, Total: 0}

		result, err := ComputeScore(breakdown, def)
		require.NoError(t, err)
		require.Equal(t, float64(0), result.TotalParticipation)
		require.Equal(t, float64(0), result.SubScore(domain.MetricSnapshotVoting))
	})

	t.Run("voting power multiplier clamps to version bounds", func(t *testing.T) {
		breakdown := v16Breakdown()
		breakdown.SnapshotVoting = domain.MetricCount{Received: 5, Total: 5}

		breakdown.VotingPowerAverage = floatPtr(0)
		low, err := ComputeScore(breakdown, def)
		require.NoError(t, err)
		require.Equal(t, 0.8, low.VotingPowerMultiplier)
		require.InDelta(t, 16, low.TotalParticipation, 1e-9)

		breakdown.VotingPowerAverage = floatPtr(50_000_000)
		high, err := ComputeScore(breakdown, def)
		require.NoError(t, err)
		require.Equal(t, 1.0, high.VotingPowerMultiplier)
		require.InDelta(t, 20, high.TotalParticipation, 1e-9)
	})

	t.Run("multiplier does not scale delegate feedback", func(t *testing.T) {
		breakdown := v16Breakdown()
		breakdown.VotingPowerAverage = floatPtr(0) // multiplier 0.8
		breakdown.DelegateFeedback = &domain.DelegateFeedback{
			PresenceMultiplier: 1,
			FinalScore:         10,
		}

		result, err := ComputeScore(breakdown, def)
		require.NoError(t, err)

		// feedback contributes (10/10)*30 untouched by the 0.8 multiplier
		require.InDelta(t, 30, result.TotalParticipation, 1e-9)
	})

	t.Run("bonus boosts the running total multiplicatively", func(t *testing.T) {
		breakdown := v16Breakdown()
		breakdown.SnapshotVoting = domain.MetricCount{Received: 5, Total: 5}
		breakdown.BonusPoints = 0.3

		result, err := ComputeScore(breakdown, def)
		require.NoError(t, err)
		require.InDelta(t, 26, result.TotalParticipation, 1e-9) // 20 * 1.3
	})

	t.Run("monotonic in every rate numerator", func(t *testing.T) {
		breakdown := v16Breakdown()
		breakdown.ParticipationRate = domain.MetricCount{Received: 0, Total: 10}
		breakdown.SnapshotVoting = domain.MetricCount{Received: 0, Total: 10}
		breakdown.OnchainVoting = domain.MetricCount{Received: 0, Total: 10}
		breakdown.VotingPowerAverage = floatPtr(400_000)
		breakdown.BonusPoints = 0.3

		previous := float64(-1)
		for rn := float64(0); rn <= 10; rn++ {
			breakdown.SnapshotVoting.Received = rn
			result, err := ComputeScore(breakdown, def)
			require.NoError(t, err)
			require.GreaterOrEqual(t, result.TotalParticipation, previous)
			previous = result.TotalParticipation
		}
	})

	t.Run("idempotent for identical inputs", func(t *testing.T) {
		breakdown := v16Breakdown()
		breakdown.SnapshotVoting = domain.MetricCount{Received: 7, Total: 9}
		breakdown.VotingPowerAverage = floatPtr(700_000)

		first, err := ComputeScore(breakdown, def)
		require.NoError(t, err)
		second, err := ComputeScore(breakdown, def)
		require.NoError(t, err)

		require.Equal(t, first, second)
	})

	t.Run("old version ignores multiplier, feedback and bonus", func(t *testing.T) {
		oldDef, err := GetVersionDefinition("old")
		require.NoError(t, err)

		breakdown := v16Breakdown()
		breakdown.Version = "old"
		breakdown.ParticipationRate = domain.MetricCount{Received: 10, Total: 10}
		breakdown.SnapshotVoting = domain.MetricCount{Received: 10, Total: 10}
		breakdown.OnchainVoting = domain.MetricCount{Received: 10, Total: 10}
		breakdown.VotingPowerAverage = floatPtr(0)
		breakdown.BonusPoints = 0.3

		result, err := ComputeScore(breakdown, oldDef)
		require.NoError(t, err)
		require.InDelta(t, 100, result.TotalParticipation, 1e-9)
	})
}

func TestScoreTypeRounding(t *testing.T) {
	t.Run("round and floor never disagree by more than 1", func(t *testing.T) {
		for _, raw := range []float64{0, 0.49, 0.5, 15.2, 16.6, 16.5, 99.999, 100} {
			rounded := domain.ScoreTypeRounded.Apply(raw)
			floored := domain.ScoreTypeFloored.Apply(raw)
			require.LessOrEqual(t, rounded-floored, float64(1))
			require.GreaterOrEqual(t, rounded-floored, float64(0))
		}
	})

	t.Run("intermediates are not pre-rounded", func(t *testing.T) {
		def, err := GetVersionDefinition("v1.6")
		require.NoError(t, err)

		breakdown := v16Breakdown()
		breakdown.SnapshotVoting = domain.MetricCount{Received: 1, Total: 3}
		breakdown.OnchainVoting = domain.MetricCount{Received: 1, Total: 3}

		result, err := ComputeScore(breakdown, def)
		require.NoError(t, err)

		// (1/3)*20 + (1/3)*25 = 15, but only if the two thirds stayed exact
		require.InDelta(t, 15, result.TotalParticipation, 1e-9)
		require.NotEqual(t, result.TotalParticipation, domain.ScoreTypeFloored.Apply(result.TotalParticipation)+1)
	})
}

func TestFormulaRendering(t *testing.T) {
	t.Run("labeled formula follows the composition", func(t *testing.T) {
		def, err := GetVersionDefinition("v1.6")
		require.NoError(t, err)
		require.Equal(t, "((PR + SV + TV) * VP + DF) * (1 + BP)", renderFormula(def))

		oldDef, err := GetVersionDefinition("old")
		require.NoError(t, err)
		require.Equal(t, "PR + SV + TV", renderFormula(oldDef))
	})

	t.Run("breakdown substitutes computed values", func(t *testing.T) {
		def, err := GetVersionDefinition("v1.6")
		require.NoError(t, err)

		breakdown := v16Breakdown()
		breakdown.SnapshotVoting = domain.MetricCount{Received: 4, Total: 5}

		result, err := ComputeScore(breakdown, def)
		require.NoError(t, err)
		require.Equal(t, "((0.00 + 16.00 + 0.00) * 1.00 + 0.00) * (1 + 0.00)", result.FormulaBreakdown)
	})
}
