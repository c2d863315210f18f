package calculator

import (
	"delegatecomp/internal/domain"
	"delegatecomp/pkg/karma"
	"fmt"
	"strconv"
	"strings"
)

// Normalize maps a raw API record into the canonical breakdown for the given
// resolved version. Optional fields fold into neutral defaults (rate 0,
// multiplier input absent, bonus 0); only an unparseable value fails the
// record, and the failure is scoped to this delegate/month so the caller can
// skip it and continue the batch.
func Normalize(raw karma.DelegateStatsFromAPI, version string, month domain.MonthKey) (*domain.DelegateStatsBreakdown, error) {
	def, err := GetVersionDefinition(version)
	if err != nil {
		return nil, err
	}

	fail := func(field string, err error) error {
		return domain.MalformedStatsError{
			Delegate: raw.PublicAddress,
			Month:    month,
			Err:      fmt.Errorf("field %s: %w", field, err),
		}
	}

	breakdown := domain.DelegateStatsBreakdown{
		Delegate: strings.ToLower(raw.PublicAddress),
		Name:     raw.Name,
		ENSName:  raw.EnsName,
		Month:    month,
		Version:  version,
	}
	if raw.OptedIn != nil {
		breakdown.OptedIn = *raw.OptedIn
	}

	breakdown.ParticipationRate, err = parseRateCount(raw.Stats.ParticipationRate)
	if err != nil {
		return nil, fail("participationRate", err)
	}
	breakdown.SnapshotVoting, err = parseRateCount(raw.Stats.SnapshotVoting)
	if err != nil {
		return nil, fail("snapshotVoting", err)
	}
	breakdown.OnchainVoting, err = parseRateCount(raw.Stats.OnChainVoting)
	if err != nil {
		return nil, fail("onChainVoting", err)
	}

	if raw.Stats.VotingPowerAverage != nil {
		vp, err := parseDecimalString(*raw.Stats.VotingPowerAverage)
		if err != nil {
			return nil, fail("votingPowerAverage", err)
		}
		breakdown.VotingPowerAverage = &vp
	}

	if raw.Stats.DelegateFeedback != nil {
		feedback, err := parseFeedback(*raw.Stats.DelegateFeedback)
		if err != nil {
			return nil, fail("delegateFeedback", err)
		}
		breakdown.DelegateFeedback = feedback
	}

	if raw.Stats.BonusPoint != nil {
		bonus, err := parseBonus(*raw.Stats.BonusPoint, def.BonusBoost)
		if err != nil {
			return nil, fail("bonusPoint", err)
		}
		breakdown.BonusPoints = bonus
	}

	return &breakdown, nil
}

func parseDecimalString(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse %q as decimal", s)
	}
	return v, nil
}

func parseRateCount(rc *karma.RateCount) (domain.MetricCount, error) {
	out := domain.MetricCount{}
	if rc == nil {
		return out, nil
	}

	var err error
	if rc.Rn != nil {
		out.Received, err = parseDecimalString(*rc.Rn)
		if err != nil {
			return out, err
		}
	}
	if rc.Tn != nil {
		out.Total, err = parseDecimalString(*rc.Tn)
		if err != nil {
			return out, err
		}
	}

	return out, nil
}

func parseFeedback(raw karma.FeedbackFromAPI) (*domain.DelegateFeedback, error) {
	feedback := domain.DelegateFeedback{
		// absent presence reads as full presence, not as zeroing the rubric
		PresenceMultiplier: 1,
	}

	fields := []struct {
		name string
		src  *string
		dst  *float64
	}{
		{"relevance", raw.Relevance, &feedback.Relevance},
		{"depthOfAnalysis", raw.DepthOfAnalysis, &feedback.DepthOfAnalysis},
		{"timing", raw.Timing, &feedback.Timing},
		{"clarityAndCommunication", raw.ClarityAndCommunication, &feedback.ClarityAndCommunication},
		{"impactOnDecisionMaking", raw.ImpactOnDecisionMaking, &feedback.ImpactOnDecisionMaking},
		{"presenceMultiplier", raw.PresenceMultiplier, &feedback.PresenceMultiplier},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v, err := parseDecimalString(*f.src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	feedback.FinalScore = feedback.RubricAverage() * feedback.PresenceMultiplier

	return &feedback, nil
}

// parseBonus accepts both shapes the API has used over time: a boolean flag
// granting the version's standard boost, or an explicit percent amount.
func parseBonus(s string, standardBoost float64) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0":
		return 0, nil
	case "true":
		return standardBoost, nil
	}

	v, err := parseDecimalString(s)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}
