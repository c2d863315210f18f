package service

import (
	"context"
	"delegatecomp/internal/domain"

	"github.com/montanaflynn/stats"
)

// MonthSummary aggregates one computed month for the admin dashboard.
type MonthSummary struct {
	DAOID          string             `json:"daoId"`
	Month          domain.MonthKey    `json:"period"`
	Version        string             `json:"version"`
	Status         domain.MonthStatus `json:"status"`
	DelegateCount  int                `json:"delegateCount"`
	SkippedRecords int                `json:"skippedRecords"`

	MeanTotal   float64 `json:"meanTotalParticipation"`
	MedianTotal float64 `json:"medianTotalParticipation"`
	StdevTotal  float64 `json:"stdevTotalParticipation"`
	TopDecile   float64 `json:"topDecileTotalParticipation"`
}

type SummaryService interface {
	GetMonthSummary(ctx context.Context, daoID string, month domain.MonthKey, opts GetDelegatesOptions) (*MonthSummary, error)
}

type summaryServiceHandler struct {
	DelegateService DelegateService
}

func NewSummaryService(delegateService DelegateService) SummaryService {
	return summaryServiceHandler{
		DelegateService: delegateService,
	}
}

func (h summaryServiceHandler) GetMonthSummary(ctx context.Context, daoID string, month domain.MonthKey, opts GetDelegatesOptions) (*MonthSummary, error) {
	monthResult, err := h.DelegateService.GetDelegatesForMonth(ctx, daoID, month, opts)
	if err != nil {
		return nil, err
	}

	summary := MonthSummary{
		DAOID:          monthResult.DAOID,
		Month:          monthResult.Month,
		Version:        monthResult.Version,
		Status:         monthResult.Status,
		DelegateCount:  len(monthResult.Delegates),
		SkippedRecords: monthResult.SkippedRecords,
	}

	if len(monthResult.Delegates) == 0 {
		return &summary, nil
	}

	totals := make([]float64, 0, len(monthResult.Delegates))
	for _, d := range monthResult.Delegates {
		totals = append(totals, d.TotalParticipation)
	}

	// stats errors only fire on empty input, which is guarded above
	summary.MeanTotal, _ = stats.Mean(totals)
	summary.MedianTotal, _ = stats.Median(totals)
	summary.StdevTotal, _ = stats.StandardDeviation(totals)
	summary.TopDecile, _ = stats.Percentile(totals, 90)

	return &summary, nil
}
