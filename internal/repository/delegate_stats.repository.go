package repository

import (
	"context"
	"delegatecomp/internal/domain"
	"delegatecomp/pkg/karma"
)

type DelegateStatsRepository interface {
	GetForMonth(ctx context.Context, daoID string, month domain.MonthKey) ([]karma.DelegateStatsFromAPI, error)
}

type delegateStatsRepositoryHandler struct {
	Client karma.Client
}

func NewDelegateStatsRepository(client karma.Client) DelegateStatsRepository {
	return delegateStatsRepositoryHandler{
		Client: client,
	}
}

func (h delegateStatsRepositoryHandler) GetForMonth(ctx context.Context, daoID string, month domain.MonthKey) ([]karma.DelegateStatsFromAPI, error) {
	delegates, err := h.Client.GetDelegateStats(ctx, daoID, month.Month, month.Year)
	if err != nil {
		return nil, domain.UpstreamFetchError{
			DAOID: daoID,
			Month: month,
			Err:   err,
		}
	}
	return delegates, nil
}
