package service

import (
	"context"
	"delegatecomp/internal/domain"
	"delegatecomp/internal/repository"
	"delegatecomp/internal/util"
	"delegatecomp/pkg/karma"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeStatsRepository struct {
	recordsByMonth map[domain.MonthKey][]karma.DelegateStatsFromAPI
	failMonths     map[domain.MonthKey]bool
}

func (f fakeStatsRepository) GetForMonth(ctx context.Context, daoID string, month domain.MonthKey) ([]karma.DelegateStatsFromAPI, error) {
	if f.failMonths[month] {
		return nil, domain.UpstreamFetchError{
			DAOID: daoID,
			Month: month,
			Err:   fmt.Errorf("connection refused"),
		}
	}
	return f.recordsByMonth[month], nil
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func snapshotOnlyRecord(address string, rn, tn int) karma.DelegateStatsFromAPI {
	record := karma.DelegateStatsFromAPI{
		PublicAddress: address,
		OptedIn:       boolPtr(true),
	}
	record.Stats.SnapshotVoting = &karma.RateCount{
		Rn: strPtr(fmt.Sprintf("%d", rn)),
		Tn: strPtr(fmt.Sprintf("%d", tn)),
	}
	return record
}

func newTestService(statsRepo repository.DelegateStatsRepository) DelegateService {
	return NewDelegateService(repository.NewDaoConfigRepository(), statsRepo)
}

func TestGetDelegatesForMonth(t *testing.T) {
	march := domain.MonthKey{Month: 3, Year: 2025}

	t.Run("end to end: arbitrum march 2025 under v1.6", func(t *testing.T) {
		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				march: {snapshotOnlyRecord("0xAAA", 4, 5)},
			},
		})

		result, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{})
		require.NoError(t, err)

		require.Equal(t, domain.MonthComputed, result.Status)
		require.Equal(t, "v1.6", result.Version)
		require.Len(t, result.Delegates, 1)

		delegate := result.Delegates[0]
		require.Equal(t, "0xaaa", delegate.Delegate)
		require.Equal(t, float64(16), delegate.TotalParticipation)
		require.InDelta(t, 16, delegate.SubScores["SV"], 1e-9)
		// 16% of the 5000 monthly pool
		require.True(t, decimal.NewFromInt(800).Equal(delegate.Payment), "payment was %s", delegate.Payment)
		require.NotNil(t, delegate.Rank)
		require.Equal(t, 1, *delegate.Rank)
	})

	t.Run("ranking cutoff at 50", func(t *testing.T) {
		records := []karma.DelegateStatsFromAPI{}
		for i := 0; i < 75; i++ {
			records = append(records, snapshotOnlyRecord(fmt.Sprintf("0x%03d", i), i, 100))
		}
		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{march: records},
		})

		result, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{})
		require.NoError(t, err)
		require.Len(t, result.Delegates, 75)

		for i, delegate := range result.Delegates {
			if i < 50 {
				require.NotNil(t, delegate.Rank)
				require.Equal(t, i+1, *delegate.Rank)
			} else {
				require.Nil(t, delegate.Rank)
			}
		}

		// sorted descending by score
		require.GreaterOrEqual(t,
			result.Delegates[0].TotalParticipation,
			result.Delegates[74].TotalParticipation,
		)
	})

	t.Run("malformed record is skipped, batch continues", func(t *testing.T) {
		bad := snapshotOnlyRecord("0xBAD", 1, 2)
		bad.Stats.SnapshotVoting.Rn = strPtr("not-a-number")

		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				march: {bad, snapshotOnlyRecord("0xGOOD", 4, 5)},
			},
		})

		result, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, result.SkippedRecords)
		require.Len(t, result.Delegates, 1)
		require.Equal(t, "0xgood", result.Delegates[0].Delegate)
	})

	t.Run("upstream failure folds into unavailable month", func(t *testing.T) {
		svc := newTestService(fakeStatsRepository{
			failMonths: map[domain.MonthKey]bool{march: true},
		})

		result, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{})
		require.NoError(t, err)
		require.Equal(t, domain.MonthUnavailable, result.Status)
		require.Empty(t, result.Delegates)
	})

	t.Run("opted-in filter excludes without counting as skipped", func(t *testing.T) {
		optedOut := snapshotOnlyRecord("0xOUT", 4, 5)
		optedOut.OptedIn = boolPtr(false)

		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				march: {optedOut, snapshotOnlyRecord("0xIN", 4, 5)},
			},
		})

		result, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{OnlyOptedIn: true})
		require.NoError(t, err)
		require.Equal(t, 0, result.SkippedRecords)
		require.Len(t, result.Delegates, 1)
		require.Equal(t, "0xin", result.Delegates[0].Delegate)
	})

	t.Run("unknown dao fails the call", func(t *testing.T) {
		svc := newTestService(fakeStatsRepository{})

		_, err := svc.GetDelegatesForMonth(context.Background(), "notadao", march, GetDelegatesOptions{})
		require.ErrorAs(t, err, &domain.UnknownDAOError{})
	})

	t.Run("ranking uses exact scores, not the displayed rounding", func(t *testing.T) {
		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				march: {
					snapshotOnlyRecord("0xaaa", 81, 100), // (81/100)*20 = 16.2
					snapshotOnlyRecord("0xbbb", 82, 100), // (82/100)*20 = 16.4
				},
			},
		})

		result, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{ScoreType: domain.ScoreTypeRounded})
		require.NoError(t, err)
		require.Len(t, result.Delegates, 2)

		// both display as 16, but 0xbbb's exact 16.4 beats 0xaaa's 16.2
		require.Equal(t, "0xbbb", result.Delegates[0].Delegate)
		require.Equal(t, "0xaaa", result.Delegates[1].Delegate)
		require.Equal(t, float64(16), result.Delegates[0].TotalParticipation)
		require.Equal(t, float64(16), result.Delegates[1].TotalParticipation)
		require.Equal(t, 1, *result.Delegates[0].Rank)
		require.Equal(t, 2, *result.Delegates[1].Rank)
	})

	t.Run("floored score type", func(t *testing.T) {
		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				march: {snapshotOnlyRecord("0xAAA", 5, 6)}, // (5/6)*20 = 16.66
			},
		})

		rounded, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{ScoreType: domain.ScoreTypeRounded})
		require.NoError(t, err)
		floored, err := svc.GetDelegatesForMonth(context.Background(), "arbitrum", march, GetDelegatesOptions{ScoreType: domain.ScoreTypeFloored})
		require.NoError(t, err)

		require.Equal(t, float64(17), rounded.Delegates[0].TotalParticipation)
		require.Equal(t, float64(16), floored.Delegates[0].TotalParticipation)
	})
}

func TestGetAllDelegates(t *testing.T) {
	t.Run("dedupes case-varied addresses across months", func(t *testing.T) {
		january := domain.MonthKey{Month: 1, Year: 2023}
		february := domain.MonthKey{Month: 2, Year: 2023}
		march := domain.MonthKey{Month: 3, Year: 2023}

		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				january:  {snapshotOnlyRecord("0xAbC", 1, 2), snapshotOnlyRecord("0xDEF", 1, 2)},
				february: {snapshotOnlyRecord("0xABC", 1, 2)},
				march:    {snapshotOnlyRecord("0xabc", 1, 2), snapshotOnlyRecord("0x123", 1, 2)},
			},
		})

		addresses, err := svc.GetAllDelegates(context.Background(), "arbitrum", util.NewDate(2023, 3, 10))
		require.NoError(t, err)
		require.Equal(t, []string{"0x123", "0xabc", "0xdef"}, addresses)
	})

	t.Run("cancelled context unblocks the crawl", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := newTestService(fakeStatsRepository{})

		done := make(chan error, 1)
		go func() {
			_, err := svc.GetAllDelegates(ctx, "arbitrum", util.NewDate(2025, 3, 10))
			done <- err
		}()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("GetAllDelegates did not return after cancellation")
		}
	})

	t.Run("failed month contributes nothing, siblings survive", func(t *testing.T) {
		january := domain.MonthKey{Month: 1, Year: 2023}
		february := domain.MonthKey{Month: 2, Year: 2023}

		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				january: {snapshotOnlyRecord("0xAAA", 1, 2)},
			},
			failMonths: map[domain.MonthKey]bool{february: true},
		})

		addresses, err := svc.GetAllDelegates(context.Background(), "arbitrum", util.NewDate(2023, 2, 10))
		require.NoError(t, err)
		require.Equal(t, []string{"0xaaa"}, addresses)
	})
}

func TestBackfillDAO(t *testing.T) {
	t.Run("each month lands independently", func(t *testing.T) {
		january := domain.MonthKey{Month: 1, Year: 2023}
		february := domain.MonthKey{Month: 2, Year: 2023}
		march := domain.MonthKey{Month: 3, Year: 2023}

		svc := newTestService(fakeStatsRepository{
			recordsByMonth: map[domain.MonthKey][]karma.DelegateStatsFromAPI{
				january: {snapshotOnlyRecord("0xAAA", 1, 2)},
				march:   {snapshotOnlyRecord("0xBBB", 1, 2)},
			},
			failMonths: map[domain.MonthKey]bool{february: true},
		})

		results, err := svc.BackfillDAO(context.Background(), "arbitrum", util.NewDate(2023, 3, 10), GetDelegatesOptions{})
		require.NoError(t, err)
		require.Len(t, results, 3)

		require.Equal(t, domain.MonthComputed, results[january].Status)
		require.Len(t, results[january].Delegates, 1)
		require.Equal(t, domain.MonthUnavailable, results[february].Status)
		require.Equal(t, domain.MonthComputed, results[march].Status)

		// months resolve their own versions
		require.Equal(t, "old", results[january].Version)
	})

	t.Run("cancelled context unblocks the backfill", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := newTestService(fakeStatsRepository{})

		done := make(chan error, 1)
		go func() {
			_, err := svc.BackfillDAO(ctx, "arbitrum", util.NewDate(2025, 3, 10), GetDelegatesOptions{})
			done <- err
		}()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("BackfillDAO did not return after cancellation")
		}
	})
}
