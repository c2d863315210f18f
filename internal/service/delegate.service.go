package service

import (
	"context"
	"delegatecomp/internal/calculator"
	"delegatecomp/internal/domain"
	"delegatecomp/internal/logger"
	"delegatecomp/internal/repository"
	"delegatecomp/internal/util"
	"delegatecomp/pkg/karma"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// rankVisibleLimit caps how deep the dashboard shows rank numbers; beyond it
// delegates still appear, unranked.
const rankVisibleLimit = 50

const fetchConcurrency = 5

type GetDelegatesOptions struct {
	OnlyOptedIn bool
	// Version forces a formula version instead of resolving by date.
	Version   *string
	ScoreType domain.ScoreType
}

type DelegateService interface {
	GetDelegatesForMonth(ctx context.Context, daoID string, month domain.MonthKey, opts GetDelegatesOptions) (*domain.MonthResult, error)
	GetAllDelegates(ctx context.Context, daoID string, asOf time.Time) ([]string, error)
	BackfillDAO(ctx context.Context, daoID string, asOf time.Time, opts GetDelegatesOptions) (map[domain.MonthKey]domain.MonthResult, error)
}

type delegateServiceHandler struct {
	DaoConfigRepository     repository.DaoConfigRepository
	DelegateStatsRepository repository.DelegateStatsRepository
}

func NewDelegateService(
	daoConfigRepository repository.DaoConfigRepository,
	delegateStatsRepository repository.DelegateStatsRepository,
) DelegateService {
	return delegateServiceHandler{
		DaoConfigRepository:     daoConfigRepository,
		DelegateStatsRepository: delegateStatsRepository,
	}
}

// GetDelegatesForMonth fetches one DAO-month, normalizes and scores every
// record, and returns the ranked list. Upstream failures fold into an
// unavailable month rather than an error: only an unknown DAO fails the call.
func (h delegateServiceHandler) GetDelegatesForMonth(ctx context.Context, daoID string, month domain.MonthKey, opts GetDelegatesOptions) (*domain.MonthResult, error) {
	config, err := h.DaoConfigRepository.Get(daoID)
	if err != nil {
		return nil, err
	}

	version := calculator.ResolveVersionFromConfig(*config, month.Date())
	if opts.Version != nil {
		version = *opts.Version
	}
	def, err := calculator.GetVersionDefinition(version)
	if err != nil {
		return nil, err
	}

	result := domain.MonthResult{
		DAOID:   config.DAOID,
		Month:   month,
		Version: version,
		Status:  domain.MonthComputed,
	}

	records, err := h.DelegateStatsRepository.GetForMonth(ctx, config.DAOID, month)
	if err != nil {
		logger.FromContext(ctx).Warnf("treating %s %s as unavailable: %v", config.DAOID, month, err)
		result.Status = domain.MonthUnavailable
		result.Delegates = []domain.DelegateCompensationStats{}
		return &result, nil
	}

	scored := []domain.DelegateCompensationStats{}
	for _, record := range records {
		stats, err := h.scoreRecord(record, version, def, month, *config, opts)
		if err != nil {
			logger.FromContext(ctx).Warnf("skipping record: %v", err)
			result.SkippedRecords++
			continue
		}
		if stats == nil {
			// filtered out, not skipped
			continue
		}
		scored = append(scored, *stats)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].TotalParticipation != scored[j].TotalParticipation {
			return scored[i].TotalParticipation > scored[j].TotalParticipation
		}
		return scored[i].Delegate < scored[j].Delegate
	})
	for i := range scored {
		if i < rankVisibleLimit {
			rank := i + 1
			scored[i].Rank = &rank
		}
		// display rounding happens after ordering so close scores rank on
		// their exact values
		scored[i].TotalParticipation = opts.ScoreType.Apply(scored[i].TotalParticipation)
	}

	result.Delegates = scored
	return &result, nil
}

func (h delegateServiceHandler) scoreRecord(
	record karma.DelegateStatsFromAPI,
	version string,
	def domain.VersionDefinition,
	month domain.MonthKey,
	config domain.DAOCompensationConfig,
	opts GetDelegatesOptions,
) (*domain.DelegateCompensationStats, error) {
	breakdown, err := calculator.Normalize(record, version, month)
	if err != nil {
		return nil, err
	}
	if opts.OnlyOptedIn && !breakdown.OptedIn {
		return nil, nil
	}

	score, err := calculator.ComputeScore(*breakdown, def)
	if err != nil {
		return nil, domain.MalformedStatsError{
			Delegate: breakdown.Delegate,
			Month:    month,
			Err:      err,
		}
	}

	subScores := map[string]float64{}
	for _, s := range score.SubScores {
		subScores[s.Abbreviation] = s.Score
	}

	return &domain.DelegateCompensationStats{
		Delegate:           breakdown.Delegate,
		Name:               breakdown.Name,
		ENSName:            breakdown.ENSName,
		OptedIn:            breakdown.OptedIn,
		Month:              month,
		Version:            version,
		SubScores:          subScores,
		ParticipationRate:  breakdown.ParticipationRatePercent(),
		TotalParticipation: score.TotalParticipation,
		Payment:            computePayment(config.MonthlyPayment, score.TotalParticipation),
		Formula:            score.Formula,
		FormulaBreakdown:   score.FormulaBreakdown,
	}, nil
}

// computePayment scales the DAO's monthly pool by the exact (unrounded)
// score, capped at the full pool.
func computePayment(monthlyPayment decimal.Decimal, totalParticipation float64) decimal.Decimal {
	share := decimal.NewFromFloat(totalParticipation).Div(decimal.NewFromInt(100))
	if share.GreaterThan(decimal.NewFromInt(1)) {
		share = decimal.NewFromInt(1)
	}
	if share.IsNegative() {
		share = decimal.Zero
	}
	return monthlyPayment.Mul(share).Round(2)
}

// GetAllDelegates walks the DAO's full active history and returns every
// address that ever appeared, case-normalized and deduplicated. A failed
// month logs and contributes nothing; sibling months are unaffected.
func (h delegateServiceHandler) GetAllDelegates(ctx context.Context, daoID string, asOf time.Time) ([]string, error) {
	config, err := h.DaoConfigRepository.Get(daoID)
	if err != nil {
		return nil, err
	}

	months := monthsForConfig(*config, asOf)

	inputCh := make(chan domain.MonthKey, len(months))
	resultCh := make(chan []karma.DelegateStatsFromAPI, len(months))
	var wg sync.WaitGroup
	for _, month := range months {
		wg.Add(1)
		inputCh <- month
	}
	close(inputCh)

	for i := 0; i < fetchConcurrency; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					// release the months still queued so wg.Wait can finish
					for range inputCh {
						wg.Done()
					}
					return
				case month, ok := <-inputCh:
					if !ok {
						return
					}
					records, err := h.DelegateStatsRepository.GetForMonth(ctx, config.DAOID, month)
					if err != nil {
						logger.FromContext(ctx).Warnf("skipping month in delegate crawl: %v", err)
						records = nil
					}
					resultCh <- records
					wg.Done()
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	seen := map[string]bool{}
	for records := range resultCh {
		for _, record := range records {
			seen[strings.ToLower(record.PublicAddress)] = true
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(seen))
	for address := range seen {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	return addresses, nil
}

// BackfillDAO recomputes every month of the DAO's history. Months are
// independent; each one lands as computed or unavailable on its own.
func (h delegateServiceHandler) BackfillDAO(ctx context.Context, daoID string, asOf time.Time, opts GetDelegatesOptions) (map[domain.MonthKey]domain.MonthResult, error) {
	config, err := h.DaoConfigRepository.Get(daoID)
	if err != nil {
		return nil, err
	}

	months := monthsForConfig(*config, asOf)

	inputCh := make(chan domain.MonthKey, len(months))
	resultCh := make(chan domain.MonthResult, len(months))
	var wg sync.WaitGroup
	for _, month := range months {
		wg.Add(1)
		inputCh <- month
	}
	close(inputCh)

	for i := 0; i < fetchConcurrency; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					// release the months still queued so wg.Wait can finish
					for range inputCh {
						wg.Done()
					}
					return
				case month, ok := <-inputCh:
					if !ok {
						return
					}
					monthResult, err := h.GetDelegatesForMonth(ctx, daoID, month, opts)
					if err != nil {
						// config errors were already checked above; treat a
						// late failure like an unavailable month
						logger.FromContext(ctx).Warnf("backfill month %s failed: %v", month, err)
						monthResult = &domain.MonthResult{
							DAOID:     config.DAOID,
							Month:     month,
							Status:    domain.MonthUnavailable,
							Delegates: []domain.DelegateCompensationStats{},
						}
					}
					resultCh <- *monthResult
					wg.Done()
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := map[domain.MonthKey]domain.MonthResult{}
	for monthResult := range resultCh {
		out[monthResult.Month] = monthResult
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func monthsForConfig(config domain.DAOCompensationConfig, asOf time.Time) []domain.MonthKey {
	return util.MonthsBetween(config.StartDate(), asOf)
}
