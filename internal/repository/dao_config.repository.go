package repository

import (
	"delegatecomp/internal/domain"
	"delegatecomp/internal/util"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type DaoConfigRepository interface {
	Get(daoID string) (*domain.DAOCompensationConfig, error)
	List() []domain.DAOCompensationConfig
}

type daoConfigRepositoryHandler struct {
	configs map[string]domain.DAOCompensationConfig
}

// NewDaoConfigRepository serves the built-in program table. The table is
// trusted input; overlap handling lives in the version resolver, not here.
func NewDaoConfigRepository() DaoConfigRepository {
	return newFromConfigs(defaultDaoConfigs())
}

func newFromConfigs(configs []domain.DAOCompensationConfig) DaoConfigRepository {
	byID := map[string]domain.DAOCompensationConfig{}
	for _, c := range configs {
		byID[strings.ToLower(c.DAOID)] = c
	}
	return daoConfigRepositoryHandler{configs: byID}
}

func (h daoConfigRepositoryHandler) Get(daoID string) (*domain.DAOCompensationConfig, error) {
	config, ok := h.configs[strings.ToLower(daoID)]
	if !ok || len(config.Versions) == 0 {
		return nil, domain.UnknownDAOError{DAOID: daoID}
	}
	return &config, nil
}

func (h daoConfigRepositoryHandler) List() []domain.DAOCompensationConfig {
	out := []domain.DAOCompensationConfig{}
	for _, c := range h.configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DAOID < out[j].DAOID
	})
	return out
}

type daoConfigFile struct {
	Daos []struct {
		ID             string `yaml:"id"`
		MonthlyPayment string `yaml:"monthlyPayment"`
		Versions       []struct {
			Version   string  `yaml:"version"`
			StartDate string  `yaml:"startDate"`
			EndDate   *string `yaml:"endDate"`
		} `yaml:"versions"`
	} `yaml:"daos"`
}

// NewDaoConfigRepositoryFromYAML loads the version table from a config file.
// Same shape as the built-in table, so the core contract is unchanged.
func NewDaoConfigRepositoryFromYAML(path string) (DaoConfigRepository, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dao config %s: %w", path, err)
	}

	parsed := daoConfigFile{}
	err = yaml.Unmarshal(f, &parsed)
	if err != nil {
		return nil, fmt.Errorf("could not parse dao config %s: %w", path, err)
	}

	configs := []domain.DAOCompensationConfig{}
	for _, dao := range parsed.Daos {
		payment := decimal.Zero
		if dao.MonthlyPayment != "" {
			payment, err = decimal.NewFromString(dao.MonthlyPayment)
			if err != nil {
				return nil, fmt.Errorf("invalid monthlyPayment for dao %s: %w", dao.ID, err)
			}
		}

		versions := []domain.CompensationVersion{}
		for _, v := range dao.Versions {
			start, err := time.Parse(time.DateOnly, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("invalid startDate for dao %s version %s: %w", dao.ID, v.Version, err)
			}
			var end *time.Time
			if v.EndDate != nil {
				parsedEnd, err := time.Parse(time.DateOnly, *v.EndDate)
				if err != nil {
					return nil, fmt.Errorf("invalid endDate for dao %s version %s: %w", dao.ID, v.Version, err)
				}
				end = &parsedEnd
			}
			versions = append(versions, domain.CompensationVersion{
				Version:   v.Version,
				StartDate: start,
				EndDate:   end,
			})
		}

		configs = append(configs, domain.DAOCompensationConfig{
			DAOID:          dao.ID,
			MonthlyPayment: payment,
			Versions:       versions,
		})
	}

	return newFromConfigs(configs), nil
}

func datePtr(t time.Time) *time.Time {
	return &t
}

// defaultDaoConfigs is the in-process program table for the DAOs currently
// running delegate compensation.
func defaultDaoConfigs() []domain.DAOCompensationConfig {
	return []domain.DAOCompensationConfig{
		{
			DAOID:          "arbitrum",
			MonthlyPayment: decimal.NewFromInt(5000),
			Versions: []domain.CompensationVersion{
				{
					Version:   "old",
					StartDate: util.NewDate(2023, 1, 26),
					EndDate:   datePtr(util.NewDate(2024, 8, 31)),
				},
				{
					Version:   "v1.5",
					StartDate: util.NewDate(2024, 9, 1),
					EndDate:   datePtr(util.NewDate(2025, 1, 31)),
				},
				{
					Version:   "v1.6",
					StartDate: util.NewDate(2025, 2, 1),
				},
			},
		},
		{
			DAOID:          "optimism",
			MonthlyPayment: decimal.NewFromInt(3000),
			Versions: []domain.CompensationVersion{
				{
					Version:   "old",
					StartDate: util.NewDate(2023, 6, 1),
					EndDate:   datePtr(util.NewDate(2024, 10, 31)),
				},
				{
					Version:   "v1.5",
					StartDate: util.NewDate(2024, 11, 1),
				},
			},
		},
		{
			DAOID:          "moonbeam",
			MonthlyPayment: decimal.NewFromInt(2000),
			Versions: []domain.CompensationVersion{
				{
					Version:   "old",
					StartDate: util.NewDate(2023, 3, 15),
				},
			},
		},
	}
}
