package calculator

import (
	"delegatecomp/internal/domain"
	"delegatecomp/internal/repository"
	"delegatecomp/internal/util"
	"testing"

	"github.com/stretchr/testify/require"
)

func twoVersionConfig() domain.DAOCompensationConfig {
	end := util.NewDate(2024, 6, 30)
	return domain.DAOCompensationConfig{
		DAOID: "testdao",
		Versions: []domain.CompensationVersion{
			{Version: "v1", StartDate: util.NewDate(2024, 1, 1), EndDate: &end},
			{Version: "v2", StartDate: util.NewDate(2024, 7, 1)},
		},
	}
}

func TestResolveVersionFromConfig(t *testing.T) {
	config := twoVersionConfig()

	t.Run("boundary dates are inclusive", func(t *testing.T) {
		require.Equal(t, "v1", ResolveVersionFromConfig(config, util.NewDate(2024, 6, 30)))
		require.Equal(t, "v2", ResolveVersionFromConfig(config, util.NewDate(2024, 7, 1)))
		require.Equal(t, "v1", ResolveVersionFromConfig(config, util.NewDate(2024, 1, 1)))
	})

	t.Run("dates before the earliest window clamp to the earliest version", func(t *testing.T) {
		require.Equal(t, "v1", ResolveVersionFromConfig(config, util.NewDate(1999, 12, 31)))
	})

	t.Run("open-ended window covers far future", func(t *testing.T) {
		require.Equal(t, "v2", ResolveVersionFromConfig(config, util.NewDate(2100, 1, 1)))
	})

	t.Run("total over a broad sweep of dates", func(t *testing.T) {
		for year := 2000; year <= 2050; year++ {
			for month := 1; month <= 12; month++ {
				version := ResolveVersionFromConfig(config, util.NewDate(year, month, 15))
				require.NotEmpty(t, version)
			}
		}
	})

	t.Run("overlapping windows resolve to the later start", func(t *testing.T) {
		overlapEnd := util.NewDate(2024, 9, 30)
		overlapping := domain.DAOCompensationConfig{
			DAOID: "testdao",
			Versions: []domain.CompensationVersion{
				{Version: "a", StartDate: util.NewDate(2024, 1, 1), EndDate: &overlapEnd},
				{Version: "b", StartDate: util.NewDate(2024, 6, 1)},
			},
		}

		// both windows claim august; the later start wins
		require.Equal(t, "b", ResolveVersionFromConfig(overlapping, util.NewDate(2024, 8, 15)))
		require.Equal(t, "a", ResolveVersionFromConfig(overlapping, util.NewDate(2024, 5, 15)))
	})
}

func TestVersionResolver_Resolve(t *testing.T) {
	resolver := NewVersionResolver(repository.NewDaoConfigRepository())

	t.Run("resolves against the program table", func(t *testing.T) {
		version, err := resolver.Resolve("arbitrum", util.NewDate(2025, 3, 10))
		require.NoError(t, err)
		require.Equal(t, "v1.6", version)

		version, err = resolver.Resolve("arbitrum", util.NewDate(2024, 10, 1))
		require.NoError(t, err)
		require.Equal(t, "v1.5", version)
	})

	t.Run("unknown dao fails the call", func(t *testing.T) {
		_, err := resolver.Resolve("notadao", util.NewDate(2025, 3, 10))
		require.ErrorAs(t, err, &domain.UnknownDAOError{})
	})
}
