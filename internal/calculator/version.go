package calculator

import (
	"delegatecomp/internal/domain"
	"delegatecomp/internal/repository"
	"delegatecomp/internal/util"
	"sort"
	"time"
)

type VersionResolver interface {
	Resolve(daoID string, date time.Time) (string, error)
}

type versionResolverHandler struct {
	DaoConfigRepository repository.DaoConfigRepository
}

func NewVersionResolver(daoConfigRepository repository.DaoConfigRepository) VersionResolver {
	return versionResolverHandler{
		DaoConfigRepository: daoConfigRepository,
	}
}

func (h versionResolverHandler) Resolve(daoID string, date time.Time) (string, error) {
	config, err := h.DaoConfigRepository.Get(daoID)
	if err != nil {
		return "", err
	}
	return ResolveVersionFromConfig(*config, date), nil
}

// ResolveVersionFromConfig selects the version in effect on the given date.
// Search runs over start dates descending, so a misconfigured overlap is
// claimed by the window that started later. Boundary dates belong to the
// window inclusively. Dates before the earliest window clamp to the earliest
// version; an open-ended last window covers everything after it. The result
// is total for any config with at least one version.
func ResolveVersionFromConfig(config domain.DAOCompensationConfig, date time.Time) string {
	if len(config.Versions) == 0 {
		return ""
	}

	versions := make([]domain.CompensationVersion, len(config.Versions))
	copy(versions, config.Versions)
	sort.Slice(versions, func(i, j int) bool {
		return versions[j].StartDate.Before(versions[i].StartDate)
	})

	for _, v := range versions {
		if !util.DateLte(v.StartDate, date) {
			continue
		}
		if v.EndDate == nil || util.DateLte(date, *v.EndDate) {
			return v.Version
		}
	}

	// date precedes every window; clamp to the earliest version
	return versions[len(versions)-1].Version
}
