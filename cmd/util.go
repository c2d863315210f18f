package cmd

import (
	"delegatecomp/api"
	"delegatecomp/internal/calculator"
	"delegatecomp/internal/logger"
	"delegatecomp/internal/repository"
	"delegatecomp/internal/service"
	"delegatecomp/internal/util"
	"delegatecomp/pkg/karma"
	"net/http"
	"os"
)

const defaultKarmaBaseUrl = "https://api.karmahq.xyz"

func InitializeDependencies() (*api.ApiHandler, error) {
	karmaSecrets := util.KarmaSecrets{
		BaseUrl: defaultKarmaBaseUrl,
	}
	secrets, err := util.LoadSecrets()
	if err != nil {
		logger.Warn("no secrets file found, using defaults: %v", err)
	} else {
		karmaSecrets = secrets.Karma
		if karmaSecrets.BaseUrl == "" {
			karmaSecrets.BaseUrl = defaultKarmaBaseUrl
		}
	}

	daoConfigRepository := repository.NewDaoConfigRepository()
	if path := os.Getenv("DAO_CONFIG_PATH"); path != "" {
		daoConfigRepository, err = repository.NewDaoConfigRepositoryFromYAML(path)
		if err != nil {
			return nil, err
		}
	}

	karmaClient := karma.Client{
		HttpClient: http.DefaultClient,
		BaseUrl:    karmaSecrets.BaseUrl,
		ApiKey:     karmaSecrets.ApiKey,
	}
	delegateStatsRepository := repository.NewDelegateStatsRepository(karmaClient)

	delegateService := service.NewDelegateService(daoConfigRepository, delegateStatsRepository)

	apiHandler := &api.ApiHandler{
		DelegateService:     delegateService,
		SummaryService:      service.NewSummaryService(delegateService),
		VersionResolver:     calculator.NewVersionResolver(daoConfigRepository),
		DaoConfigRepository: daoConfigRepository,
	}

	return apiHandler, nil
}
