package app

import (
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/platform/config"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type Services struct {
	Continent services.ContinentService
	Country   services.CountryService
	City      services.CityService
	Stats     services.StatsService
	Import    services.CountryImportService
}

func wireServices(log *logger.Logger, cfg *config.Config, repos Repos, aggs Aggregates, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Continent: services.NewContinentService(log, repos.Continent, aggs.Continent, aggs.Country, aggs.Resolver),
		Country:   services.NewCountryService(log, repos.Country, aggs.Country, aggs.Resolver),
		City:      services.NewCityService(log, repos.City, aggs.City),
		Stats:     services.NewStatsService(log, repos.Continent, repos.Country, repos.City, cfg.Stats),
		Import:    services.NewCountryImportService(log, aggs.Country, aggs.Resolver, metrics, cfg.Import.Concurrency),
	}
}
