package app

import (
	httpH "github.com/yungbote/atlas-backend/internal/http/handlers"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type Handlers struct {
	Continent *httpH.ContinentHandler
	Country   *httpH.CountryHandler
	City      *httpH.CityHandler
	Stats     *httpH.StatsHandler
	Health    *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services, checks map[string]httpH.HealthCheck) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Continent: httpH.NewContinentHandler(httpH.ContinentHandlerDeps{
			Log:        log,
			Continents: services.Continent,
		}),
		Country: httpH.NewCountryHandler(httpH.CountryHandlerDeps{
			Log:       log,
			Countries: services.Country,
			Stats:     services.Stats,
			Importer:  services.Import,
		}),
		City:   httpH.NewCityHandler(services.City),
		Stats:  httpH.NewStatsHandler(services.Stats),
		Health: httpH.NewHealthHandler(checks),
	}
}
