package app

import (
	"github.com/gin-gonic/gin"

	server "github.com/yungbote/atlas-backend/internal/http"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/platform/config"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg *config.Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Observability.OtelEnabled {
		serviceName = cfg.Observability.ServiceName
	}
	return server.NewRouter(server.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		CORSOrigins:      cfg.Server.CORSOrigins,
		ServiceName:      serviceName,
		ContinentHandler: handlers.Continent,
		CountryHandler:   handlers.Country,
		CityHandler:      handlers.City,
		StatsHandler:     handlers.Stats,
		HealthHandler:    handlers.Health,
	})
}
