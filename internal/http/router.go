package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/atlas-backend/internal/http/handlers"
	httpMW "github.com/yungbote/atlas-backend/internal/http/middleware"
	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

const metricsPath = "/metrics"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// ServiceName enables otelgin spans when non-empty.
	ServiceName string

	ContinentHandler *httpH.ContinentHandler
	CountryHandler   *httpH.CountryHandler
	CityHandler      *httpH.CityHandler
	StatsHandler     *httpH.StatsHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	response.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics, metricsPath))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET(metricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}

	// Continents
	if h := cfg.ContinentHandler; h != nil {
		r.GET("/continentes", h.List)
		r.GET("/continentes/count", h.Count)
		r.GET("/continente/:id", h.Get)
		r.POST("/createContinente", h.Create)
		r.PUT("/continente/:id", h.Update)
		r.DELETE("/continente/:id", h.Delete)
		r.POST("/getOrCreateContinent", h.GetOrCreate)
		r.POST("/addPais", h.AddCountry)
	}

	// Countries
	if h := cfg.CountryHandler; h != nil {
		r.GET("/paises", h.List)
		r.GET("/paises/count", h.Count)
		r.GET("/paises/populacao/total", h.TotalPopulation)
		r.GET("/paises/top/pib", h.TopGDPPerCapita)
		r.GET("/paises/top/inflacao", h.TopInflation)
		r.POST("/paises/import", h.Import)
		r.GET("/pais/:id", h.Get)
		r.POST("/createPais", h.Create)
		r.PUT("/pais/:id", h.Update)
		r.DELETE("/pais/:id", h.Delete)
	}

	// Cities
	if h := cfg.CityHandler; h != nil {
		r.GET("/cidades", h.List)
		r.GET("/cidades/count", h.Count)
		r.GET("/cidade/:id", h.Get)
		r.POST("/createCidade", h.Create)
		r.PUT("/cidade/:id", h.Update)
		r.DELETE("/cidade/:id", h.Delete)
	}

	if cfg.StatsHandler != nil {
		r.GET("/stats", cfg.StatsHandler.Summary)
	}

	return r
}
