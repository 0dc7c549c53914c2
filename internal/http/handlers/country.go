package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

// countryRequest carries either id_continente or a continente name to resolve.
type countryRequest struct {
	Name             string   `json:"nome" binding:"required,max=120"`
	Population       int64    `json:"populacao" binding:"gte=0"`
	OfficialLanguage string   `json:"idioma_oficial" binding:"required,max=80"`
	Currency         string   `json:"moeda" binding:"required,max=40"`
	ContinentID      uint     `json:"id_continente"`
	ContinentName    string   `json:"continente" binding:"max=120"`
	FlagURL          *string  `json:"url_bandeira" binding:"omitempty,url"`
	GDPPerCapita     *float64 `json:"pib_per_capita"`
	Inflation        *float64 `json:"inflacao"`
}

func (r countryRequest) write() services.CountryWrite {
	return services.CountryWrite{
		CountryInput: domainagg.CountryInput{
			Name:             r.Name,
			Population:       r.Population,
			OfficialLanguage: r.OfficialLanguage,
			Currency:         r.Currency,
			ContinentID:      r.ContinentID,
			FlagURL:          r.FlagURL,
			GDPPerCapita:     r.GDPPerCapita,
			Inflation:        r.Inflation,
		},
		ContinentName: r.ContinentName,
	}
}

type CountryHandlerDeps struct {
	Log       *logger.Logger
	Countries services.CountryService
	Stats     services.StatsService
	Importer  services.CountryImportService
}

type CountryHandler struct {
	log       *logger.Logger
	countries services.CountryService
	stats     services.StatsService
	importer  services.CountryImportService
}

func NewCountryHandler(deps CountryHandlerDeps) *CountryHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &CountryHandler{
		log:       log.With("handler", "CountryHandler"),
		countries: deps.Countries,
		stats:     deps.Stats,
		importer:  deps.Importer,
	}
}

// GET /paises
func (h *CountryHandler) List(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	continentID, err := queryUint(c, "id_continente")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	filter := geo.CountryFilter{
		ContinentID:      continentID,
		OfficialLanguage: queryString(c, "idioma_oficial"),
	}
	out, err := h.countries.List(c.Request.Context(), filter, page)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /paises/count
func (h *CountryHandler) Count(c *gin.Context) {
	n, err := h.countries.Count(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}

// GET /paises/populacao/total
func (h *CountryHandler) TotalPopulation(c *gin.Context) {
	total, err := h.stats.TotalPopulation(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"total": total})
}

// GET /paises/top/pib
func (h *CountryHandler) TopGDPPerCapita(c *gin.Context) {
	h.top(c, repos.IndicatorGDPPerCapita)
}

// GET /paises/top/inflacao
func (h *CountryHandler) TopInflation(c *gin.Context) {
	h.top(c, repos.IndicatorInflation)
}

func (h *CountryHandler) top(c *gin.Context, indicator repos.Indicator) {
	rows, err := h.stats.Top(c.Request.Context(), indicator)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /pais/:id
func (h *CountryHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	row, err := h.countries.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /createPais
func (h *CountryHandler) Create(c *gin.Context) {
	var req countryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	row, err := h.countries.Create(c.Request.Context(), req.write())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// PUT /pais/:id
func (h *CountryHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	var req countryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	res, err := h.countries.Update(c.Request.Context(), id, req.write())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if res.PopulationDerived {
		c.Header("X-Population-Derived", "true")
	}
	response.RespondOK(c, res.Country)
}

// DELETE /pais/:id
func (h *CountryHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if err := h.countries.Delete(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "country deleted", "id": id})
}

// POST /paises/import
func (h *CountryHandler) Import(c *gin.Context) {
	var records []services.CountryRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		response.RespondBindError(c, err)
		return
	}
	h.log.Info("country import requested", "records", len(records))
	report, err := h.importer.Import(c.Request.Context(), records)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, report)
}
