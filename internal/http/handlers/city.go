package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/services"
)

type cityRequest struct {
	Name       string  `json:"nome" binding:"required,max=120"`
	Population int64   `json:"populacao" binding:"gte=0"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	CountryID  uint    `json:"id_pais" binding:"required,gt=0"`
}

func (r cityRequest) input() domainagg.CityInput {
	return domainagg.CityInput{
		Name:       r.Name,
		Population: r.Population,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		CountryID:  r.CountryID,
	}
}

// cityWriteResponse reports the city and every country population the write touched.
type cityWriteResponse struct {
	City      *geo.City                   `json:"cidade,omitempty"`
	Countries []countryPopulationResponse `json:"paises"`
}

type countryPopulationResponse struct {
	CountryID  uint  `json:"id"`
	Population int64 `json:"populacao"`
}

func newCityWriteResponse(res domainagg.CityWriteResult) cityWriteResponse {
	out := cityWriteResponse{City: res.City, Countries: make([]countryPopulationResponse, 0, len(res.Countries))}
	for _, cp := range res.Countries {
		out.Countries = append(out.Countries, countryPopulationResponse{CountryID: cp.CountryID, Population: cp.Population})
	}
	return out
}

type CityHandler struct {
	cities services.CityService
}

func NewCityHandler(cities services.CityService) *CityHandler {
	return &CityHandler{cities: cities}
}

// GET /cidades
func (h *CityHandler) List(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	countryID, err := queryUint(c, "paisId")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	continentID, err := queryUint(c, "continenteId")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	out, err := h.cities.List(c.Request.Context(), geo.CityFilter{CountryID: countryID, ContinentID: continentID}, page)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /cidades/count
func (h *CityHandler) Count(c *gin.Context) {
	n, err := h.cities.Count(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}

// GET /cidade/:id
func (h *CityHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	row, err := h.cities.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /createCidade
func (h *CityHandler) Create(c *gin.Context) {
	var req cityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	res, err := h.cities.Create(c.Request.Context(), req.input())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, newCityWriteResponse(res))
}

// PUT /cidade/:id
func (h *CityHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	var req cityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	res, err := h.cities.Update(c.Request.Context(), id, req.input())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, newCityWriteResponse(res))
}

// DELETE /cidade/:id
func (h *CityHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	res, err := h.cities.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, newCityWriteResponse(res))
}
