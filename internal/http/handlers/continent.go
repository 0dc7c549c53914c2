package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type continentRequest struct {
	Name        string `json:"nome" binding:"required,max=120"`
	Description string `json:"descricao" binding:"max=2000"`
	CountryIDs  []uint `json:"paises" binding:"omitempty,dive,gt=0"`
}

type resolveContinentRequest struct {
	Name string `json:"name" binding:"required"`
}

type linkCountryRequest struct {
	ContinentID uint `json:"continenteId" binding:"required,gt=0"`
	CountryID   uint `json:"paisId" binding:"required,gt=0"`
}

type ContinentHandlerDeps struct {
	Log        *logger.Logger
	Continents services.ContinentService
}

type ContinentHandler struct {
	log        *logger.Logger
	continents services.ContinentService
}

func NewContinentHandler(deps ContinentHandlerDeps) *ContinentHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ContinentHandler{
		log:        log.With("handler", "ContinentHandler"),
		continents: deps.Continents,
	}
}

// GET /continentes
func (h *ContinentHandler) List(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	out, err := h.continents.List(c.Request.Context(), page)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /continentes/count
func (h *ContinentHandler) Count(c *gin.Context) {
	n, err := h.continents.Count(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}

// GET /continente/:id
func (h *ContinentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	row, err := h.continents.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /createContinente
func (h *ContinentHandler) Create(c *gin.Context) {
	var req continentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	row, err := h.continents.Create(c.Request.Context(), domainagg.ContinentInput{
		Name:        req.Name,
		Description: req.Description,
		CountryIDs:  req.CountryIDs,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// PUT /continente/:id
func (h *ContinentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	var req continentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	row, err := h.continents.Update(c.Request.Context(), id, domainagg.ContinentInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /continente/:id
func (h *ContinentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if err := h.continents.Delete(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "continent deleted", "id": id})
}

// POST /getOrCreateContinent
func (h *ContinentHandler) GetOrCreate(c *gin.Context) {
	var req resolveContinentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	res, err := h.continents.Resolve(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if res.Created {
		h.log.Info("continent created by name", "continent_id", res.ContinentID)
	}
	response.RespondOK(c, gin.H{"id": res.ContinentID})
}

// POST /addPais
func (h *ContinentHandler) AddCountry(c *gin.Context) {
	var req linkCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	row, err := h.continents.LinkCountry(c.Request.Context(), req.ContinentID, req.CountryID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, row)
}
