package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
)

func pathID(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domainagg.NewError(domainagg.CodeValidation, "params", fmt.Sprintf("invalid %s %q", name, raw), nil)
	}
	return uint(id), nil
}

// queryUint returns nil when the parameter is absent or blank.
func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, "params", fmt.Sprintf("invalid %s %q", name, raw), nil)
	}
	id := uint(v)
	return &id, nil
}

func queryString(c *gin.Context, name string) *string {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	return &raw
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, "params", fmt.Sprintf("invalid %s %q", name, raw), nil)
	}
	return v, nil
}

// pageRequest reads page and limit. Out-of-range values are clamped later by the services.
func pageRequest(c *gin.Context) (geo.PageRequest, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return geo.PageRequest{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return geo.PageRequest{}, err
	}
	return geo.PageRequest{Page: page, PageSize: limit}, nil
}
