package services

import (
	"context"

	"github.com/yungbote/atlas-backend/internal/data/aggregates"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type CityService interface {
	List(ctx context.Context, filter geo.CityFilter, page geo.PageRequest) (geo.Page[*geo.City], error)
	Get(ctx context.Context, id uint) (*geo.City, error)
	Count(ctx context.Context) (int64, error)

	Create(ctx context.Context, in domainagg.CityInput) (domainagg.CityWriteResult, error)
	Update(ctx context.Context, id uint, in domainagg.CityInput) (domainagg.CityWriteResult, error)
	Delete(ctx context.Context, id uint) (domainagg.CityWriteResult, error)
}

type cityService struct {
	log    *logger.Logger
	cities repos.CityRepo
	agg    domainagg.CityAggregate
}

func NewCityService(log *logger.Logger, cities repos.CityRepo, agg domainagg.CityAggregate) CityService {
	return &cityService{
		log:    log.With("service", "CityService"),
		cities: cities,
		agg:    agg,
	}
}

func (s *cityService) List(ctx context.Context, filter geo.CityFilter, page geo.PageRequest) (geo.Page[*geo.City], error) {
	page = page.Normalize()
	rows, total, err := s.cities.List(dbctx.Context{Ctx: ctx}, filter, page)
	if err != nil {
		return geo.Page[*geo.City]{}, aggregates.MapError("CityService.List", err)
	}
	return geo.NewPage(rows, total, page), nil
}

func (s *cityService) Get(ctx context.Context, id uint) (*geo.City, error) {
	const op = "CityService.Get"
	row, err := s.cities.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NotFound(op, "city", id)
	}
	return row, nil
}

func (s *cityService) Count(ctx context.Context) (int64, error) {
	n, err := s.cities.Count(dbctx.Context{Ctx: ctx})
	if err != nil {
		return 0, aggregates.MapError("CityService.Count", err)
	}
	return n, nil
}

func (s *cityService) Create(ctx context.Context, in domainagg.CityInput) (domainagg.CityWriteResult, error) {
	res, err := s.agg.CreateCity(ctx, in)
	if err != nil {
		return res, err
	}
	s.log.Info("city created", "city_id", res.City.ID, "country_id", res.City.CountryID)
	return res, nil
}

func (s *cityService) Update(ctx context.Context, id uint, in domainagg.CityInput) (domainagg.CityWriteResult, error) {
	return s.agg.UpdateCity(ctx, id, in)
}

func (s *cityService) Delete(ctx context.Context, id uint) (domainagg.CityWriteResult, error) {
	return s.agg.DeleteCity(ctx, id)
}
