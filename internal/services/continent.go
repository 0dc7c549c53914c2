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

type ContinentService interface {
	List(ctx context.Context, page geo.PageRequest) (geo.Page[*geo.Continent], error)
	Get(ctx context.Context, id uint) (*geo.Continent, error)
	Count(ctx context.Context) (int64, error)

	Create(ctx context.Context, in domainagg.ContinentInput) (*geo.Continent, error)
	Update(ctx context.Context, id uint, in domainagg.ContinentInput) (*geo.Continent, error)
	Delete(ctx context.Context, id uint) error

	// Resolve finds or creates the continent called name.
	Resolve(ctx context.Context, name string) (domainagg.ResolveResult, error)
	LinkCountry(ctx context.Context, continentID, countryID uint) (*geo.Country, error)
}

type continentService struct {
	log        *logger.Logger
	continents repos.ContinentRepo
	agg        domainagg.ContinentAggregate
	countries  domainagg.CountryAggregate
	resolver   domainagg.ContinentResolver
}

func NewContinentService(
	log *logger.Logger,
	continents repos.ContinentRepo,
	agg domainagg.ContinentAggregate,
	countries domainagg.CountryAggregate,
	resolver domainagg.ContinentResolver,
) ContinentService {
	return &continentService{
		log:        log.With("service", "ContinentService"),
		continents: continents,
		agg:        agg,
		countries:  countries,
		resolver:   resolver,
	}
}

func (s *continentService) List(ctx context.Context, page geo.PageRequest) (geo.Page[*geo.Continent], error) {
	page = page.Normalize()
	rows, total, err := s.continents.List(dbctx.Context{Ctx: ctx}, page)
	if err != nil {
		return geo.Page[*geo.Continent]{}, aggregates.MapError("ContinentService.List", err)
	}
	return geo.NewPage(rows, total, page), nil
}

func (s *continentService) Get(ctx context.Context, id uint) (*geo.Continent, error) {
	const op = "ContinentService.Get"
	row, err := s.continents.GetByIDWithCountries(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NotFound(op, "continent", id)
	}
	return row, nil
}

func (s *continentService) Count(ctx context.Context) (int64, error) {
	n, err := s.continents.Count(dbctx.Context{Ctx: ctx})
	if err != nil {
		return 0, aggregates.MapError("ContinentService.Count", err)
	}
	return n, nil
}

func (s *continentService) Create(ctx context.Context, in domainagg.ContinentInput) (*geo.Continent, error) {
	row, err := s.agg.CreateContinent(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("continent created", "continent_id", row.ID, "name", row.Name, "linked_countries", len(row.Countries))
	return row, nil
}

func (s *continentService) Update(ctx context.Context, id uint, in domainagg.ContinentInput) (*geo.Continent, error) {
	return s.agg.UpdateContinent(ctx, id, in)
}

func (s *continentService) Delete(ctx context.Context, id uint) error {
	if err := s.agg.DeleteContinent(ctx, id); err != nil {
		return err
	}
	s.log.Info("continent deleted", "continent_id", id)
	return nil
}

func (s *continentService) Resolve(ctx context.Context, name string) (domainagg.ResolveResult, error) {
	return s.resolver.Resolve(ctx, name)
}

func (s *continentService) LinkCountry(ctx context.Context, continentID, countryID uint) (*geo.Country, error) {
	return s.countries.LinkToContinent(ctx, continentID, countryID)
}
