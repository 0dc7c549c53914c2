package services

import (
	"context"
	"strings"

	"github.com/yungbote/atlas-backend/internal/data/aggregates"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

// CountryWrite is a country body. ContinentName is resolved when ContinentID is zero.
type CountryWrite struct {
	domainagg.CountryInput
	ContinentName string
}

type CountryService interface {
	List(ctx context.Context, filter geo.CountryFilter, page geo.PageRequest) (geo.Page[*geo.Country], error)
	// Get returns the country with its continent and cities.
	Get(ctx context.Context, id uint) (*geo.Country, error)
	Count(ctx context.Context) (int64, error)

	Create(ctx context.Context, in CountryWrite) (*geo.Country, error)
	Update(ctx context.Context, id uint, in CountryWrite) (domainagg.CountryUpdateResult, error)
	Delete(ctx context.Context, id uint) error
}

type countryService struct {
	log       *logger.Logger
	countries repos.CountryRepo
	agg       domainagg.CountryAggregate
	resolver  domainagg.ContinentResolver
}

func NewCountryService(
	log *logger.Logger,
	countries repos.CountryRepo,
	agg domainagg.CountryAggregate,
	resolver domainagg.ContinentResolver,
) CountryService {
	return &countryService{
		log:       log.With("service", "CountryService"),
		countries: countries,
		agg:       agg,
		resolver:  resolver,
	}
}

func (s *countryService) List(ctx context.Context, filter geo.CountryFilter, page geo.PageRequest) (geo.Page[*geo.Country], error) {
	page = page.Normalize()
	rows, total, err := s.countries.List(dbctx.Context{Ctx: ctx}, filter, page)
	if err != nil {
		return geo.Page[*geo.Country]{}, aggregates.MapError("CountryService.List", err)
	}
	return geo.NewPage(rows, total, page), nil
}

func (s *countryService) Get(ctx context.Context, id uint) (*geo.Country, error) {
	const op = "CountryService.Get"
	row, err := s.countries.GetDetail(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NotFound(op, "country", id)
	}
	return row, nil
}

func (s *countryService) Count(ctx context.Context) (int64, error) {
	n, err := s.countries.Count(dbctx.Context{Ctx: ctx})
	if err != nil {
		return 0, aggregates.MapError("CountryService.Count", err)
	}
	return n, nil
}

func (s *countryService) Create(ctx context.Context, in CountryWrite) (*geo.Country, error) {
	input, err := s.withContinent(ctx, "CountryService.Create", in, true)
	if err != nil {
		return nil, err
	}
	row, err := s.agg.CreateCountry(ctx, input)
	if err != nil {
		return nil, err
	}
	s.log.Info("country created", "country_id", row.ID, "continent_id", row.ContinentID)
	return row, nil
}

func (s *countryService) Update(ctx context.Context, id uint, in CountryWrite) (domainagg.CountryUpdateResult, error) {
	input, err := s.withContinent(ctx, "CountryService.Update", in, false)
	if err != nil {
		return domainagg.CountryUpdateResult{}, err
	}
	res, err := s.agg.UpdateCountry(ctx, id, input)
	if err != nil {
		return res, err
	}
	if res.PopulationDerived && in.Population != res.Country.Population {
		s.log.Debug("country population kept from cities", "country_id", id, "requested", in.Population, "stored", res.Country.Population)
	}
	return res, nil
}

func (s *countryService) Delete(ctx context.Context, id uint) error {
	return s.agg.DeleteCountry(ctx, id)
}

// withContinent fills ContinentID from ContinentName when only the name was given.
func (s *countryService) withContinent(ctx context.Context, op string, in CountryWrite, required bool) (domainagg.CountryInput, error) {
	out := in.CountryInput
	if out.ContinentID != 0 {
		return out, nil
	}
	name := strings.TrimSpace(in.ContinentName)
	if name == "" {
		if required {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "id_continente or continente is required", nil)
		}
		return out, nil
	}
	if s.resolver == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "continent resolver not configured", nil)
	}
	res, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return out, err
	}
	out.ContinentID = res.ContinentID
	return out, nil
}
