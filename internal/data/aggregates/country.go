package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

type CountryAggregateDeps struct {
	Base BaseDeps

	Continents repos.ContinentRepo
	Countries  repos.CountryRepo
	Cities     repos.CityRepo
}

type countryAggregate struct {
	deps CountryAggregateDeps
}

func NewCountryAggregate(deps CountryAggregateDeps) domainagg.CountryAggregate {
	deps.Base = deps.Base.withDefaults()
	return &countryAggregate{deps: deps}
}

func (a *countryAggregate) Contract() domainagg.Contract {
	return domainagg.CountryAggregateContract
}

func (a *countryAggregate) configured(op string) error {
	if a.deps.Continents == nil || a.deps.Countries == nil || a.deps.Cities == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "country aggregate repos not configured", nil)
	}
	return nil
}

func validateCountryInput(op string, in domainagg.CountryInput, requireContinent bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing country name", nil)
	}
	if in.Population < 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "population must be >= 0", nil)
	}
	if requireContinent && in.ContinentID == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing continent id", nil)
	}
	return nil
}

func (a *countryAggregate) CreateCountry(ctx context.Context, in domainagg.CountryInput) (*geo.Country, error) {
	const op = "Geo.Country.CreateCountry"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := validateCountryInput(op, in, true); err != nil {
		return nil, err
	}

	var out *geo.Country
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		continent, err := a.deps.Continents.LockByID(dbc, in.ContinentID)
		if err != nil {
			return err
		}
		if continent == nil {
			return domainagg.NotFound(op, "continent", in.ContinentID)
		}
		row := &geo.Country{
			Name:             strings.TrimSpace(in.Name),
			Population:       in.Population,
			OfficialLanguage: strings.TrimSpace(in.OfficialLanguage),
			Currency:         strings.TrimSpace(in.Currency),
			ContinentID:      in.ContinentID,
			FlagURL:          in.FlagURL,
			GDPPerCapita:     in.GDPPerCapita,
			Inflation:        in.Inflation,
		}
		if _, err := a.deps.Countries.Create(dbc, row); err != nil {
			return err
		}
		row.Continent = continent
		out = row
		return nil
	})
	return out, err
}

func (a *countryAggregate) UpdateCountry(ctx context.Context, id uint, in domainagg.CountryInput) (domainagg.CountryUpdateResult, error) {
	const op = "Geo.Country.UpdateCountry"
	var out domainagg.CountryUpdateResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if id == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing country id", nil)
	}
	if err := validateCountryInput(op, in, false); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		current, err := a.deps.Countries.LockByID(dbc, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domainagg.NotFound(op, "country", id)
		}
		continentID := current.ContinentID
		if in.ContinentID != 0 && in.ContinentID != current.ContinentID {
			exists, err := a.deps.Continents.Exists(dbc, in.ContinentID)
			if err != nil {
				return err
			}
			if !exists {
				return domainagg.NotFound(op, "continent", in.ContinentID)
			}
			continentID = in.ContinentID
		}

		cities, err := a.deps.Cities.CountByCountry(dbc, id)
		if err != nil {
			return err
		}
		population := in.Population
		derived := cities > 0
		if derived {
			population, err = a.deps.Cities.SumPopulationByCountry(dbc, id)
			if err != nil {
				return err
			}
		}

		if err := a.deps.Countries.UpdateFields(dbc, id, map[string]interface{}{
			"name":              strings.TrimSpace(in.Name),
			"population":        population,
			"official_language": strings.TrimSpace(in.OfficialLanguage),
			"currency":          strings.TrimSpace(in.Currency),
			"continent_id":      continentID,
			"flag_url":          in.FlagURL,
			"gdp_per_capita":    in.GDPPerCapita,
			"inflation":         in.Inflation,
		}); err != nil {
			return err
		}
		fresh, err := a.deps.Countries.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if fresh == nil {
			return domainagg.NotFound(op, "country", id)
		}
		out = domainagg.CountryUpdateResult{Country: fresh, PopulationDerived: derived}
		return nil
	})
	return out, err
}

func (a *countryAggregate) DeleteCountry(ctx context.Context, id uint) error {
	const op = "Geo.Country.DeleteCountry"
	if err := a.configured(op); err != nil {
		return err
	}
	if id == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing country id", nil)
	}

	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		current, err := a.deps.Countries.LockByID(dbc, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domainagg.NotFound(op, "country", id)
		}
		cities, err := a.deps.Cities.CountByCountry(dbc, id)
		if err != nil {
			return err
		}
		if cities > 0 {
			return PreconditionError(fmt.Sprintf("country %d still has %d cities", id, cities))
		}
		_, err = a.deps.Countries.Delete(dbc, id)
		return err
	})
}

func (a *countryAggregate) LinkToContinent(ctx context.Context, continentID, countryID uint) (*geo.Country, error) {
	const op = "Geo.Country.LinkToContinent"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if continentID == 0 || countryID == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "continent id and country id are required", nil)
	}

	var out *geo.Country
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		continent, err := a.deps.Continents.LockByID(dbc, continentID)
		if err != nil {
			return err
		}
		if continent == nil {
			return domainagg.NotFound(op, "continent", continentID)
		}
		country, err := a.deps.Countries.LockByID(dbc, countryID)
		if err != nil {
			return err
		}
		if country == nil {
			return domainagg.NotFound(op, "country", countryID)
		}
		if country.ContinentID != continentID {
			if _, err := a.deps.Countries.SetContinent(dbc, []uint{countryID}, continentID); err != nil {
				return err
			}
		}
		out, err = a.deps.Countries.GetByID(dbc, countryID)
		return err
	})
	return out, err
}
