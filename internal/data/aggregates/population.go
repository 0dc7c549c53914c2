package aggregates

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

type CityAggregateDeps struct {
	Base BaseDeps

	Cities    repos.CityRepo
	Countries repos.CountryRepo
}

type cityAggregate struct {
	deps CityAggregateDeps
}

func NewCityAggregate(deps CityAggregateDeps) domainagg.CityAggregate {
	deps.Base = deps.Base.withDefaults()
	return &cityAggregate{deps: deps}
}

func (a *cityAggregate) Contract() domainagg.Contract {
	return domainagg.CityAggregateContract
}

func (a *cityAggregate) committed(op string, res domainagg.CityWriteResult, err error) (domainagg.CityWriteResult, error) {
	if err == nil {
		a.deps.Base.Hooks.ObserveRollup(op, len(res.Countries))
	}
	return res, err
}

func (a *cityAggregate) configured(op string) error {
	if a.deps.Cities == nil || a.deps.Countries == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "city aggregate repos not configured", nil)
	}
	return nil
}

func validateCityInput(op string, in domainagg.CityInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing city name", nil)
	}
	if in.Population < 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "population must be >= 0", nil)
	}
	if in.CountryID == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing country id", nil)
	}
	if math.IsNaN(in.Latitude) || math.IsNaN(in.Longitude) || math.IsInf(in.Latitude, 0) || math.IsInf(in.Longitude, 0) {
		return domainagg.NewError(domainagg.CodeValidation, op, "coordinates must be finite", nil)
	}
	return nil
}

func (a *cityAggregate) CreateCity(ctx context.Context, in domainagg.CityInput) (domainagg.CityWriteResult, error) {
	const op = "Geo.City.CreateCity"
	var out domainagg.CityWriteResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if err := validateCityInput(op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		owner, err := a.deps.Countries.LockByID(dbc, in.CountryID)
		if err != nil {
			return err
		}
		if owner == nil {
			return domainagg.NotFound(op, "country", in.CountryID)
		}
		row := &geo.City{
			Name:       strings.TrimSpace(in.Name),
			Population: in.Population,
			Latitude:   in.Latitude,
			Longitude:  in.Longitude,
			CountryID:  in.CountryID,
		}
		if _, err := a.deps.Cities.Create(dbc, row); err != nil {
			return err
		}
		pops, err := a.onCityMutated(dbc, domainagg.CityEvent{Kind: domainagg.CityInserted, New: row})
		if err != nil {
			return err
		}
		out = domainagg.CityWriteResult{City: row, Countries: pops}
		return nil
	})
	return a.committed(op, out, err)
}

func (a *cityAggregate) UpdateCity(ctx context.Context, id uint, in domainagg.CityInput) (domainagg.CityWriteResult, error) {
	const op = "Geo.City.UpdateCity"
	var out domainagg.CityWriteResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if id == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing city id", nil)
	}
	if err := validateCityInput(op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		old, err := a.deps.Cities.LockByID(dbc, id)
		if err != nil {
			return err
		}
		if old == nil {
			return domainagg.NotFound(op, "city", id)
		}
		if in.CountryID != old.CountryID {
			locked, err := a.deps.Countries.LockByIDs(dbc, []uint{old.CountryID, in.CountryID})
			if err != nil {
				return err
			}
			if !containsCountry(locked, in.CountryID) {
				return domainagg.NotFound(op, "country", in.CountryID)
			}
		}

		updated := *old
		updated.Name = strings.TrimSpace(in.Name)
		updated.Population = in.Population
		updated.Latitude = in.Latitude
		updated.Longitude = in.Longitude
		updated.CountryID = in.CountryID
		if err := a.deps.Cities.UpdateFields(dbc, id, map[string]interface{}{
			"name":       updated.Name,
			"population": updated.Population,
			"latitude":   updated.Latitude,
			"longitude":  updated.Longitude,
			"country_id": updated.CountryID,
		}); err != nil {
			return err
		}
		pops, err := a.onCityMutated(dbc, domainagg.CityEvent{Kind: domainagg.CityUpdated, Old: old, New: &updated})
		if err != nil {
			return err
		}
		fresh, err := a.deps.Cities.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if fresh == nil {
			fresh = &updated
		}
		out = domainagg.CityWriteResult{City: fresh, Countries: pops}
		return nil
	})
	return a.committed(op, out, err)
}

func (a *cityAggregate) DeleteCity(ctx context.Context, id uint) (domainagg.CityWriteResult, error) {
	const op = "Geo.City.DeleteCity"
	var out domainagg.CityWriteResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if id == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing city id", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		old, err := a.deps.Cities.LockByID(dbc, id)
		if err != nil {
			return err
		}
		if old == nil {
			return domainagg.NotFound(op, "city", id)
		}
		if _, err := a.deps.Countries.LockByID(dbc, old.CountryID); err != nil {
			return err
		}
		affected, err := a.deps.Cities.Delete(dbc, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domainagg.NotFound(op, "city", id)
		}
		pops, err := a.onCityMutated(dbc, domainagg.CityEvent{Kind: domainagg.CityDeleted, Old: old})
		if err != nil {
			return err
		}
		out = domainagg.CityWriteResult{City: old, Countries: pops}
		return nil
	})
	return a.committed(op, out, err)
}

func (a *cityAggregate) RecomputeCountry(ctx context.Context, countryID uint) (domainagg.CountryPopulation, error) {
	const op = "Geo.City.RecomputeCountry"
	var out domainagg.CountryPopulation
	if err := a.configured(op); err != nil {
		return out, err
	}
	if countryID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing country id", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Countries.LockByID(dbc, countryID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "country", countryID)
		}
		pops, err := a.recompute(dbc, []uint{countryID})
		if err != nil {
			return err
		}
		if len(pops) == 1 {
			out = pops[0]
		}
		return nil
	})
	return out, err
}

func (a *cityAggregate) RecomputeAll(ctx context.Context, batchSize int) (domainagg.RecomputeAllResult, error) {
	const op = "Geo.City.RecomputeAll"
	var out domainagg.RecomputeAllResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if batchSize <= 0 {
		batchSize = 200
	}

	var after uint
	for {
		ids, err := a.deps.Countries.ListIDsAfter(dbctx.Context{Ctx: ctx}, after, batchSize)
		if err != nil {
			return out, MapError(op, err)
		}
		if len(ids) == 0 {
			return out, nil
		}
		var scanned, changed int
		err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
			scanned, changed = 0, 0
			rows, err := a.deps.Countries.LockByIDs(dbc, ids)
			if err != nil {
				return err
			}
			for _, row := range rows {
				sum, err := a.deps.Cities.SumPopulationByCountry(dbc, row.ID)
				if err != nil {
					return err
				}
				scanned++
				if sum == row.Population {
					continue
				}
				if err := a.deps.Countries.UpdateFields(dbc, row.ID, map[string]interface{}{"population": sum}); err != nil {
					return err
				}
				changed++
			}
			return nil
		})
		if err != nil {
			return out, err
		}
		out.Scanned += scanned
		out.Changed += changed
		after = ids[len(ids)-1]
		a.deps.Base.Log.Debug("recomputed country batch", "after_id", after, "scanned", scanned, "changed", changed)
	}
}

// onCityMutated refreshes every country a city event touched. Callers hold the transaction.
func (a *cityAggregate) onCityMutated(dbc dbctx.Context, ev domainagg.CityEvent) ([]domainagg.CountryPopulation, error) {
	if dbc.Tx == nil {
		return nil, InvariantError(fmt.Sprintf("city %s event outside a transaction", ev.Kind))
	}
	return a.recompute(dbc, ev.AffectedCountries())
}

// recompute locks the countries in ascending id order and rewrites their population from
// their cities. A country that no longer exists is skipped.
func (a *cityAggregate) recompute(dbc dbctx.Context, countryIDs []uint) ([]domainagg.CountryPopulation, error) {
	if len(countryIDs) == 0 {
		return nil, nil
	}
	locked, err := a.deps.Countries.LockByIDs(dbc, countryIDs)
	if err != nil {
		return nil, err
	}
	out := make([]domainagg.CountryPopulation, 0, len(locked))
	for _, row := range locked {
		affected, err := a.deps.Countries.RecomputePopulation(dbc, row.ID)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			continue
		}
		sum, err := a.deps.Cities.SumPopulationByCountry(dbc, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domainagg.CountryPopulation{CountryID: row.ID, Population: sum})
	}
	return out, nil
}

func containsCountry(rows []*geo.Country, id uint) bool {
	for _, row := range rows {
		if row != nil && row.ID == id {
			return true
		}
	}
	return false
}
