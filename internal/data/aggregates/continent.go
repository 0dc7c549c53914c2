package aggregates

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

type ContinentAggregateDeps struct {
	Base BaseDeps

	Continents repos.ContinentRepo
	Countries  repos.CountryRepo
	// Resolver, when set, has its cached names dropped after renames and deletes.
	Resolver domainagg.ContinentResolver
}

type continentAggregate struct {
	deps ContinentAggregateDeps
}

func NewContinentAggregate(deps ContinentAggregateDeps) domainagg.ContinentAggregate {
	deps.Base = deps.Base.withDefaults()
	return &continentAggregate{deps: deps}
}

func (a *continentAggregate) Contract() domainagg.Contract {
	return domainagg.ContinentAggregateContract
}

func (a *continentAggregate) configured(op string) error {
	if a.deps.Continents == nil || a.deps.Countries == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "continent aggregate repos not configured", nil)
	}
	return nil
}

func (a *continentAggregate) CreateContinent(ctx context.Context, in domainagg.ContinentInput) (*geo.Continent, error) {
	const op = "Geo.Continent.CreateContinent"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing continent name", nil)
	}
	countryIDs := uniqueIDs(in.CountryIDs)

	var out *geo.Continent
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Continents.GetByName(dbc, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ConflictError(fmt.Sprintf("continent %q already exists", name))
		}
		row := &geo.Continent{Name: name, Description: strings.TrimSpace(in.Description)}
		if _, err := a.deps.Continents.Create(dbc, row); err != nil {
			return err
		}
		if len(countryIDs) > 0 {
			locked, err := a.deps.Countries.LockByIDs(dbc, countryIDs)
			if err != nil {
				return err
			}
			if len(locked) != len(countryIDs) {
				missing := missingIDs(countryIDs, locked)
				return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("countries not found: %v", missing), nil)
			}
			if _, err := a.deps.Countries.SetContinent(dbc, countryIDs, row.ID); err != nil {
				return err
			}
		}
		out, err = a.deps.Continents.GetByIDWithCountries(dbc, row.ID)
		return err
	})
	return out, err
}

func (a *continentAggregate) UpdateContinent(ctx context.Context, id uint, in domainagg.ContinentInput) (*geo.Continent, error) {
	const op = "Geo.Continent.UpdateContinent"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing continent id", nil)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing continent name", nil)
	}

	var (
		out     *geo.Continent
		oldName string
	)
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		current, err := a.deps.Continents.LockByID(dbc, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domainagg.NotFound(op, "continent", id)
		}
		oldName = current.Name
		if name != current.Name {
			clash, err := a.deps.Continents.GetByName(dbc, name)
			if err != nil {
				return err
			}
			if clash != nil && clash.ID != id {
				return ConflictError(fmt.Sprintf("continent %q already exists", name))
			}
		}
		if err := a.deps.Continents.UpdateFields(dbc, id, map[string]interface{}{
			"name":        name,
			"description": strings.TrimSpace(in.Description),
		}); err != nil {
			return err
		}
		out, err = a.deps.Continents.GetByID(dbc, id)
		return err
	})
	if err == nil && oldName != name {
		a.forget(ctx, oldName)
	}
	return out, err
}

func (a *continentAggregate) DeleteContinent(ctx context.Context, id uint) error {
	const op = "Geo.Continent.DeleteContinent"
	if err := a.configured(op); err != nil {
		return err
	}
	if id == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing continent id", nil)
	}

	var name string
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		current, err := a.deps.Continents.LockByID(dbc, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domainagg.NotFound(op, "continent", id)
		}
		name = current.Name
		countries, err := a.deps.Countries.CountByContinent(dbc, id)
		if err != nil {
			return err
		}
		if countries > 0 {
			return PreconditionError(fmt.Sprintf("continent %d still has %d countries", id, countries))
		}
		_, err = a.deps.Continents.Delete(dbc, id)
		return err
	})
	if err == nil {
		a.forget(ctx, name)
	}
	return err
}

func (a *continentAggregate) forget(ctx context.Context, name string) {
	if a.deps.Resolver != nil && strings.TrimSpace(name) != "" {
		a.deps.Resolver.Forget(ctx, name)
	}
}

// uniqueIDs drops zero and duplicate ids and sorts the rest ascending.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(want []uint, got []*geo.Country) []uint {
	found := make(map[uint]struct{}, len(got))
	for _, row := range got {
		found[row.ID] = struct{}{}
	}
	var out []uint
	for _, id := range want {
		if _, ok := found[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
