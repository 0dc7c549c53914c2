package aggregates

import (
	"context"

	"github.com/yungbote/atlas-backend/internal/domain/geo"
)

var CityAggregateContract = Contract{
	Name:             "Geo.CityAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Invariant:        "country.population equals the sum of its cities' populations after every city write.",
}

// CityAggregate owns the invariant country.population == SUM(city.population) for every country.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeRetryable, CodeInternal.
type CityAggregate interface {
	Aggregate

	// CreateCity inserts a city under an existing country and refreshes that country's population.
	CreateCity(ctx context.Context, in CityInput) (CityWriteResult, error)

	// UpdateCity replaces a city's scalar fields. Moving it to another country refreshes both countries.
	UpdateCity(ctx context.Context, id uint, in CityInput) (CityWriteResult, error)

	// DeleteCity removes a city and refreshes the population of the country it belonged to.
	DeleteCity(ctx context.Context, id uint) (CityWriteResult, error)

	// RecomputeCountry rewrites one country's population from its cities.
	RecomputeCountry(ctx context.Context, countryID uint) (CountryPopulation, error)

	// RecomputeAll rewrites every country's population from its cities.
	RecomputeAll(ctx context.Context, batchSize int) (RecomputeAllResult, error)
}

type CityInput struct {
	Name       string
	Population int64
	Latitude   float64
	Longitude  float64
	CountryID  uint
}

type CountryPopulation struct {
	CountryID  uint
	Population int64
}

type CityWriteResult struct {
	City      *geo.City
	Countries []CountryPopulation
}

type RecomputeAllResult struct {
	Scanned int
	Changed int
}

// CityEventKind tags a committed-or-about-to-commit city mutation.
type CityEventKind string

const (
	CityInserted CityEventKind = "inserted"
	CityUpdated  CityEventKind = "updated"
	CityDeleted  CityEventKind = "deleted"
)

// CityEvent describes one city mutation. Old is set for updates and deletes, New for inserts and updates.
type CityEvent struct {
	Kind CityEventKind
	Old  *geo.City
	New  *geo.City
}

// AffectedCountries returns the distinct country ids whose population an event changes, ascending.
func (e CityEvent) AffectedCountries() []uint {
	var ids []uint
	switch e.Kind {
	case CityInserted:
		if e.New != nil {
			ids = append(ids, e.New.CountryID)
		}
	case CityDeleted:
		if e.Old != nil {
			ids = append(ids, e.Old.CountryID)
		}
	case CityUpdated:
		if e.New != nil {
			ids = append(ids, e.New.CountryID)
		}
		if e.Old != nil && (e.New == nil || e.Old.CountryID != e.New.CountryID) {
			ids = append(ids, e.Old.CountryID)
		}
	}
	out := ids[:0]
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	if len(out) == 2 && out[0] > out[1] {
		out[0], out[1] = out[1], out[0]
	}
	return out
}
