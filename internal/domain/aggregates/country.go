package aggregates

import (
	"context"

	"github.com/yungbote/atlas-backend/internal/domain/geo"
)

var CountryAggregateContract = Contract{
	Name:             "Geo.CountryAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Invariant:        "Every country references an existing continent; a country with cities is never deleted.",
}

// CountryAggregate owns country writes and their referential checks.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodePreconditionFailed, CodeRetryable, CodeInternal.
type CountryAggregate interface {
	Aggregate

	// CreateCountry inserts a country under an existing continent.
	CreateCountry(ctx context.Context, in CountryInput) (*geo.Country, error)

	// UpdateCountry replaces scalar fields. The supplied population is ignored once the country has cities.
	UpdateCountry(ctx context.Context, id uint, in CountryInput) (CountryUpdateResult, error)

	// DeleteCountry removes a country without cities.
	DeleteCountry(ctx context.Context, id uint) error

	// LinkToContinent moves a country under another existing continent.
	LinkToContinent(ctx context.Context, continentID, countryID uint) (*geo.Country, error)
}

type CountryInput struct {
	Name             string
	Population       int64
	OfficialLanguage string
	Currency         string
	ContinentID      uint
	FlagURL          *string
	GDPPerCapita     *float64
	Inflation        *float64
}

type CountryUpdateResult struct {
	Country *geo.Country
	// PopulationDerived is true when the stored population came from the city rollup.
	PopulationDerived bool
}
