package aggregates

import (
	"context"

	"github.com/yungbote/atlas-backend/internal/domain/geo"
)

var ContinentAggregateContract = Contract{
	Name:             "Geo.ContinentAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Invariant:        "Continent names are unique; a continent with countries is never deleted.",
}

// ContinentAggregate owns explicit continent writes.
type ContinentAggregate interface {
	Aggregate

	// CreateContinent inserts a continent and moves the listed existing countries under it.
	CreateContinent(ctx context.Context, in ContinentInput) (*geo.Continent, error)

	UpdateContinent(ctx context.Context, id uint, in ContinentInput) (*geo.Continent, error)

	// DeleteContinent removes a continent without countries.
	DeleteContinent(ctx context.Context, id uint) error
}

type ContinentInput struct {
	Name        string
	Description string
	CountryIDs  []uint
}

var ContinentResolverContract = Contract{
	Name:             "Geo.ContinentResolver",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Invariant:        "One continent row per trimmed name, whatever the number of concurrent resolvers.",
}

// ContinentResolver maps a continent name to exactly one continent row, creating it when absent.
//
// Failures return *aggregates.Error with codes:
// CodeValidation (empty name), CodeConflict (row vanished on every attempt), CodeRetryable, CodeInternal.
type ContinentResolver interface {
	Aggregate

	Resolve(ctx context.Context, name string) (ResolveResult, error)

	// Forget drops any cached id for name.
	Forget(ctx context.Context, name string)
}

type ResolveResult struct {
	ContinentID uint
	Created     bool
}

// PlaceholderDescription is stored on continents created by resolution.
func PlaceholderDescription(name string) string {
	return "Continent created automatically for " + name
}
