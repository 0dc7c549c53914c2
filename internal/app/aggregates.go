package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/aggregates"
	"github.com/yungbote/atlas-backend/internal/data/cache"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/platform/config"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type Aggregates struct {
	Continent domainagg.ContinentAggregate
	Country   domainagg.CountryAggregate
	City      domainagg.CityAggregate
	Resolver  domainagg.ContinentResolver
}

func (a Aggregates) all() []domainagg.Aggregate {
	return []domainagg.Aggregate{a.Continent, a.Country, a.City, a.Resolver}
}

// checkContracts refuses to start when a wired aggregate does not own its write transactions.
func checkContracts(log *logger.Logger, aggs Aggregates) error {
	for _, agg := range aggs.all() {
		if agg == nil {
			continue
		}
		c := agg.Contract()
		log.Debug("aggregate contract", "name", c.Name, "tx", c.WriteTxOwnership, "reads", c.ReadPolicy)
	}
	if err := domainagg.CheckContracts(aggs.all()...); err != nil {
		return fmt.Errorf("aggregate contracts: %w", err)
	}
	return nil
}

func wireAggregates(
	db *gorm.DB,
	log *logger.Logger,
	cfg *config.Config,
	repos Repos,
	continentCache cache.ContinentCache,
	metrics *observability.Metrics,
) Aggregates {
	log.Info("Wiring aggregates...")
	base := aggregates.BaseDeps{
		DB:        db,
		Log:       log,
		Hooks:     aggregates.NewObservabilityHooks(metrics),
		TxTimeout: cfg.Rollup.TxTimeout,
	}
	resolver := aggregates.NewContinentResolver(aggregates.ContinentResolverDeps{
		Base:        base,
		Continents:  repos.Continent,
		Cache:       continentCache,
		Observer:    metrics,
		MaxAttempts: cfg.Resolution.MaxAttempts,
	})
	return Aggregates{
		Resolver: resolver,
		Continent: aggregates.NewContinentAggregate(aggregates.ContinentAggregateDeps{
			Base:       base,
			Continents: repos.Continent,
			Countries:  repos.Country,
			Resolver:   resolver,
		}),
		Country: aggregates.NewCountryAggregate(aggregates.CountryAggregateDeps{
			Base:       base,
			Continents: repos.Continent,
			Countries:  repos.Country,
			Cities:     repos.City,
		}),
		City: aggregates.NewCityAggregate(aggregates.CityAggregateDeps{
			Base:      base,
			Cities:    repos.City,
			Countries: repos.Country,
		}),
	}
}
