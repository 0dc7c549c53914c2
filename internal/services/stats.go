package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/atlas-backend/internal/data/aggregates"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/config"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type StatsSummary struct {
	Continents      int64 `json:"continentes"`
	Countries       int64 `json:"paises"`
	Cities          int64 `json:"cidades"`
	TotalPopulation int64 `json:"populacao_total"`
}

type StatsService interface {
	Summary(ctx context.Context) (StatsSummary, error)
	TotalPopulation(ctx context.Context) (int64, error)
	// Top ranks countries by indicator, highest first.
	Top(ctx context.Context, indicator repos.Indicator) ([]*geo.Country, error)
}

type statsService struct {
	log        *logger.Logger
	continents repos.ContinentRepo
	countries  repos.CountryRepo
	cities     repos.CityRepo
	cfg        config.StatsConfig
}

func NewStatsService(
	log *logger.Logger,
	continents repos.ContinentRepo,
	countries repos.CountryRepo,
	cities repos.CityRepo,
	cfg config.StatsConfig,
) StatsService {
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	if !cfg.NullPolicy.Valid() {
		cfg.NullPolicy = config.NullPolicyExclude
	}
	return &statsService{
		log:        log.With("service", "StatsService"),
		continents: continents,
		countries:  countries,
		cities:     cities,
		cfg:        cfg,
	}
}

func (s *statsService) Summary(ctx context.Context) (StatsSummary, error) {
	const op = "StatsService.Summary"
	var out StatsSummary
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		out.Continents, err = s.continents.Count(dbc)
		return err
	})
	g.Go(func() (err error) {
		out.Countries, err = s.countries.Count(dbc)
		return err
	})
	g.Go(func() (err error) {
		out.Cities, err = s.cities.Count(dbc)
		return err
	})
	g.Go(func() (err error) {
		out.TotalPopulation, err = s.countries.TotalPopulation(dbc)
		return err
	})
	if err := g.Wait(); err != nil {
		return StatsSummary{}, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *statsService) TotalPopulation(ctx context.Context) (int64, error) {
	total, err := s.countries.TotalPopulation(dbctx.Context{Ctx: ctx})
	if err != nil {
		return 0, aggregates.MapError("StatsService.TotalPopulation", err)
	}
	return total, nil
}

func (s *statsService) Top(ctx context.Context, indicator repos.Indicator) ([]*geo.Country, error) {
	const op = "StatsService.Top"
	if !indicator.Valid() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "unsupported indicator "+string(indicator), nil)
	}
	rows, err := s.countries.Top(dbctx.Context{Ctx: ctx}, indicator, s.cfg.TopN, s.cfg.NullPolicy == config.NullPolicyLast)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if rows == nil {
		rows = []*geo.Country{}
	}
	return rows, nil
}
