package geo

import (
	"context"
	"testing"

	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

func TestCountryRepoListPagination(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewCountryRepo(db, testutil.Logger(t))

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	seeded := testutil.SeedCountries(t, ctx, db, europe.ID, "country", "pt", 25)

	rows, total, err := repo.List(dbctx.Context{Ctx: ctx}, types.CountryFilter{}, types.PageRequest{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 25 {
		t.Fatalf("total: want=25 got=%d", total)
	}
	if len(rows) != 10 {
		t.Fatalf("page size: want=10 got=%d", len(rows))
	}
	if rows[0].ID != seeded[10].ID || rows[9].ID != seeded[19].ID {
		t.Fatalf("page 2 bounds: want=[%d..%d] got=[%d..%d]", seeded[10].ID, seeded[19].ID, rows[0].ID, rows[9].ID)
	}
	if rows[0].Continent == nil || rows[0].Continent.ID != europe.ID {
		t.Fatalf("expected continent preloaded, got %+v", rows[0].Continent)
	}
	if pages := types.TotalPages(total, 10); pages != 3 {
		t.Fatalf("total pages: want=3 got=%d", pages)
	}

	last, _, err := repo.List(dbctx.Context{Ctx: ctx}, types.CountryFilter{}, types.PageRequest{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(last) != 5 {
		t.Fatalf("page 3 size: want=5 got=%d", len(last))
	}
}

func TestCountryRepoListFilterConjunction(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewCountryRepo(db, testutil.Logger(t))

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	america := testutil.SeedContinent(t, ctx, db, "America")
	portugal := testutil.SeedCountry(t, ctx, db, europe.ID, "Portugal", "pt", 10)
	testutil.SeedCountry(t, ctx, db, europe.ID, "Spain", "es", 10)
	testutil.SeedCountry(t, ctx, db, america.ID, "Brazil", "pt", 10)

	lang := "pt"
	rows, total, err := repo.List(dbctx.Context{Ctx: ctx}, types.CountryFilter{
		ContinentID:      &europe.ID,
		OfficialLanguage: &lang,
	}, types.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != portugal.ID {
		t.Fatalf("conjunction: want only Portugal, got total=%d rows=%+v", total, rows)
	}

	rows, total, err = repo.List(dbctx.Context{Ctx: ctx}, types.CountryFilter{OfficialLanguage: &lang}, types.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List language only: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("language only: want=2 got total=%d len=%d", total, len(rows))
	}
}

func TestCountryRepoRecomputePopulation(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewCountryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	portugal := testutil.SeedCountry(t, ctx, db, europe.ID, "Portugal", "pt", 999)
	testutil.SeedCity(t, ctx, db, portugal.ID, "Lisbon", 10)
	testutil.SeedCity(t, ctx, db, portugal.ID, "Porto", 20)

	rows, err := repo.RecomputePopulation(dbc, portugal.ID)
	if err != nil {
		t.Fatalf("RecomputePopulation: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows affected: want=1 got=%d", rows)
	}
	if got := testutil.CountryPopulation(t, ctx, db, portugal.ID); got != 30 {
		t.Fatalf("population: want=30 got=%d", got)
	}

	rows, err = repo.RecomputePopulation(dbc, 424242)
	if err != nil {
		t.Fatalf("RecomputePopulation missing: %v", err)
	}
	if rows != 0 {
		t.Fatalf("missing country rows affected: want=0 got=%d", rows)
	}
}

func TestCountryRepoTopNullPolicy(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewCountryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	low := testutil.SeedCountry(t, ctx, db, europe.ID, "Low", "x", 1)
	high := testutil.SeedCountry(t, ctx, db, europe.ID, "High", "x", 1)
	none := testutil.SeedCountry(t, ctx, db, europe.ID, "None", "x", 1)
	if err := repo.UpdateFields(dbc, low.ID, map[string]interface{}{"gdp_per_capita": 100.0}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.UpdateFields(dbc, high.ID, map[string]interface{}{"gdp_per_capita": 900.0}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	excluded, err := repo.Top(dbc, IndicatorGDPPerCapita, 5, false)
	if err != nil {
		t.Fatalf("Top exclude: %v", err)
	}
	if len(excluded) != 2 || excluded[0].ID != high.ID || excluded[1].ID != low.ID {
		t.Fatalf("exclude policy: unexpected order %+v", excluded)
	}

	last, err := repo.Top(dbc, IndicatorGDPPerCapita, 5, true)
	if err != nil {
		t.Fatalf("Top last: %v", err)
	}
	if len(last) != 3 || last[0].ID != high.ID || last[2].ID != none.ID {
		t.Fatalf("last policy: unexpected order %+v", last)
	}

	if _, err := repo.Top(dbc, Indicator("name; DROP TABLE country"), 5, false); err == nil {
		t.Fatalf("expected unsupported indicator error")
	}
}

func TestCountryRepoSetContinentAndCounts(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewCountryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	asia := testutil.SeedContinent(t, ctx, db, "Asia")
	a := testutil.SeedCountry(t, ctx, db, europe.ID, "A", "x", 5)
	b := testutil.SeedCountry(t, ctx, db, europe.ID, "B", "x", 7)

	n, err := repo.SetContinent(dbc, []uint{a.ID, b.ID}, asia.ID)
	if err != nil {
		t.Fatalf("SetContinent: %v", err)
	}
	if n != 2 {
		t.Fatalf("SetContinent rows: want=2 got=%d", n)
	}
	if c, _ := repo.CountByContinent(dbc, asia.ID); c != 2 {
		t.Fatalf("CountByContinent: want=2 got=%d", c)
	}
	if total, _ := repo.TotalPopulation(dbc); total != 12 {
		t.Fatalf("TotalPopulation: want=12 got=%d", total)
	}
}
