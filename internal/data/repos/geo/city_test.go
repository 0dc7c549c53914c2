package geo

import (
	"context"
	"testing"

	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

func TestCityRepoListFilters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewCityRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	america := testutil.SeedContinent(t, ctx, db, "America")
	portugal := testutil.SeedCountry(t, ctx, db, europe.ID, "Portugal", "pt", 0)
	spain := testutil.SeedCountry(t, ctx, db, europe.ID, "Spain", "es", 0)
	brazil := testutil.SeedCountry(t, ctx, db, america.ID, "Brazil", "pt", 0)
	lisbon := testutil.SeedCity(t, ctx, db, portugal.ID, "Lisbon", 10)
	madrid := testutil.SeedCity(t, ctx, db, spain.ID, "Madrid", 20)
	testutil.SeedCity(t, ctx, db, brazil.ID, "Recife", 30)

	rows, total, err := repo.List(dbc, types.CityFilter{ContinentID: &europe.ID}, types.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List by continent: %v", err)
	}
	if total != 2 || len(rows) != 2 || rows[0].ID != lisbon.ID || rows[1].ID != madrid.ID {
		t.Fatalf("continent filter: unexpected total=%d rows=%+v", total, rows)
	}
	if rows[0].Country == nil || rows[0].Country.ID != portugal.ID {
		t.Fatalf("expected country preloaded, got %+v", rows[0].Country)
	}

	rows, total, err = repo.List(dbc, types.CityFilter{ContinentID: &europe.ID, CountryID: &spain.ID}, types.PageRequest{})
	if err != nil {
		t.Fatalf("List by continent+country: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != madrid.ID {
		t.Fatalf("conjunction: unexpected total=%d rows=%+v", total, rows)
	}

	rows, total, err = repo.List(dbc, types.CityFilter{ContinentID: &america.ID, CountryID: &spain.ID}, types.PageRequest{})
	if err != nil {
		t.Fatalf("List disjoint: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("disjoint filters: want empty, got total=%d", total)
	}
}

func TestCityRepoSumAndCount(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewCityRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	portugal := testutil.SeedCountry(t, ctx, db, europe.ID, "Portugal", "pt", 0)
	empty := testutil.SeedCountry(t, ctx, db, europe.ID, "Empty", "pt", 0)
	testutil.SeedCity(t, ctx, db, portugal.ID, "Lisbon", 10)
	testutil.SeedCity(t, ctx, db, portugal.ID, "Porto", 20)

	if sum, err := repo.SumPopulationByCountry(dbc, portugal.ID); err != nil || sum != 30 {
		t.Fatalf("SumPopulationByCountry: want=30 got=%d err=%v", sum, err)
	}
	if sum, err := repo.SumPopulationByCountry(dbc, empty.ID); err != nil || sum != 0 {
		t.Fatalf("SumPopulationByCountry empty: want=0 got=%d err=%v", sum, err)
	}
	if n, err := repo.CountByCountry(dbc, portugal.ID); err != nil || n != 2 {
		t.Fatalf("CountByCountry: want=2 got=%d err=%v", n, err)
	}
	if n, err := repo.Count(dbc); err != nil || n != 2 {
		t.Fatalf("Count: want=2 got=%d err=%v", n, err)
	}
}
