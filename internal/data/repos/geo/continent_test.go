package geo

import (
	"context"
	"testing"

	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
)

func TestContinentRepoInsertIfAbsent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewContinentRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	created, err := repo.InsertIfAbsent(dbc, "Oceania", "first")
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if !created {
		t.Fatalf("expected first insert to create")
	}
	created, err = repo.InsertIfAbsent(dbc, "Oceania", "second")
	if err != nil {
		t.Fatalf("InsertIfAbsent duplicate: %v", err)
	}
	if created {
		t.Fatalf("expected duplicate insert to be a no-op")
	}

	row, err := repo.GetByName(dbc, "Oceania")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if row == nil || row.Description != "first" {
		t.Fatalf("GetByName: unexpected row %+v", row)
	}
	if n, _ := repo.Count(dbc); n != 1 {
		t.Fatalf("Count: want=1 got=%d", n)
	}
}

func TestContinentRepoListPreloadsCountries(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewContinentRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	europe := testutil.SeedContinent(t, ctx, db, "Europe")
	testutil.SeedContinent(t, ctx, db, "Asia")
	testutil.SeedCountry(t, ctx, db, europe.ID, "Portugal", "pt", 1)

	rows, total, err := repo.List(dbc, types.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("List: want=2 got total=%d len=%d", total, len(rows))
	}
	if len(rows[0].Countries) != 1 || rows[0].Countries[0].Name != "Portugal" {
		t.Fatalf("expected Portugal preloaded under Europe, got %+v", rows[0].Countries)
	}

	missing, err := repo.GetByID(dbc, 9999)
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID missing: want nil got %+v", missing)
	}
}
