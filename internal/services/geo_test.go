package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/aggregates"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/config"
)

type geoFixture struct {
	db         *gorm.DB
	continents ContinentService
	countries  CountryService
	cities     CityService
	stats      StatsService
	imports    CountryImportService
}

func newGeoFixture(t *testing.T, stats config.StatsConfig) *geoFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	base := aggregates.BaseDeps{DB: db, Log: log}
	continentRepo := repos.NewContinentRepo(db, log)
	countryRepo := repos.NewCountryRepo(db, log)
	cityRepo := repos.NewCityRepo(db, log)

	resolver := aggregates.NewContinentResolver(aggregates.ContinentResolverDeps{Base: base, Continents: continentRepo})
	countryAgg := aggregates.NewCountryAggregate(aggregates.CountryAggregateDeps{
		Base: base, Continents: continentRepo, Countries: countryRepo, Cities: cityRepo,
	})
	continentAgg := aggregates.NewContinentAggregate(aggregates.ContinentAggregateDeps{
		Base: base, Continents: continentRepo, Countries: countryRepo, Resolver: resolver,
	})
	cityAgg := aggregates.NewCityAggregate(aggregates.CityAggregateDeps{Base: base, Cities: cityRepo, Countries: countryRepo})

	return &geoFixture{
		db:         db,
		continents: NewContinentService(log, continentRepo, continentAgg, countryAgg, resolver),
		countries:  NewCountryService(log, countryRepo, countryAgg, resolver),
		cities:     NewCityService(log, cityRepo, cityAgg),
		stats:      NewStatsService(log, continentRepo, countryRepo, cityRepo, stats),
		imports:    NewCountryImportService(log, countryAgg, resolver, nil, 4),
	}
}

func TestCountryServiceResolvesContinentByName(t *testing.T) {
	f := newGeoFixture(t, config.StatsConfig{})
	ctx := context.Background()

	brazil, err := f.countries.Create(ctx, CountryWrite{
		CountryInput:  domainagg.CountryInput{Name: "Brazil", Population: 200, OfficialLanguage: "Portuguese", Currency: "BRL"},
		ContinentName: "South America",
	})
	if err != nil {
		t.Fatalf("Create Brazil: %v", err)
	}
	chile, err := f.countries.Create(ctx, CountryWrite{
		CountryInput:  domainagg.CountryInput{Name: "Chile", Population: 19},
		ContinentName: " South America ",
	})
	if err != nil {
		t.Fatalf("Create Chile: %v", err)
	}
	if brazil.ContinentID == 0 || brazil.ContinentID != chile.ContinentID {
		t.Fatalf("continent ids: brazil=%d chile=%d", brazil.ContinentID, chile.ContinentID)
	}
	n, err := f.continents.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("continents: want=1 got=%d", n)
	}

	_, err = f.countries.Create(ctx, CountryWrite{CountryInput: domainagg.CountryInput{Name: "Nowhere"}})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing continent: want validation got=%v", err)
	}
	_, err = f.countries.Create(ctx, CountryWrite{CountryInput: domainagg.CountryInput{Name: "Atlantis", ContinentID: 9999}})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown continent id: want not_found got=%v", err)
	}
	var count int64
	if err := f.db.Model(&geo.Country{}).Where("name = ?", "Atlantis").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected country must not be stored")
	}
}

func TestServicesGetAndPageDefaults(t *testing.T) {
	f := newGeoFixture(t, config.StatsConfig{})
	ctx := context.Background()

	europe, err := f.continents.Create(ctx, domainagg.ContinentInput{Name: "Europe", Description: "Old world"})
	if err != nil {
		t.Fatalf("Create continent: %v", err)
	}
	for _, name := range []string{"Portugal", "Spain", "France"} {
		if _, err := f.countries.Create(ctx, CountryWrite{CountryInput: domainagg.CountryInput{Name: name, ContinentID: europe.ID}}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	page, err := f.countries.List(ctx, geo.CountryFilter{}, geo.PageRequest{Page: 0, PageSize: 500})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 || page.Limit != geo.MaxPageSize || page.Total != 3 || page.TotalPages != 1 {
		t.Fatalf("page meta: %+v", page)
	}

	continents, err := f.continents.List(ctx, geo.PageRequest{})
	if err != nil {
		t.Fatalf("List continents: %v", err)
	}
	if len(continents.Data) != 1 || len(continents.Data[0].Countries) != 3 {
		t.Fatalf("continent page: %+v", continents.Data)
	}

	if _, err := f.continents.Get(ctx, 404); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("continent get missing: want not_found got=%v", err)
	}
	if _, err := f.countries.Get(ctx, 404); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("country get missing: want not_found got=%v", err)
	}
	if _, err := f.cities.Get(ctx, 404); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("city get missing: want not_found got=%v", err)
	}
}

func TestCityServiceRollupVisibleThroughCountryGet(t *testing.T) {
	f := newGeoFixture(t, config.StatsConfig{})
	ctx := context.Background()

	asia, err := f.continents.Create(ctx, domainagg.ContinentInput{Name: "Asia"})
	if err != nil {
		t.Fatalf("Create continent: %v", err)
	}
	japan, err := f.countries.Create(ctx, CountryWrite{CountryInput: domainagg.CountryInput{Name: "Japan", Population: 1, ContinentID: asia.ID}})
	if err != nil {
		t.Fatalf("Create country: %v", err)
	}
	if _, err := f.cities.Create(ctx, domainagg.CityInput{Name: "Tokyo", Population: 14, CountryID: japan.ID, Latitude: 35.68, Longitude: 139.69}); err != nil {
		t.Fatalf("Create Tokyo: %v", err)
	}
	if _, err := f.cities.Create(ctx, domainagg.CityInput{Name: "Osaka", Population: 3, CountryID: japan.ID}); err != nil {
		t.Fatalf("Create Osaka: %v", err)
	}

	detail, err := f.countries.Get(ctx, japan.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Population != 17 || len(detail.Cities) != 2 || detail.Continent == nil {
		t.Fatalf("detail: population=%d cities=%d continent=%v", detail.Population, len(detail.Cities), detail.Continent)
	}

	filtered, err := f.cities.List(ctx, geo.CityFilter{ContinentID: &asia.ID}, geo.PageRequest{Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("List cities: %v", err)
	}
	if filtered.Total != 2 || filtered.TotalPages != 2 || len(filtered.Data) != 1 {
		t.Fatalf("city page: %+v", filtered)
	}
}

func TestStatsServiceTopNullPolicy(t *testing.T) {
	ctx := context.Background()
	gdp := func(v float64) *float64 { return &v }

	seed := func(t *testing.T, f *geoFixture) {
		t.Helper()
		africa, err := f.continents.Create(ctx, domainagg.ContinentInput{Name: "Africa"})
		if err != nil {
			t.Fatalf("Create continent: %v", err)
		}
		rows := []domainagg.CountryInput{
			{Name: "A", Population: 1, GDPPerCapita: gdp(100)},
			{Name: "B", Population: 2, GDPPerCapita: gdp(300)},
			{Name: "C", Population: 3},
			{Name: "D", Population: 4, GDPPerCapita: gdp(200)},
		}
		for _, in := range rows {
			in.ContinentID = africa.ID
			if _, err := f.countries.Create(ctx, CountryWrite{CountryInput: in}); err != nil {
				t.Fatalf("Create %s: %v", in.Name, err)
			}
		}
	}

	t.Run("exclude", func(t *testing.T) {
		f := newGeoFixture(t, config.StatsConfig{TopN: 5, NullPolicy: config.NullPolicyExclude})
		seed(t, f)
		top, err := f.stats.Top(ctx, repos.IndicatorGDPPerCapita)
		if err != nil {
			t.Fatalf("Top: %v", err)
		}
		if names := countryNames(top); names != "B,D,A" {
			t.Fatalf("order: want=B,D,A got=%s", names)
		}
	})

	t.Run("last", func(t *testing.T) {
		f := newGeoFixture(t, config.StatsConfig{TopN: 5, NullPolicy: config.NullPolicyLast})
		seed(t, f)
		top, err := f.stats.Top(ctx, repos.IndicatorGDPPerCapita)
		if err != nil {
			t.Fatalf("Top: %v", err)
		}
		if names := countryNames(top); names != "B,D,A,C" {
			t.Fatalf("order: want=B,D,A,C got=%s", names)
		}
		summary, err := f.stats.Summary(ctx)
		if err != nil {
			t.Fatalf("Summary: %v", err)
		}
		if summary.Continents != 1 || summary.Countries != 4 || summary.Cities != 0 || summary.TotalPopulation != 10 {
			t.Fatalf("summary: %+v", summary)
		}
	})

	t.Run("unknown indicator", func(t *testing.T) {
		f := newGeoFixture(t, config.StatsConfig{})
		if _, err := f.stats.Top(ctx, repos.Indicator("hdi")); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("want validation got=%v", err)
		}
	})
}

func TestCountryImportServiceReportsPerRecord(t *testing.T) {
	f := newGeoFixture(t, config.StatsConfig{})
	ctx := context.Background()

	records := []CountryRecord{
		{Name: "Kenya", Region: "Africa", Population: 50},
		{Name: "Ghana", Region: "Africa", Population: 30},
		{Name: "", Region: "Africa"},
		{Name: "Fiji", Region: "Oceania", Population: 1},
		{Name: "Limbo", Region: "  "},
	}
	report, err := f.imports.Import(ctx, records)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Created != 3 || report.Failed != 2 {
		t.Fatalf("report: created=%d failed=%d results=%+v", report.Created, report.Failed, report.Results)
	}
	if report.Results[2].Code != string(domainagg.CodeValidation) || report.Results[4].Code != string(domainagg.CodeValidation) {
		t.Fatalf("failure codes: %+v / %+v", report.Results[2], report.Results[4])
	}
	if report.Results[0].ContinentID != report.Results[1].ContinentID {
		t.Fatalf("same region must resolve to one continent: %d vs %d", report.Results[0].ContinentID, report.Results[1].ContinentID)
	}
	n, err := f.continents.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("continents: want=2 got=%d", n)
	}
}

func TestCountryImportServiceSourceFailure(t *testing.T) {
	f := newGeoFixture(t, config.StatsConfig{})
	_, err := f.imports.ImportFrom(context.Background(), failingSource{})
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("want retryable got=%v", err)
	}
}

type failingSource struct{}

func (failingSource) FetchCountries(context.Context) ([]CountryRecord, error) {
	return nil, errors.New("provider unavailable")
}

func countryNames(rows []*geo.Country) string {
	out := ""
	for i, r := range rows {
		if i > 0 {
			out += ","
		}
		out += r.Name
	}
	return out
}
