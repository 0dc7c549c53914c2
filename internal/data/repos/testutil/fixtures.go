package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/domain/geo"
)

func SeedContinent(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *geo.Continent {
	tb.Helper()
	c := &geo.Continent{
		Name:        name,
		Description: "continent " + name,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed continent: %v", err)
	}
	return c
}

func SeedCountry(tb testing.TB, ctx context.Context, tx *gorm.DB, continentID uint, name, language string, population int64) *geo.Country {
	tb.Helper()
	c := &geo.Country{
		Name:             name,
		Population:       population,
		OfficialLanguage: language,
		Currency:         "XXX",
		ContinentID:      continentID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed country: %v", err)
	}
	return c
}

// SeedCountries inserts n countries named prefix-1..prefix-n.
func SeedCountries(tb testing.TB, ctx context.Context, tx *gorm.DB, continentID uint, prefix, language string, n int) []*geo.Country {
	tb.Helper()
	out := make([]*geo.Country, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, SeedCountry(tb, ctx, tx, continentID, fmt.Sprintf("%s-%d", prefix, i), language, 0))
	}
	return out
}

// SeedCity inserts a city directly, bypassing the population rollup.
func SeedCity(tb testing.TB, ctx context.Context, tx *gorm.DB, countryID uint, name string, population int64) *geo.City {
	tb.Helper()
	c := &geo.City{
		Name:       name,
		Population: population,
		CountryID:  countryID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed city: %v", err)
	}
	return c
}

func CountryPopulation(tb testing.TB, ctx context.Context, db *gorm.DB, countryID uint) int64 {
	tb.Helper()
	var c geo.Country
	if err := db.WithContext(ctx).Where("id = ?", countryID).First(&c).Error; err != nil {
		tb.Fatalf("load country %d: %v", countryID, err)
	}
	return c.Population
}
