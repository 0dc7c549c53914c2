package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/repos/geo"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type ContinentRepo = geo.ContinentRepo
type CountryRepo = geo.CountryRepo
type CityRepo = geo.CityRepo

type Indicator = geo.Indicator

const (
	IndicatorGDPPerCapita = geo.IndicatorGDPPerCapita
	IndicatorInflation    = geo.IndicatorInflation
)

func NewContinentRepo(db *gorm.DB, baseLog *logger.Logger) ContinentRepo {
	return geo.NewContinentRepo(db, baseLog)
}
func NewCountryRepo(db *gorm.DB, baseLog *logger.Logger) CountryRepo {
	return geo.NewCountryRepo(db, baseLog)
}
func NewCityRepo(db *gorm.DB, baseLog *logger.Logger) CityRepo {
	return geo.NewCityRepo(db, baseLog)
}
