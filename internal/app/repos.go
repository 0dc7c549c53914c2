package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type Repos struct {
	Continent repos.ContinentRepo
	Country   repos.CountryRepo
	City      repos.CityRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Continent: repos.NewContinentRepo(db, log),
		Country:   repos.NewCountryRepo(db, log),
		City:      repos.NewCityRepo(db, log),
	}
}
