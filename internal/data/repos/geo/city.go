package geo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type CityRepo interface {
	Create(dbc dbctx.Context, row *types.City) (*types.City, error)

	GetByID(dbc dbctx.Context, id uint) (*types.City, error)
	LockByID(dbc dbctx.Context, id uint) (*types.City, error)

	List(dbc dbctx.Context, filter types.CityFilter, page types.PageRequest) ([]*types.City, int64, error)
	Count(dbc dbctx.Context) (int64, error)
	CountByCountry(dbc dbctx.Context, countryID uint) (int64, error)
	SumPopulationByCountry(dbc dbctx.Context, countryID uint) (int64, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uint) (int64, error)
}

type cityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCityRepo(db *gorm.DB, baseLog *logger.Logger) CityRepo {
	return &cityRepo{db: db, log: baseLog.With("repo", "CityRepo")}
}

func (r *cityRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *cityRepo) Create(dbc dbctx.Context, row *types.City) (*types.City, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.tx(dbc).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *cityRepo) GetByID(dbc dbctx.Context, id uint) (*types.City, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.City
	if err := r.tx(dbc).Preload("Country").Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *cityRepo) LockByID(dbc dbctx.Context, id uint) (*types.City, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.City
	if err := lockingQuery(r.tx(dbc)).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

// filtered applies the city filter. The continent constraint goes through the owning country.
func (r *cityRepo) filtered(dbc dbctx.Context, filter types.CityFilter) *gorm.DB {
	q := r.tx(dbc).Model(&types.City{})
	if filter.CountryID != nil {
		q = q.Where("city.country_id = ?", *filter.CountryID)
	}
	if filter.ContinentID != nil {
		q = q.Where("city.country_id IN (?)",
			r.tx(dbc).Model(&types.Country{}).Select("id").Where("continent_id = ?", *filter.ContinentID))
	}
	return q
}

func (r *cityRepo) List(dbc dbctx.Context, filter types.CityFilter, page types.PageRequest) ([]*types.City, int64, error) {
	page = page.Normalize()
	var total int64
	if err := r.filtered(dbc, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.City
	err := r.filtered(dbc, filter).
		Preload("Country").
		Order("city.id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *cityRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	if err := r.tx(dbc).Model(&types.City{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *cityRepo) CountByCountry(dbc dbctx.Context, countryID uint) (int64, error) {
	var count int64
	if err := r.tx(dbc).Model(&types.City{}).Where("country_id = ?", countryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *cityRepo) SumPopulationByCountry(dbc dbctx.Context, countryID uint) (int64, error) {
	var total int64
	err := r.tx(dbc).
		Model(&types.City{}).
		Select("COALESCE(SUM(population), 0)").
		Where("country_id = ?", countryID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *cityRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).Model(&types.City{}).Where("id = ?", id).Updates(updates).Error
}

func (r *cityRepo) Delete(dbc dbctx.Context, id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	res := r.tx(dbc).Where("id = ?", id).Delete(&types.City{})
	return res.RowsAffected, res.Error
}
