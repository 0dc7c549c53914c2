package geo

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

// Indicator names a nullable numeric column that can be ranked.
type Indicator string

const (
	IndicatorGDPPerCapita Indicator = "gdp_per_capita"
	IndicatorInflation    Indicator = "inflation"
)

func (i Indicator) Valid() bool {
	return i == IndicatorGDPPerCapita || i == IndicatorInflation
}

type CountryRepo interface {
	Create(dbc dbctx.Context, row *types.Country) (*types.Country, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Country, error)
	// GetDetail loads the country with its continent and cities.
	GetDetail(dbc dbctx.Context, id uint) (*types.Country, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Country, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)

	LockByID(dbc dbctx.Context, id uint) (*types.Country, error)
	// LockByIDs locks rows in ascending id order.
	LockByIDs(dbc dbctx.Context, ids []uint) ([]*types.Country, error)

	List(dbc dbctx.Context, filter types.CountryFilter, page types.PageRequest) ([]*types.Country, int64, error)
	ListIDsAfter(dbc dbctx.Context, afterID uint, limit int) ([]uint, error)
	Count(dbc dbctx.Context) (int64, error)
	CountByContinent(dbc dbctx.Context, continentID uint) (int64, error)
	TotalPopulation(dbc dbctx.Context) (int64, error)
	Top(dbc dbctx.Context, indicator Indicator, n int, nullsLast bool) ([]*types.Country, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	SetContinent(dbc dbctx.Context, ids []uint, continentID uint) (int64, error)
	// RecomputePopulation sets population to the sum of the country's cities and returns rows affected.
	RecomputePopulation(dbc dbctx.Context, id uint) (int64, error)
	Delete(dbc dbctx.Context, id uint) (int64, error)
}

type countryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCountryRepo(db *gorm.DB, baseLog *logger.Logger) CountryRepo {
	return &countryRepo{db: db, log: baseLog.With("repo", "CountryRepo")}
}

func (r *countryRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *countryRepo) Create(dbc dbctx.Context, row *types.Country) (*types.Country, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.tx(dbc).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *countryRepo) GetByID(dbc dbctx.Context, id uint) (*types.Country, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Country
	if err := r.tx(dbc).Preload("Continent").Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *countryRepo) GetDetail(dbc dbctx.Context, id uint) (*types.Country, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Country
	err := r.tx(dbc).
		Preload("Continent").
		Preload("Cities", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *countryRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Country, error) {
	var out []*types.Country
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *countryRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := r.tx(dbc).Model(&types.Country{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *countryRepo) LockByID(dbc dbctx.Context, id uint) (*types.Country, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Country
	if err := lockingQuery(r.tx(dbc)).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *countryRepo) LockByIDs(dbc dbctx.Context, ids []uint) ([]*types.Country, error) {
	var out []*types.Country
	if len(ids) == 0 {
		return out, nil
	}
	if err := lockingQuery(r.tx(dbc)).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *countryRepo) filtered(dbc dbctx.Context, filter types.CountryFilter) *gorm.DB {
	q := r.tx(dbc).Model(&types.Country{})
	if filter.ContinentID != nil {
		q = q.Where("continent_id = ?", *filter.ContinentID)
	}
	if filter.OfficialLanguage != nil {
		q = q.Where("official_language = ?", *filter.OfficialLanguage)
	}
	return q
}

func (r *countryRepo) List(dbc dbctx.Context, filter types.CountryFilter, page types.PageRequest) ([]*types.Country, int64, error) {
	page = page.Normalize()
	var total int64
	if err := r.filtered(dbc, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Country
	err := r.filtered(dbc, filter).
		Preload("Continent").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *countryRepo) ListIDsAfter(dbc dbctx.Context, afterID uint, limit int) ([]uint, error) {
	if limit <= 0 {
		limit = 500
	}
	var ids []uint
	err := r.tx(dbc).
		Model(&types.Country{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *countryRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	if err := r.tx(dbc).Model(&types.Country{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *countryRepo) CountByContinent(dbc dbctx.Context, continentID uint) (int64, error) {
	var count int64
	if err := r.tx(dbc).Model(&types.Country{}).Where("continent_id = ?", continentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *countryRepo) TotalPopulation(dbc dbctx.Context) (int64, error) {
	var total int64
	if err := r.tx(dbc).Model(&types.Country{}).Select("COALESCE(SUM(population), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *countryRepo) Top(dbc dbctx.Context, indicator Indicator, n int, nullsLast bool) ([]*types.Country, error) {
	if !indicator.Valid() {
		return nil, fmt.Errorf("unsupported indicator %q", indicator)
	}
	if n <= 0 {
		n = 5
	}
	col := string(indicator)
	q := r.tx(dbc).Preload("Continent")
	if nullsLast {
		q = q.Order(col + " IS NULL ASC")
	} else {
		q = q.Where(col + " IS NOT NULL")
	}
	var out []*types.Country
	if err := q.Order(col + " DESC").Order("id ASC").Limit(n).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *countryRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).Model(&types.Country{}).Where("id = ?", id).Updates(updates).Error
}

func (r *countryRepo) SetContinent(dbc dbctx.Context, ids []uint, continentID uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.tx(dbc).Model(&types.Country{}).Where("id IN ?", ids).Update("continent_id", continentID)
	return res.RowsAffected, res.Error
}

func (r *countryRepo) RecomputePopulation(dbc dbctx.Context, id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	res := r.tx(dbc).Exec(
		`UPDATE country SET population = (SELECT COALESCE(SUM(population), 0) FROM city WHERE country_id = ?) WHERE id = ?`,
		id, id,
	)
	return res.RowsAffected, res.Error
}

func (r *countryRepo) Delete(dbc dbctx.Context, id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	res := r.tx(dbc).Where("id = ?", id).Delete(&types.Country{})
	return res.RowsAffected, res.Error
}
