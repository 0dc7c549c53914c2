package geo

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/atlas-backend/internal/platform/dbctx"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type ContinentRepo interface {
	Create(dbc dbctx.Context, row *types.Continent) (*types.Continent, error)
	// InsertIfAbsent inserts name unless a continent with that name exists. It reports whether a row was written.
	InsertIfAbsent(dbc dbctx.Context, name, description string) (bool, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Continent, error)
	GetByIDWithCountries(dbc dbctx.Context, id uint) (*types.Continent, error)
	GetByName(dbc dbctx.Context, name string) (*types.Continent, error)
	Exists(dbc dbctx.Context, id uint) (bool, error)

	LockByID(dbc dbctx.Context, id uint) (*types.Continent, error)

	List(dbc dbctx.Context, page types.PageRequest) ([]*types.Continent, int64, error)
	Count(dbc dbctx.Context) (int64, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uint) (int64, error)
}

type continentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContinentRepo(db *gorm.DB, baseLog *logger.Logger) ContinentRepo {
	return &continentRepo{db: db, log: baseLog.With("repo", "ContinentRepo")}
}

func (r *continentRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctxutil.Default(dbc.Ctx))
}

func (r *continentRepo) Create(dbc dbctx.Context, row *types.Continent) (*types.Continent, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.tx(dbc).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *continentRepo) InsertIfAbsent(dbc dbctx.Context, name, description string) (bool, error) {
	row := &types.Continent{Name: name, Description: description}
	res := r.tx(dbc).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *continentRepo) GetByID(dbc dbctx.Context, id uint) (*types.Continent, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Continent
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *continentRepo) GetByIDWithCountries(dbc dbctx.Context, id uint) (*types.Continent, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Continent
	err := r.tx(dbc).
		Preload("Countries", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
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

func (r *continentRepo) GetByName(dbc dbctx.Context, name string) (*types.Continent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var row types.Continent
	if err := r.tx(dbc).Where("name = ?", name).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *continentRepo) Exists(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := r.tx(dbc).Model(&types.Continent{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *continentRepo) LockByID(dbc dbctx.Context, id uint) (*types.Continent, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Continent
	if err := lockingQuery(r.tx(dbc)).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *continentRepo) List(dbc dbctx.Context, page types.PageRequest) ([]*types.Continent, int64, error) {
	page = page.Normalize()
	var total int64
	if err := r.tx(dbc).Model(&types.Continent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Continent
	err := r.tx(dbc).
		Preload("Countries", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *continentRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	if err := r.tx(dbc).Model(&types.Continent{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *continentRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).Model(&types.Continent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *continentRepo) Delete(dbc dbctx.Context, id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	res := r.tx(dbc).Where("id = ?", id).Delete(&types.Continent{})
	return res.RowsAffected, res.Error
}
