package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/event-management/internal/category"
	categoryDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/category"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*category.Category, error) {
	var rows []*categoryDatamodel.EventCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*category.Category, len(rows))
	for i, row := range rows {
		out[i] = category.FromDataModel(row)
	}
	return out, nil
}

// GetByName returns nil, nil when no row matches.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*category.Category, error) {
	var row categoryDatamodel.EventCategory
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return category.FromDataModel(&row), nil
}

func (r *CategoryRepository) Ensure(ctx context.Context, c *category.Category) error {
	row := category.ToDataModel(c)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(row).Error
}

func (r *CategoryRepository) SetActive(ctx context.Context, name string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&categoryDatamodel.EventCategory{}).
		Where("name = ?", name).
		Update("is_active", active).Error
}
