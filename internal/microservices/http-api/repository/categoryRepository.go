package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, slug string) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, name string, page, pageSize int) ([]models.Category, int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	return wrapError("create category", r.db.WithContext(ctx).Create(c).Error)
}

// Delete removes the category and detaches it from its works.
func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.Where("slug = ?", slug).First(&c).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Work{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
	return wrapError("delete category", err)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, wrapError("get category", err)
	}
	return &c, nil
}

// List pages through categories, name filters by exact match when set.
func (r *categoryRepository) List(ctx context.Context, name string, page, pageSize int) ([]models.Category, int64, error) {
	var list []models.Category
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Category{}).Scopes(nameEquals(name)).Count(&total).Error; err != nil {
		return nil, 0, wrapError("count categories", err)
	}

	err := r.db.WithContext(ctx).
		Scopes(nameEquals(name)).
		Order("id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error
	if err != nil {
		return nil, 0, wrapError("list categories", err)
	}
	return list, total, nil
}

func nameEquals(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if name == "" {
			return db
		}
		return db.Where("name = ?", name)
	}
}
