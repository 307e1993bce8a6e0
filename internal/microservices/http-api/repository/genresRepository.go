package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(ctx context.Context, g *models.Genre) error
	Delete(ctx context.Context, slug string) error
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	List(ctx context.Context, name string, page, pageSize int) ([]models.Genre, int64, error)
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, g *models.Genre) error {
	return wrapError("create genre", r.db.WithContext(ctx).Create(g).Error)
}

// Delete removes the genre, the join rows keep existing with a null genre.
func (r *genreRepository) Delete(ctx context.Context, slug string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Genre
		if err := tx.Where("slug = ?", slug).First(&g).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.WorkGenre{}).Where("genre_id = ?", g.ID).Update("genre_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&g).Error
	})
	return wrapError("delete genre", err)
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, wrapError("get genre", err)
	}
	return &g, nil
}

// GetBySlugs returns the genres found, callers compare lengths to spot unknown slugs.
func (r *genreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("id asc").Find(&list).Error; err != nil {
		return nil, wrapError("get genres", err)
	}
	return list, nil
}

func (r *genreRepository) List(ctx context.Context, name string, page, pageSize int) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Genre{}).Scopes(nameEquals(name)).Count(&total).Error; err != nil {
		return nil, 0, wrapError("count genres", err)
	}

	err := r.db.WithContext(ctx).
		Scopes(nameEquals(name)).
		Order("id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error
	if err != nil {
		return nil, 0, wrapError("list genres", err)
	}
	return list, total, nil
}
