package repository

import (
	"context"
	"strings"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingColumn averages review scores at read time
const ratingColumn = "(SELECT AVG(reviews.score) FROM reviews WHERE reviews.work_id = works.id) AS rating"

type WorkFilter struct {
	Name     string
	Year     *int
	Category string
	Genre    string
}

type WorkRepository interface {
	List(ctx context.Context, filter WorkFilter, page, pageSize int) ([]models.Work, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Work, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Create inserts the work and its genre rows in one transaction.
	Create(ctx context.Context, w *models.Work, genreIDs []int64) error
	// Update saves the work columns, genreIDs replaces the genre rows unless nil.
	Update(ctx context.Context, w *models.Work, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type workRepository struct {
	db *gorm.DB
}

func NewWorkRepository(db *gorm.DB) WorkRepository {
	return &workRepository{db: db}
}

func (r *workRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select("works.*, " + ratingColumn).
		Preload("Category").
		Preload("WorkGenres", func(db *gorm.DB) *gorm.DB { return db.Order("work_genres.id asc") }).
		Preload("WorkGenres.Genre")
}

func (f WorkFilter) scope(db *gorm.DB) *gorm.DB {
	if name := strings.TrimSpace(f.Name); name != "" {
		db = db.Where("LOWER(works.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if f.Year != nil {
		db = db.Where("works.year = ?", *f.Year)
	}
	if f.Category != "" {
		db = db.Where("works.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		db = db.Where(`EXISTS (SELECT 1 FROM work_genres wg JOIN genres g ON g.id = wg.genre_id
			WHERE wg.work_id = works.id AND g.slug = ?)`, f.Genre)
	}
	return db
}

func (r *workRepository) List(ctx context.Context, filter WorkFilter, page, pageSize int) ([]models.Work, int64, error) {
	var list []models.Work
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Work{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, wrapError("count works", err)
	}

	err := r.db.WithContext(ctx).
		Scopes(r.withDetails, filter.scope).
		Order("works.id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error
	if err != nil {
		return nil, 0, wrapError("list works", err)
	}
	return list, total, nil
}

func (r *workRepository) GetByID(ctx context.Context, id int64) (*models.Work, error) {
	var w models.Work
	if err := r.db.WithContext(ctx).Scopes(r.withDetails).Where("works.id = ?", id).First(&w).Error; err != nil {
		return nil, wrapError("get work", err)
	}
	return &w, nil
}

func (r *workRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Work{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapError("check work", err)
	}
	return count > 0, nil
}

func (r *workRepository) Create(ctx context.Context, w *models.Work, genreIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(w).Error; err != nil {
			return err
		}
		return replaceGenres(tx, w.ID, genreIDs)
	})
	return wrapError("create work", err)
}

func (r *workRepository) Update(ctx context.Context, w *models.Work, genreIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Work{}).Where("id = ?", w.ID).Updates(map[string]any{
			"name":        w.Name,
			"year":        w.Year,
			"description": w.Description,
			"category_id": w.CategoryID,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if genreIDs == nil {
			return nil
		}
		if err := tx.Where("work_id = ?", w.ID).Delete(&models.WorkGenre{}).Error; err != nil {
			return err
		}
		return replaceGenres(tx, w.ID, genreIDs)
	})
	return wrapError("update work", err)
}

// Delete removes the work with its genre rows, reviews and their comments.
func (r *workRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("work_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_id = ?", id).Delete(&models.WorkGenre{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Work{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrapError("delete work", err)
}

func replaceGenres(tx *gorm.DB, workID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	rows := make([]models.WorkGenre, 0, len(genreIDs))
	seen := make(map[int64]struct{}, len(genreIDs))
	for _, id := range genreIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		genreID := id
		rows = append(rows, models.WorkGenre{WorkID: workID, GenreID: &genreID})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}
