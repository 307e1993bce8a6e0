package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	// Create fails with ErrDuplicate when the author already reviewed the work.
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID int64) error
	GetByID(ctx context.Context, workID, reviewID int64) (*models.Review, error)
	ListByWork(ctx context.Context, workID int64, page, pageSize int) ([]models.Review, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return wrapError("create review", err)
	}
	return nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", review.ID).Updates(map[string]any{
		"text":  review.Text,
		"score": review.Score,
	}).Error
	return wrapError("update review", err)
}

// Delete removes the review and its comments
func (r *reviewRepository) Delete(ctx context.Context, reviewID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", reviewID).Delete(&models.Review{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrapError("delete review", err)
}

// GetByID only finds the review under the given work
func (r *reviewRepository) GetByID(ctx context.Context, workID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND work_id = ?", reviewID, workID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, wrapError("get review", err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByWork(ctx context.Context, workID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("work_id = ?", workID).Count(&total).Error; err != nil {
		return nil, 0, wrapError("count reviews", err)
	}

	err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Preload("Author").
		Order("pub_date DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, wrapError("list reviews", err)
	}
	return reviews, total, nil
}
