package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
	"yamdb/internal/validators"
)

type ReviewService interface {
	List(ctx context.Context, workID int64, page int) (*dto.Page[dto.ReviewResponse], error)
	Get(ctx context.Context, workID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor policy.Actor, workID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor policy.Actor, workID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor policy.Actor, workID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	workRepo   repository.WorkRepository
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	workRepo repository.WorkRepository,
	logger *slog.Logger,
	m *metrics.Metrics,
) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, workRepo: workRepo, logger: logger, metrics: m}
}

func (s *reviewService) List(ctx context.Context, workID int64, page int) (*dto.Page[dto.ReviewResponse], error) {
	if err := s.requireWork(ctx, workID); err != nil {
		return nil, err
	}
	list, total, err := s.reviewRepo.ListByWork(ctx, workID, page, dto.PageSize)
	if err != nil {
		return nil, err
	}
	if err := checkPage(page, total); err != nil {
		return nil, err
	}
	return dto.NewPage(dto.MapSlice(list, dto.ReviewFromModel), total, page, dto.PageSize), nil
}

func (s *reviewService) Get(ctx context.Context, workID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, workID, reviewID)
	if err != nil {
		return nil, notFound(err, "id", "review not found")
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

// Create relies on the (work, author) unique index, a second review by the
// same author is reported as a conflict.
func (s *reviewService) Create(ctx context.Context, actor policy.Actor, workID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := policy.Check(actor, policy.ResourceReview, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := s.requireWork(ctx, workID); err != nil {
		return nil, err
	}

	if req.Score == nil {
		return nil, apperr.Validation("score", "this field is required")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Validation("text", "this field is required")
	}
	if err := validators.ValidateScore(*req.Score); err != nil {
		return nil, err
	}

	review := &models.Review{
		WorkID:   workID,
		AuthorID: actor.UserID(),
		Text:     text,
		Score:    *req.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("", "you have already reviewed this title")
		}
		return nil, err
	}
	review.Author = models.User{ID: actor.UserID(), Username: actor.Username()}

	s.metrics.ReviewCreated()
	s.logger.Info("review created",
		slog.Int64("work_id", workID),
		slog.Int64("review_id", review.ID),
		slog.String("author", actor.Username()),
	)
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor policy.Actor, workID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.load(ctx, actor, policy.ActionPartialUpdate, workID, reviewID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, apperr.Validation("text", "this field may not be blank")
		}
		review.Text = text
	}
	if req.Score != nil {
		if err := validators.ValidateScore(*req.Score); err != nil {
			return nil, err
		}
		review.Score = *req.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor policy.Actor, workID, reviewID int64) error {
	if _, err := s.load(ctx, actor, policy.ActionDestroy, workID, reviewID); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return notFound(err, "id", "review not found")
	}
	s.logger.Info("review deleted", slog.Int64("review_id", reviewID), slog.String("by", actor.Username()))
	return nil
}

// load runs the coarse check first so anonymous callers get 401 before any
// lookup, then the ownership check on the fetched review.
func (s *reviewService) load(ctx context.Context, actor policy.Actor, action policy.Action, workID, reviewID int64) (*models.Review, error) {
	if err := policy.Check(actor, policy.ResourceReview, action); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, workID, reviewID)
	if err != nil {
		return nil, notFound(err, "id", "review not found")
	}
	if err := policy.CheckObject(actor, policy.ResourceReview, action, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) requireWork(ctx context.Context, workID int64) error {
	ok, err := s.workRepo.Exists(ctx, workID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("title_id", "title not found")
	}
	return nil
}
