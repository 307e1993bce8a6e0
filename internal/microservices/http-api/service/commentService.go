package service

import (
	"context"
	"log/slog"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

type CommentService interface {
	List(ctx context.Context, workID, reviewID int64, page int) (*dto.Page[dto.CommentResponse], error)
	Get(ctx context.Context, workID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor policy.Actor, workID, reviewID int64, text string) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor policy.Actor, workID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, workID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
	logger      *slog.Logger
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository, logger *slog.Logger) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo, logger: logger}
}

func (s *commentService) List(ctx context.Context, workID, reviewID int64, page int) (*dto.Page[dto.CommentResponse], error) {
	if err := s.requireReview(ctx, workID, reviewID); err != nil {
		return nil, err
	}
	list, total, err := s.commentRepo.ListByReview(ctx, reviewID, page, dto.PageSize)
	if err != nil {
		return nil, err
	}
	if err := checkPage(page, total); err != nil {
		return nil, err
	}
	return dto.NewPage(dto.MapSlice(list, dto.CommentFromModel), total, page, dto.PageSize), nil
}

func (s *commentService) Get(ctx context.Context, workID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, workID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, "id", "comment not found")
	}
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, actor policy.Actor, workID, reviewID int64, text string) (*dto.CommentResponse, error) {
	if err := policy.Check(actor, policy.ResourceComment, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, workID, reviewID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text", "this field is required")
	}

	comment := &models.Comment{ReviewID: reviewID, AuthorID: actor.UserID(), Text: text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = models.User{ID: actor.UserID(), Username: actor.Username()}

	s.logger.Info("comment created", slog.Int64("review_id", reviewID), slog.Int64("comment_id", comment.ID))
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, actor policy.Actor, workID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	comment, err := s.load(ctx, actor, policy.ActionPartialUpdate, workID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, apperr.Validation("text", "this field may not be blank")
		}
		comment.Text = text
		if err := s.commentRepo.Update(ctx, comment); err != nil {
			return nil, err
		}
	}
	resp := dto.CommentFromModel(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, actor policy.Actor, workID, reviewID, commentID int64) error {
	if _, err := s.load(ctx, actor, policy.ActionDestroy, workID, reviewID, commentID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return notFound(err, "id", "comment not found")
	}
	s.logger.Info("comment deleted", slog.Int64("comment_id", commentID), slog.String("by", actor.Username()))
	return nil
}

func (s *commentService) load(ctx context.Context, actor policy.Actor, action policy.Action, workID, reviewID, commentID int64) (*models.Comment, error) {
	if err := policy.Check(actor, policy.ResourceComment, action); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, workID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, "id", "comment not found")
	}
	if err := policy.CheckObject(actor, policy.ResourceComment, action, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// requireReview checks the review exists under the given title.
func (s *commentService) requireReview(ctx context.Context, workID, reviewID int64) error {
	if _, err := s.reviewRepo.GetByID(ctx, workID, reviewID); err != nil {
		return notFound(err, "review_id", "review not found")
	}
	return nil
}
