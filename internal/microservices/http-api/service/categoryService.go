package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/validators"

	"github.com/gosimple/slug"
)

type CategoryService interface {
	List(ctx context.Context, search string, page int) (*dto.Page[dto.CategoryResponse], error)
	Create(ctx context.Context, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) CategoryService {
	return &categoryService{repo: repo, logger: logger}
}

func (s *categoryService) List(ctx context.Context, search string, page int) (*dto.Page[dto.CategoryResponse], error) {
	list, total, err := s.repo.List(ctx, strings.TrimSpace(search), page, dto.PageSize)
	if err != nil {
		return nil, err
	}
	if err := checkPage(page, total); err != nil {
		return nil, err
	}
	return dto.NewPage(dto.MapSlice(list, dto.CategoryFromModel), total, page, dto.PageSize), nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	name, slugValue, err := catalogEntry(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}

	c := &models.Category{Name: name, Slug: slugValue}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, duplicateSlug(err)
	}

	s.logger.Info("category created", slog.String("slug", c.Slug))
	resp := dto.CategoryFromModel(c)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return notFound(err, "slug", "category not found")
	}
	s.logger.Info("category deleted", slog.String("slug", slug))
	return nil
}

// catalogEntry validates a name and slug pair shared by categories and
// genres. A missing slug is derived from the name.
func catalogEntry(name, slugValue string) (string, string, error) {
	name = strings.TrimSpace(name)
	if err := validators.ValidateName("name", name); err != nil {
		return "", "", err
	}

	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		slugValue = slug.Make(name)
		if len(slugValue) > validators.MaxSlugLength {
			slugValue = strings.TrimRight(slugValue[:validators.MaxSlugLength], "-")
		}
	}
	if err := validators.ValidateSlug(slugValue); err != nil {
		return "", "", err
	}
	return name, slugValue, nil
}

func duplicateSlug(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict("slug", "an entry with this slug already exists")
	}
	return err
}
