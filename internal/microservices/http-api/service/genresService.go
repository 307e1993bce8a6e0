package service

import (
	"context"
	"log/slog"
	"strings"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type GenreService interface {
	List(ctx context.Context, search string, page int) (*dto.Page[dto.GenreResponse], error)
	Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo   repository.GenreRepository
	logger *slog.Logger
}

func NewGenreService(repo repository.GenreRepository, logger *slog.Logger) GenreService {
	return &genreService{repo: repo, logger: logger}
}

func (s *genreService) List(ctx context.Context, search string, page int) (*dto.Page[dto.GenreResponse], error) {
	list, total, err := s.repo.List(ctx, strings.TrimSpace(search), page, dto.PageSize)
	if err != nil {
		return nil, err
	}
	if err := checkPage(page, total); err != nil {
		return nil, err
	}
	return dto.NewPage(dto.MapSlice(list, dto.GenreFromModel), total, page, dto.PageSize), nil
}

func (s *genreService) Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	name, slugValue, err := catalogEntry(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}

	g := &models.Genre{Name: name, Slug: slugValue}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, duplicateSlug(err)
	}

	s.logger.Info("genre created", slog.String("slug", g.Slug))
	resp := dto.GenreFromModel(g)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return notFound(err, "slug", "genre not found")
	}
	s.logger.Info("genre deleted", slog.String("slug", slug))
	return nil
}
