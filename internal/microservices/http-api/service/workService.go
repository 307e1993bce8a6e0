package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/validators"
)

type WorkService interface {
	List(ctx context.Context, filter repository.WorkFilter, page int) (*dto.Page[dto.WorkResponse], error)
	Get(ctx context.Context, id int64) (*dto.WorkResponse, error)
	Create(ctx context.Context, req dto.CreateWorkDTO) (*dto.WorkResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateWorkDTO) (*dto.WorkResponse, error)
	Delete(ctx context.Context, id int64) error
}

type workService struct {
	workRepo     repository.WorkRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewWorkService(
	workRepo repository.WorkRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	logger *slog.Logger,
) WorkService {
	return &workService{
		workRepo:     workRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *workService) List(ctx context.Context, filter repository.WorkFilter, page int) (*dto.Page[dto.WorkResponse], error) {
	list, total, err := s.workRepo.List(ctx, filter, page, dto.PageSize)
	if err != nil {
		return nil, err
	}
	if err := checkPage(page, total); err != nil {
		return nil, err
	}
	return dto.NewPage(dto.MapSlice(list, dto.WorkFromModel), total, page, dto.PageSize), nil
}

func (s *workService) Get(ctx context.Context, id int64) (*dto.WorkResponse, error) {
	w, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "id", "title not found")
	}
	resp := dto.WorkFromModel(w)
	return &resp, nil
}

func (s *workService) Create(ctx context.Context, req dto.CreateWorkDTO) (*dto.WorkResponse, error) {
	if req.Year == nil {
		return nil, apperr.Validation("year", "this field is required")
	}
	w := &models.Work{Description: req.Description}
	if err := s.applyFields(w, &req.Name, req.Year); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	w.CategoryID = categoryID

	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	if err := s.workRepo.Create(ctx, w, genreIDs); err != nil {
		return nil, err
	}

	s.logger.Info("title created", slog.Int64("id", w.ID), slog.String("name", w.Name))
	return s.Get(ctx, w.ID)
}

// Update applies only the fields present in req. A nil genre list keeps the
// current genres and an empty category slug detaches the category.
func (s *workService) Update(ctx context.Context, id int64, req dto.UpdateWorkDTO) (*dto.WorkResponse, error) {
	w, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "id", "title not found")
	}

	if err := s.applyFields(w, req.Name, req.Year); err != nil {
		return nil, err
	}
	if req.Description != nil {
		w.Description = req.Description
	}
	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		w.CategoryID = categoryID
	}

	var genreIDs []int64
	if req.Genre != nil {
		if genreIDs, err = s.resolveGenres(ctx, req.Genre); err != nil {
			return nil, err
		}
		if genreIDs == nil {
			genreIDs = []int64{}
		}
	}

	if err := s.workRepo.Update(ctx, w, genreIDs); err != nil {
		return nil, notFound(err, "id", "title not found")
	}

	s.logger.Info("title updated", slog.Int64("id", id))
	return s.Get(ctx, id)
}

func (s *workService) Delete(ctx context.Context, id int64) error {
	if err := s.workRepo.Delete(ctx, id); err != nil {
		return notFound(err, "id", "title not found")
	}
	s.logger.Info("title deleted", slog.Int64("id", id))
	return nil
}

// applyFields validates and sets name and year. The year is checked on every
// write so a stored future year cannot survive an edit.
func (s *workService) applyFields(w *models.Work, name *string, year *int) error {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := validators.ValidateName("name", trimmed); err != nil {
			return err
		}
		w.Name = trimmed
	}
	if year != nil {
		w.Year = *year
	}
	return validators.ValidateYear(w.Year, s.now())
}

func (s *workService) resolveCategory(ctx context.Context, slug *string) (*int64, error) {
	if slug == nil || strings.TrimSpace(*slug) == "" {
		return nil, nil
	}
	c, err := s.categoryRepo.GetBySlug(ctx, strings.TrimSpace(*slug))
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Validation("category", "unknown category slug "+*slug)
		}
		return nil, err
	}
	return &c.ID, nil
}

func (s *workService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]int64, len(genres))
	for _, g := range genres {
		bySlug[g.Slug] = g.ID
	}
	ids := make([]int64, 0, len(slugs))
	for _, sl := range slugs {
		id, ok := bySlug[sl]
		if !ok {
			return nil, apperr.Validation("genre", "unknown genre slug "+sl)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
