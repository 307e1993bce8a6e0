package service

import (
	"context"
	"strings"
	"testing"

	"yamdb/internal/apperr"
	"yamdb/internal/logging"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      dto.CreateCategoryDTO
		wantSlug string
		wantErr  apperr.Kind
	}{
		{"explicit slug", dto.CreateCategoryDTO{Name: "Films", Slug: "films"}, "films", ""},
		{"derived slug", dto.CreateCategoryDTO{Name: "Short Films"}, "short-films", ""},
		{"bad slug", dto.CreateCategoryDTO{Name: "Films", Slug: "fi lms"}, "", apperr.KindValidation},
		{"blank name", dto.CreateCategoryDTO{Name: "  "}, "", apperr.KindValidation},
		{"long name", dto.CreateCategoryDTO{Name: strings.Repeat("a", 257), Slug: "a"}, "", apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCategoryRepository)
			svc := NewCategoryService(repo, logging.Discard())
			repo.On("Create", ctx, mock.Anything).Return(nil)

			resp, err := svc.Create(ctx, tt.req)
			if tt.wantErr != "" {
				assert.True(t, apperr.IsKind(err, tt.wantErr))
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, resp.Slug)
		})
	}
}

func TestCategoryService_DerivedSlugIsTruncated(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, logging.Discard())
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Create(context.Background(), dto.CreateCategoryDTO{Name: strings.Repeat("word ", 20)})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Slug), 50)
	assert.False(t, strings.HasSuffix(resp.Slug, "-"))
}

func TestCategoryService_DuplicateAndDelete(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, logging.Discard())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)
	repo.On("Delete", ctx, "missing").Return(repository.ErrNotFound)
	repo.On("Delete", ctx, "films").Return(nil)

	_, err := svc.Create(ctx, dto.CreateCategoryDTO{Name: "Films", Slug: "films"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
	assert.Equal(t, "slug", appErr.Field)

	assert.True(t, apperr.IsKind(svc.Delete(ctx, "missing"), apperr.KindNotFound))
	assert.NoError(t, svc.Delete(ctx, "films"))
}

func TestGenreService_ListAndCreate(t *testing.T) {
	repo := new(MockGenreRepository)
	svc := NewGenreService(repo, logging.Discard())
	ctx := context.Background()

	repo.On("List", ctx, "Drama", 1, dto.PageSize).Return([]models.Genre{{ID: 1, Name: "Drama", Slug: "drama"}}, int64(1), nil)
	repo.On("Create", ctx, mock.MatchedBy(func(g *models.Genre) bool { return g.Slug == "sci-fi" })).Return(nil)

	page, err := svc.List(ctx, " Drama ", 1)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "drama", page.Data[0].Slug)

	resp, err := svc.Create(ctx, dto.CreateGenreDTO{Name: "Sci-Fi"})
	require.NoError(t, err)
	assert.Equal(t, "sci-fi", resp.Slug)
}
