package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/apperr"
	"yamdb/internal/logging"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mocks struct {
	auth       *MockAuthService
	users      *MockUserService
	categories *MockCategoryService
	genres     *MockGenreService
	works      *MockWorkService
	reviews    *MockReviewService
	comments   *MockCommentService
	pingErr    error
}

func setupRouter() (*gin.Engine, *mocks) {
	gin.SetMode(gin.TestMode)
	m := &mocks{
		auth:       new(MockAuthService),
		users:      new(MockUserService),
		categories: new(MockCategoryService),
		genres:     new(MockGenreService),
		works:      new(MockWorkService),
		reviews:    new(MockReviewService),
		comments:   new(MockCommentService),
	}
	r := handler.NewRouter(handler.RouterConfig{
		Auth:       m.auth,
		Users:      m.users,
		Categories: m.categories,
		Genres:     m.genres,
		Works:      m.works,
		Reviews:    m.reviews,
		Comments:   m.comments,
		Logger:     logging.Discard(),
		Metrics:    metrics.New(),
		Ping:       func(context.Context) error { return m.pingErr },
	})
	return r, m
}

func perform(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error
}

func TestSignup(t *testing.T) {
	r, m := setupRouter()

	m.auth.On("Register", mock.Anything, "rea", "rea@example.com", "192.0.2.1").
		Return(&dto.SignupResponse{Username: "rea", Email: "rea@example.com"}, nil).Once()
	w := perform(r, http.MethodPost, "/v1/auth/signup/", "", map[string]string{"username": "rea", "email": "rea@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"rea","email":"rea@example.com"}`, w.Body.String())

	m.auth.On("Register", mock.Anything, "rea", "taken@example.com", mock.Anything).
		Return(nil, apperr.Conflict("username", "username is already registered with another email")).Once()
	w = perform(r, http.MethodPost, "/v1/auth/signup/", "", map[string]string{"username": "rea", "email": "taken@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "conflict", decodeError(t, w).Code)

	// a brand-new account from a client that just opened one
	m.auth.On("Register", mock.Anything, "fast", "fast@example.com", mock.Anything).
		Return(nil, apperr.Throttled("try again later")).Once()
	w = perform(r, http.MethodPost, "/v1/auth/signup/", "", map[string]string{"username": "fast", "email": "fast@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = perform(r, http.MethodPost, "/v1/auth/signup/", "", map[string]string{"username": "rea"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decodeError(t, w).Field)
}

func TestToken(t *testing.T) {
	r, m := setupRouter()

	m.auth.On("IssueToken", mock.Anything, "rea", "GOODCODE00").Return("signed.jwt.token", nil)
	m.auth.On("IssueToken", mock.Anything, "rea", "wrong").Return("", apperr.InvalidCredentials("confirmation_code", "invalid confirmation code"))
	m.auth.On("IssueToken", mock.Anything, "ghost", "x").Return("", apperr.NotFound("username", "user not found"))

	w := perform(r, http.MethodPost, "/v1/auth/token/", "", map[string]string{"username": "rea", "confirmation_code": "GOODCODE00"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access":"signed.jwt.token"}`, w.Body.String())

	w = perform(r, http.MethodPost, "/v1/auth/token/", "", map[string]string{"username": "rea", "confirmation_code": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, w).Code)

	w = perform(r, http.MethodPost, "/v1/auth/token/", "", map[string]string{"username": "ghost", "confirmation_code": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidBearerToken(t *testing.T) {
	r, _ := setupRouter()

	w := perform(r, http.MethodGet, "/v1/titles/", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not_authenticated", decodeError(t, w).Code)
}

func TestUsers_AdminOnly(t *testing.T) {
	r, m := setupRouter()
	m.users.On("List", mock.Anything, "rea", 1).Return(dto.NewPage([]dto.UserResponse{{Username: "rea"}}, 1, 1, dto.PageSize), nil)

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/v1/users/", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/v1/users/", "mod-token", nil).Code)

	w := perform(r, http.MethodGet, "/v1/users/?search=rea", "admin-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var page dto.Page[dto.UserResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "rea", page.Data[0].Username)

	m.users.On("Delete", mock.Anything, "rea").Return(nil)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/v1/users/rea/", "admin-token", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, perform(r, http.MethodPut, "/v1/users/rea/", "admin-token", map[string]string{}).Code)
}

func TestUsers_Me(t *testing.T) {
	r, m := setupRouter()

	m.users.On("GetMe", mock.Anything, testActors["user-token"]).Return(&dto.UserResponse{Username: "rea", Role: "user"}, nil)
	m.users.On("UpdateMe", mock.Anything, testActors["user-token"], mock.MatchedBy(func(req dto.UpdateUserRequest) bool {
		return req.Role != nil && *req.Role == "admin"
	})).Return(nil, apperr.Permission("only an admin can change roles"))

	w := perform(r, http.MethodGet, "/v1/users/me/", "user-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"rea"`)

	w = perform(r, http.MethodPatch, "/v1/users/me/", "user-token", map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCategories(t *testing.T) {
	r, m := setupRouter()

	m.categories.On("List", mock.Anything, "", 1).Return(dto.NewPage([]dto.CategoryResponse{{Name: "Films", Slug: "films"}}, 1, 1, dto.PageSize), nil)
	m.categories.On("Create", mock.Anything, dto.CreateCategoryDTO{Name: "Books", Slug: "books"}).Return(&dto.CategoryResponse{Name: "Books", Slug: "books"}, nil)
	m.categories.On("Delete", mock.Anything, "films").Return(nil)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/v1/categories/", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/v1/categories/", "user-token", map[string]string{"name": "Books", "slug": "books"}).Code)
	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/v1/categories/", "admin-token", map[string]string{"name": "Books", "slug": "books"}).Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/v1/categories/films/", "admin-token", nil).Code)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodPut} {
		w := perform(r, method, "/v1/categories/films/", "admin-token", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "method_not_allowed", decodeError(t, w).Code)
	}
}

func TestGenres(t *testing.T) {
	r, m := setupRouter()

	m.genres.On("List", mock.Anything, "Drama", 2).Return(nil, apperr.NotFound("page", "invalid page"))

	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/v1/genres/?search=Drama&page=2", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodDelete, "/v1/genres/drama/", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, perform(r, http.MethodGet, "/v1/genres/drama/", "", nil).Code)
}

func TestTitles(t *testing.T) {
	r, m := setupRouter()

	year := 1995
	m.works.On("List", mock.Anything, repository.WorkFilter{Name: "heat", Year: &year, Genre: "drama"}, 1).
		Return(dto.NewPage([]dto.WorkResponse{{ID: 1, Name: "Heat", Year: 1995}}, 1, 1, dto.PageSize), nil)

	w := perform(r, http.MethodGet, "/v1/titles/?name=heat&year=1995&genre=drama", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/v1/titles/?year=soon", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "year", decodeError(t, w).Field)

	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/v1/titles/?page=abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/v1/titles/abc/", "", nil).Code)

	body := map[string]any{"name": "Heat", "year": 1995, "genre": []string{"drama"}, "category": "movie"}
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/v1/titles/", "mod-token", body).Code)

	m.works.On("Create", mock.Anything, mock.MatchedBy(func(req dto.CreateWorkDTO) bool {
		return req.Name == "Heat" && *req.Year == 1995 && *req.Category == "movie"
	})).Return(&dto.WorkResponse{ID: 2, Name: "Heat", Year: 1995}, nil)
	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/v1/titles/", "admin-token", body).Code)

	m.works.On("Update", mock.Anything, int64(2), mock.MatchedBy(func(req dto.UpdateWorkDTO) bool {
		return req.Category != nil && *req.Category == "" && req.Genre != nil && len(req.Genre) == 0
	})).Return(&dto.WorkResponse{ID: 2, Name: "Heat", Year: 1995}, nil)
	w = perform(r, http.MethodPut, "/v1/titles/2/", "admin-token", map[string]any{"name": "Heat", "year": 1995})
	assert.Equal(t, http.StatusOK, w.Code)

	m.works.On("Delete", mock.Anything, int64(2)).Return(nil)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/v1/titles/2/", "admin-token", nil).Code)
}

func TestReviews(t *testing.T) {
	r, m := setupRouter()

	m.reviews.On("Create", mock.Anything, testActors["user-token"], int64(1), mock.MatchedBy(func(req dto.CreateReviewDTO) bool {
		return req.Text == "great" && *req.Score == 9
	})).Return(&dto.ReviewResponse{ID: 3, Author: "rea", Text: "great", Score: 9}, nil).Once()

	w := perform(r, http.MethodPost, "/v1/titles/1/reviews/", "user-token", map[string]any{"text": "great", "score": 9})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"author":"rea"`)

	m.reviews.On("Create", mock.Anything, testActors["user-token"], int64(1), mock.Anything).
		Return(nil, apperr.Conflict("", "you have already reviewed this title")).Once()
	w = perform(r, http.MethodPost, "/v1/titles/1/reviews/", "user-token", map[string]any{"text": "again", "score": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/v1/titles/1/reviews/", "user-token", map[string]any{"text": "no score"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "score", decodeError(t, w).Field)

	m.reviews.On("Delete", mock.Anything, testActors["other-token"], int64(1), int64(3)).
		Return(apperr.Permission("only the author or a moderator can change this"))
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodDelete, "/v1/titles/1/reviews/3/", "other-token", nil).Code)

	m.reviews.On("Update", mock.Anything, testActors["mod-token"], int64(1), int64(3), mock.MatchedBy(func(req dto.UpdateReviewDTO) bool {
		return req.Score != nil && *req.Score == 1 && req.Text == nil
	})).Return(&dto.ReviewResponse{ID: 3, Score: 1}, nil)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPatch, "/v1/titles/1/reviews/3/", "mod-token", map[string]any{"score": 1}).Code)
}

func TestComments(t *testing.T) {
	r, m := setupRouter()

	m.comments.On("List", mock.Anything, int64(1), int64(3), 1).Return(dto.NewPage([]dto.CommentResponse{}, 0, 1, dto.PageSize), nil)
	m.comments.On("Create", mock.Anything, testActors["other-token"], int64(1), int64(3), "agreed").
		Return(&dto.CommentResponse{ID: 4, Author: "other", Text: "agreed"}, nil)
	m.comments.On("Delete", mock.Anything, testActors["user-token"], int64(1), int64(3), int64(4)).Return(nil)
	m.comments.On("Update", mock.Anything, testActors["other-token"], int64(1), int64(3), int64(4), dto.UpdateCommentDTO{}).
		Return(&dto.CommentResponse{ID: 4, Author: "other", Text: "agreed"}, nil)

	w := perform(r, http.MethodGet, "/v1/titles/1/reviews/3/comments/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/v1/titles/1/reviews/3/comments/", "other-token", map[string]string{"text": "agreed"}).Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/v1/titles/1/reviews/3/comments/4/", "user-token", nil).Code)

	// PATCH fields are optional, PUT still needs the text
	w = perform(r, http.MethodPatch, "/v1/titles/1/reviews/3/comments/4/", "other-token", map[string]string{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"text":"agreed"`)
	w = perform(r, http.MethodPut, "/v1/titles/1/reviews/3/comments/4/", "other-token", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text", decodeError(t, w).Field)
}

func TestOperationalRoutes(t *testing.T) {
	r, m := setupRouter()

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/healthz", "", nil).Code)

	m.pingErr = errors.New("database is down")
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/healthz", "", nil).Code)

	w := perform(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yamdb_http_requests_total")

	w = perform(r, http.MethodGet, "/v1/nowhere/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)
}
