package client

// http_client.go wraps the YaMDb REST API for the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	clidto "yamdb/cmd/cli/dto"
	"yamdb/internal/microservices/http-api/dto"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// TitleFilter narrows GET /v1/titles/
type TitleFilter struct {
	Name     string
	Year     int
	Category string
	Genre    string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes a 2xx answer into out
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/v1"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &clidto.APIError{Status: resp.StatusCode}
		var env clidto.ErrorEnvelope
		if json.NewDecoder(resp.Body).Decode(&env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Field = env.Error.Field
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pageQuery(page int) string {
	if page <= 1 {
		return ""
	}
	return "?page=" + strconv.Itoa(page)
}

// Auth

func (c *HTTPClient) Signup(ctx context.Context, username, email string) (*dto.SignupResponse, error) {
	var result dto.SignupResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup/", dto.SignupRequest{Username: username, Email: email}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Token(ctx context.Context, username, code string) (string, error) {
	var result dto.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/token/", dto.TokenRequest{Username: username, ConfirmationCode: code}, &result)
	if err != nil {
		return "", err
	}
	return result.Access, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var result dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Catalog

func (c *HTTPClient) ListCategories(ctx context.Context, page int) (*dto.Page[dto.CategoryResponse], error) {
	var result dto.Page[dto.CategoryResponse]
	if err := c.do(ctx, http.MethodGet, "/categories/"+pageQuery(page), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListGenres(ctx context.Context, page int) (*dto.Page[dto.GenreResponse], error) {
	var result dto.Page[dto.GenreResponse]
	if err := c.do(ctx, http.MethodGet, "/genres/"+pageQuery(page), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Titles

func (c *HTTPClient) ListTitles(ctx context.Context, filter TitleFilter, page int) (*dto.Page[dto.WorkResponse], error) {
	q := url.Values{}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if filter.Year != 0 {
		q.Set("year", strconv.Itoa(filter.Year))
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Genre != "" {
		q.Set("genre", filter.Genre)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	path := "/titles/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result dto.Page[dto.WorkResponse]
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetTitle(ctx context.Context, id int64) (*dto.WorkResponse, error) {
	var result dto.WorkResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/titles/%d/", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reviews and comments

func (c *HTTPClient) ListReviews(ctx context.Context, titleID int64, page int) (*dto.Page[dto.ReviewResponse], error) {
	var result dto.Page[dto.ReviewResponse]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/titles/%d/reviews/%s", titleID, pageQuery(page)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) AddReview(ctx context.Context, titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var result dto.ReviewResponse
	body := dto.CreateReviewDTO{Text: text, Score: &score}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/titles/%d/reviews/", titleID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, titleID, reviewID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/titles/%d/reviews/%d/", titleID, reviewID), nil, nil)
}

func (c *HTTPClient) ListComments(ctx context.Context, titleID, reviewID int64, page int) (*dto.Page[dto.CommentResponse], error) {
	var result dto.Page[dto.CommentResponse]
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments/%s", titleID, reviewID, pageQuery(page))
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) AddComment(ctx context.Context, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	var result dto.CommentResponse
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments/", titleID, reviewID)
	if err := c.do(ctx, http.MethodPost, path, dto.CommentDTO{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
