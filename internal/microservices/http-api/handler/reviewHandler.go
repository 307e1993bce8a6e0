package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/response"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// RegisterRoutes mounts reviews under a title. Ownership is decided by the
// service once the review is loaded.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/titles/:title_id/reviews")
	{
		reviews.GET("/", h.List)
		reviews.POST("/", h.Create)
		reviews.GET("/:review_id/", h.Get)
		reviews.PUT("/:review_id/", h.Replace)
		reviews.PATCH("/:review_id/", h.Update)
		reviews.DELETE("/:review_id/", h.Delete)
	}
}

func (h *ReviewHandler) List(c *gin.Context) {
	workID, err := idParam(c, "title_id")
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := pageParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.svc.List(ctx, workID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	workID, reviewID, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.svc.Get(ctx, workID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Create POST /v1/titles/:title_id/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	workID, err := idParam(c, "title_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.CreateReviewDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.svc.Create(ctx, middleware.ActorFrom(c), workID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// Replace PUT takes the same body as create
func (h *ReviewHandler) Replace(c *gin.Context) {
	var req dto.CreateReviewDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	h.update(c, dto.UpdateReviewDTO{Text: &req.Text, Score: req.Score})
}

func (h *ReviewHandler) Update(c *gin.Context) {
	var req dto.UpdateReviewDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	h.update(c, req)
}

func (h *ReviewHandler) update(c *gin.Context, req dto.UpdateReviewDTO) {
	workID, reviewID, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.svc.Update(ctx, middleware.ActorFrom(c), workID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	workID, reviewID, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.ActorFrom(c), workID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func reviewPath(c *gin.Context) (int64, int64, error) {
	workID, err := idParam(c, "title_id")
	if err != nil {
		return 0, 0, err
	}
	reviewID, err := idParam(c, "review_id")
	if err != nil {
		return 0, 0, err
	}
	return workID, reviewID, nil
}
