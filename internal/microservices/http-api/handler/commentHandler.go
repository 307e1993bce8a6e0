package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/response"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterRoutes registers comment routes under a review
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/titles/:title_id/reviews/:review_id/comments")
	{
		comments.GET("/", h.List)
		comments.POST("/", h.Create)
		comments.GET("/:comment_id/", h.Get)
		comments.PUT("/:comment_id/", h.Replace)
		comments.PATCH("/:comment_id/", h.Update)
		comments.DELETE("/:comment_id/", h.Delete)
	}
}

// List GET /v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) List(c *gin.Context) {
	workID, reviewID, err := reviewPath(c)
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

	result, err := h.commentService.List(ctx, workID, reviewID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CommentHandler) Get(c *gin.Context) {
	workID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Get(ctx, workID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c *gin.Context) {
	workID, reviewID, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.CommentDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Create(ctx, middleware.ActorFrom(c), workID, reviewID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Replace PUT requires the text like create
func (h *CommentHandler) Replace(c *gin.Context) {
	var req dto.CommentDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	h.update(c, dto.UpdateCommentDTO{Text: &req.Text})
}

// Update PATCH, text is the only writable field
func (h *CommentHandler) Update(c *gin.Context) {
	var req dto.UpdateCommentDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	h.update(c, req)
}

func (h *CommentHandler) update(c *gin.Context, req dto.UpdateCommentDTO) {
	workID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Update(ctx, middleware.ActorFrom(c), workID, reviewID, commentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	workID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.ActorFrom(c), workID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func commentPath(c *gin.Context) (int64, int64, int64, error) {
	workID, reviewID, err := reviewPath(c)
	if err != nil {
		return 0, 0, 0, err
	}
	commentID, err := idParam(c, "comment_id")
	if err != nil {
		return 0, 0, 0, err
	}
	return workID, reviewID, commentID, nil
}
