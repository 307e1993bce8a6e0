package handler

import (
	"net/http"
	"strconv"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/response"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/policy"

	"github.com/gin-gonic/gin"
)

type WorkHandler struct {
	svc service.WorkService
}

func NewWorkHandler(svc service.WorkService) *WorkHandler {
	return &WorkHandler{svc: svc}
}

func (h *WorkHandler) RegisterRoutes(router *gin.RouterGroup) {
	titles := router.Group("/titles")
	{
		titles.GET("/", h.List)
		titles.POST("/", middleware.RequirePermission(policy.ResourceWork, policy.ActionCreate), h.Create)
		titles.GET("/:title_id/", h.Get)
		titles.PUT("/:title_id/", middleware.RequirePermission(policy.ResourceWork, policy.ActionUpdate), h.Replace)
		titles.PATCH("/:title_id/", middleware.RequirePermission(policy.ResourceWork, policy.ActionPartialUpdate), h.Update)
		titles.DELETE("/:title_id/", middleware.RequirePermission(policy.ResourceWork, policy.ActionDestroy), h.Delete)
	}
}

// List GET /v1/titles/?name=&year=&category=&genre=
func (h *WorkHandler) List(c *gin.Context) {
	page, err := pageParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	filter := repository.WorkFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Validation("year", "enter a whole number"))
			return
		}
		filter.Year = &year
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.svc.List(ctx, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *WorkHandler) Get(c *gin.Context) {
	id, err := idParam(c, "title_id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	work, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, work)
}

func (h *WorkHandler) Create(c *gin.Context) {
	var req dto.CreateWorkDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	work, err := h.svc.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, work)
}

// Replace PUT: the body is a full title, omitted genres and category are cleared.
func (h *WorkHandler) Replace(c *gin.Context) {
	id, err := idParam(c, "title_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.CreateWorkDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	h.update(c, id, req.AsUpdate())
}

// Update PATCH
func (h *WorkHandler) Update(c *gin.Context) {
	id, err := idParam(c, "title_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.UpdateWorkDTO
	if err := response.BindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	h.update(c, id, req)
}

func (h *WorkHandler) update(c *gin.Context, id int64, req dto.UpdateWorkDTO) {
	ctx, cancel := requestContext(c)
	defer cancel()

	work, err := h.svc.Update(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, work)
}

func (h *WorkHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "title_id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
