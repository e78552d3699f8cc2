package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type TagController struct {
	tags services.TagService
}

func NewTagController(tags services.TagService) *TagController {
	return &TagController{tags: tags}
}

// ListTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /api/tags [get]
func (tc *TagController) ListTags(c *gin.Context) {
	tags, err := tc.tags.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag godoc
// @Summary Get a tag
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} models.APIError
// @Router /api/tags/{id} [get]
func (tc *TagController) GetTag(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tag, err := tc.tags.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// CreateTag godoc
// @Summary Create a tag
// @Description Admin only
// @Tags tags
// @Accept json
// @Produce json
// @Param tag body models.Tag true "Tag"
// @Success 201 {object} models.Tag
// @Failure 400 {object} models.APIError
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /api/admin/tags [post]
func (tc *TagController) CreateTag(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color" binding:"required"`
		Slug  string `json:"slug" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	tag := &models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := tc.tags.CreateTag(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}
