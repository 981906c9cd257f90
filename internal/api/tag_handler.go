package api

import (
	"net/http"

	"domain-locker/internal/domain"
	"domain-locker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TagHandler struct {
	Tags *service.TagService
}

func NewTagHandler(t *service.TagService) *TagHandler {
	return &TagHandler{Tags: t}
}

type saveTagRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

func (r saveTagRequest) toTag(id uuid.UUID) *domain.Tag {
	return &domain.Tag{ID: id, Name: r.Name, Color: r.Color, Icon: r.Icon, Description: r.Description}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.Tags.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	c.JSON(http.StatusOK, gin.H{"data": tags})
}

func (h *TagHandler) GetTag(c *gin.Context) {
	detail, err := h.Tags.Get(c.Request.Context(), currentUser(c), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req saveTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := req.toTag(uuid.Nil)
	if err := h.Tags.Save(c.Request.Context(), currentUser(c), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": tag})
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req saveTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := req.toTag(id)
	if err := h.Tags.Save(c.Request.Context(), currentUser(c), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tag})
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Tags.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

// SetTagDomains replaces the set of domains carrying the tag.
func (h *TagHandler) SetTagDomains(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		DomainIDs []uuid.UUID `json:"domain_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Tags.SetDomains(c.Request.Context(), currentUser(c), id, req.DomainIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tag domains updated", "total": len(req.DomainIDs)})
}
