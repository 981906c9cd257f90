package api

import (
	"net/http"
	"time"

	"domain-locker/internal/service"

	"github.com/gin-gonic/gin"
)

type ToolHandler struct{}

func NewToolHandler() *ToolHandler {
	return &ToolHandler{}
}

// DecodeCertificate decodes a certificate pasted by the user.
func (h *ToolHandler) DecodeCertificate(c *gin.Context) {
	var req struct {
		CertContent string `json:"cert_content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	details, err := service.DecodeCertificate(req.CertContent, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": details})
}
