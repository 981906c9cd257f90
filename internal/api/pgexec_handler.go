package api

import (
	"errors"
	"net/http"
	"strings"

	"domain-locker/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PgExecHandler struct {
	Executor repository.QueryExecutor
}

func NewPgExecHandler(e repository.QueryExecutor) *PgExecHandler {
	return &PgExecHandler{Executor: e}
}

type pgExecRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

// Execute runs one query for the front end's generic database layer.
// @Router /api/pg-executer [post]
func (h *PgExecHandler) Execute(c *gin.Context) {
	var req pgExecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query"})
		return
	}

	rows, err := h.Executor.Execute(c.Request.Context(), req.Query, req.Params)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query"})
			return
		}
		logrus.Errorf("[PgExec] Query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Database query failed",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}
