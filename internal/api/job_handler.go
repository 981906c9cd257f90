package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JobTrigger starts a background job by name; false means it is already running.
type JobTrigger interface {
	Trigger(name string) (bool, error)
}

type JobHandler struct {
	Jobs JobTrigger
}

func NewJobHandler(j JobTrigger) *JobHandler {
	return &JobHandler{Jobs: j}
}

// TriggerJob starts the refresh or reminders job without waiting for it.
// @Router /api/jobs/{name} [post]
func (h *JobHandler) TriggerJob(c *gin.Context) {
	name := c.Param("name")
	started, err := h.Jobs.Trigger(name)
	if err != nil {
		respondError(c, err)
		return
	}
	if !started {
		c.JSON(http.StatusConflict, gin.H{"error": "job " + name + " is already running"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Job " + name + " started in background"})
}
