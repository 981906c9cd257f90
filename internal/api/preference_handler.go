package api

import (
	"io"
	"net/http"

	"domain-locker/internal/service"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	Preferences *service.PreferenceService
}

func NewPreferenceHandler(p *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{Preferences: p}
}

func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.Preferences.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prefs.Masked()})
}

// SavePreferences merges the body onto the stored preferences; absent keys are kept.
func (h *PreferenceHandler) SavePreferences(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	prefs, err := h.Preferences.Update(c.Request.Context(), currentUser(c), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preferences saved", "data": prefs.Masked()})
}

// TestNotification sends a test message with the stored preferences, overlaid
// with the unsaved values in the body if any.
func (h *PreferenceHandler) TestNotification(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	if err := h.Preferences.SendTest(c.Request.Context(), currentUser(c), body); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// Channel failures are the user's configuration, not a server fault
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent"})
}
