package handlers

import (
	"net/http"

	"eventease/internal/middleware"
	"eventease/internal/models"
	"eventease/internal/validation"

	"github.com/gin-gonic/gin"
)

// ListEvents - GET /api/events
// Поиск событий с регистрациями пользователя. Поиск не возвращает ошибок.
func (h *Handlers) ListEvents(c *gin.Context) {
	var q models.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return
	}

	result := h.events.List(c.Request.Context(), middleware.UserID(c), q)
	c.JSON(http.StatusOK, result)
}

// GetEventStats - GET /api/events/:id/stats
// Получить статистику регистраций события
func (h *Handlers) GetEventStats(c *gin.Context) {
	eventID, ok := validation.NormalizeUUID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event id must be a valid UUID"})
		return
	}

	stats, err := h.catalog.EventStats(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err, "get event stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListCategories - GET /api/categories
// Получить список категорий
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
