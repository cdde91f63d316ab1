package handlers

import (
	"net/http"

	"eventease/internal/middleware"
	"eventease/internal/models"
	"eventease/internal/validation"

	"github.com/gin-gonic/gin"
)

// Register - POST /api/registrations
// Зарегистрировать пользователя на событие с выбранным типом билета
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return
	}

	result, err := h.registration.Register(c.Request.Context(), middleware.UserID(c), req.EventID, req.TicketTypeID)
	if err != nil {
		h.handleServiceError(c, err, "register for event")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Unregister - DELETE /api/registrations/:eventId
// Отменить регистрацию; сумма возврата рассчитывается в БД
func (h *Handlers) Unregister(c *gin.Context) {
	eventID, ok := validation.NormalizeUUID(c.Param("eventId"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event id must be a valid UUID"})
		return
	}

	result, err := h.registration.Unregister(c.Request.Context(), middleware.UserID(c), eventID)
	if err != nil {
		h.handleServiceError(c, err, "unregister from event")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListRegistrations - GET /api/registrations
// Получить регистрации пользователя
func (h *Handlers) ListRegistrations(c *gin.Context) {
	response, err := h.registrations.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.handleServiceError(c, err, "list registrations")
		return
	}

	c.JSON(http.StatusOK, response)
}
