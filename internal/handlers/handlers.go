package handlers

import (
	"context"
	"errors"
	"net/http"

	"eventease/internal/database"
	apperrors "eventease/internal/errors"
	"eventease/internal/logger"
	"eventease/internal/models"
	"eventease/internal/service"

	"github.com/gin-gonic/gin"
)

type EventLister interface {
	List(ctx context.Context, userID string, q models.ListEventsQuery) *models.SearchResult
}

type Registrar interface {
	Register(ctx context.Context, userID, eventID, ticketTypeID string) (*models.RegisterResult, error)
	Unregister(ctx context.Context, userID, eventID string) (*models.UnregisterResult, error)
}

type RegistrationLister interface {
	ListForUser(ctx context.Context, userID string) (*models.RegistrationsResponse, error)
}

type Catalog interface {
	Categories(ctx context.Context) ([]models.Category, error)
	EventStats(ctx context.Context, eventID string) (*models.EventStats, error)
}

type Handlers struct {
	events        EventLister
	registration  Registrar
	registrations RegistrationLister
	catalog       Catalog
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		events:        services.Events,
		registration:  services.Registration,
		registrations: services.Registrations,
		catalog:       services.Catalog,
	}
}

// handleServiceError переводит ошибку сервиса в HTTP ответ
func (h *Handlers) handleServiceError(c *gin.Context, err error, action string) {
	status, body := errorResponse(err)

	log := logger.WithContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("Failed to "+action, "error", err)
	} else {
		log.Info("Rejected "+action, "status", status, "error", err)
	}

	_ = c.Error(err)
	c.JSON(status, body)
}

func errorResponse(err error) (int, models.ErrorResponse) {
	var storeErr *database.StoreError
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, apperrors.ErrOperationInProgress):
		return http.StatusConflict, models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, apperrors.ErrEventNotFound):
		return http.StatusNotFound, models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()}
	case errors.As(err, &storeErr):
		return storeErrorStatus(storeErr.Code), models.ErrorResponse{Error: storeErr.Message, Code: storeErr.Code}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"}
	}
}

func storeErrorStatus(code string) int {
	switch code {
	case database.CodeUniqueViolation:
		return http.StatusConflict
	case database.CodeForeignKeyViolation, database.CodeNoDataFound:
		return http.StatusNotFound
	case database.CodeCheckViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
