package service

import (
	"context"

	"eventease/internal/models"
)

// EventService serves the browse page: search, then the registration filter
type EventService struct {
	resolver *SearchResolver
}

func NewEventService(resolver *SearchResolver) *EventService {
	return &EventService{resolver: resolver}
}

// List never fails. The filter only narrows events already fetched; registrations are returned in full.
func (s *EventService) List(ctx context.Context, userID string, q models.ListEventsQuery) *models.SearchResult {
	result := s.resolver.ResolveEvents(ctx, userID, q.Query)

	return &models.SearchResult{
		Events:        models.ApplyRegistrationFilter(result.Events, result.Registrations, q.Filter),
		Registrations: result.Registrations,
	}
}
