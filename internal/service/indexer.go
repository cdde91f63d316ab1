package service

import (
	"context"
	"fmt"
	"log/slog"

	"eventease/internal/models"
)

// SearchIndex is the document store behind the Elasticsearch ranker
type SearchIndex interface {
	IndexEvent(ctx context.Context, doc models.EventDocument) error
	BulkIndex(ctx context.Context, docs []models.EventDocument) error
	DeleteEvent(ctx context.Context, id string) error
}

type EventLoader interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

type CacheInvalidator interface {
	InvalidateEvents(ctx context.Context) error
}

// IndexerService keeps derived copies of events (search index, listing cache) in step with the database
type IndexerService struct {
	events EventLoader
	index  SearchIndex
	cache  CacheInvalidator
}

// NewIndexerService accepts a nil index or cache when that backend is disabled
func NewIndexerService(events EventLoader, index SearchIndex, cache CacheInvalidator) *IndexerService {
	return &IndexerService{
		events: events,
		index:  index,
		cache:  cache,
	}
}

// RefreshEvent reindexes one event, or removes it from the index when it no longer exists
func (s *IndexerService) RefreshEvent(ctx context.Context, eventID string) error {
	if s.cache != nil {
		if err := s.cache.InvalidateEvents(ctx); err != nil {
			slog.Warn("Failed to invalidate event cache", "event_id", eventID, "error", err)
		}
	}

	if s.index == nil {
		return nil
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}

	if event == nil {
		if err := s.index.DeleteEvent(ctx, eventID); err != nil {
			return fmt.Errorf("failed to remove event from index: %w", err)
		}
		return nil
	}

	if err := s.index.IndexEvent(ctx, models.NewEventDocument(event)); err != nil {
		return fmt.Errorf("failed to index event: %w", err)
	}
	return nil
}

// ReindexAll writes every event to the search index and returns how many were sent
func (s *IndexerService) ReindexAll(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	docs := make([]models.EventDocument, len(events))
	for i := range events {
		docs[i] = models.NewEventDocument(&events[i])
	}

	if err := s.index.BulkIndex(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to reindex events: %w", err)
	}

	return len(docs), nil
}
