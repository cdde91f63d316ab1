package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"eventease/internal/logger"
	"eventease/internal/metrics"
	"eventease/internal/models"
)

// EventStore reads events with full detail
type EventStore interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	EventsByIDs(ctx context.Context, ids []string) ([]models.Event, error)
	VenueIDsByName(ctx context.Context, query string) ([]string, error)
	MatchEvents(ctx context.Context, query string, venueIDs []string) ([]models.Event, error)
}

// EventRanker orders event ids by full-text relevance, best first
type EventRanker interface {
	RankEvents(ctx context.Context, query string) ([]models.RankedEvent, error)
}

type RegistrationLister interface {
	RegistrationsForUser(ctx context.Context, userID string) ([]models.Registration, error)
}

// EventCache holds the baseline listing between requests
type EventCache interface {
	GetEvents(ctx context.Context) ([]models.Event, bool, error)
	SetEvents(ctx context.Context, events []models.Event) error
}

// SearchResolver turns a free-text query into events plus the user's registrations.
// It never fails: each stage that errors or finds nothing hands over to a broader one.
type SearchResolver struct {
	events        EventStore
	ranker        EventRanker
	registrations RegistrationLister
	cache         EventCache
}

func NewSearchResolver(events EventStore, ranker EventRanker, registrations RegistrationLister, cache EventCache) *SearchResolver {
	return &SearchResolver{
		events:        events,
		ranker:        ranker,
		registrations: registrations,
		cache:         cache,
	}
}

func (s *SearchResolver) ResolveEvents(ctx context.Context, userID, rawQuery string) (result *models.SearchResult) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		metrics.SearchResolved(metrics.StageBaseline)
		return s.baseline(ctx, userID)
	}

	log := logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Search panicked, serving all events", "query", query, "panic", fmt.Sprint(r))
			metrics.SearchResolved(metrics.StageFallback)
			result = s.baseline(ctx, userID)
		}
	}()

	events, stage := s.searchEvents(ctx, query)
	if len(events) == 0 {
		log.Debug("Search found nothing, serving all events", "query", query)
		metrics.SearchResolved(metrics.StageBaseline)
		return s.baseline(ctx, userID)
	}
	metrics.SearchResolved(stage)

	registrations, err := s.registrations.RegistrationsForUser(ctx, userID)
	if err != nil {
		log.Warn("Failed to load registrations for search result", "error", err)
		registrations = []models.Registration{}
	}

	return &models.SearchResult{Events: events, Registrations: registrations}
}

// searchEvents runs the ranked stage and, when it yields nothing, the substring stage
func (s *SearchResolver) searchEvents(ctx context.Context, query string) ([]models.Event, string) {
	log := logger.WithContext(ctx)

	events, err := s.rankedSearch(ctx, query)
	if err != nil {
		log.Warn("Ranked search failed, trying substring match", "query", query, "error", err)
	}
	if len(events) > 0 {
		return events, metrics.StageRanked
	}

	venueIDs, err := s.events.VenueIDsByName(ctx, query)
	if err != nil {
		log.Warn("Venue lookup failed, matching event fields only", "query", query, "error", err)
		venueIDs = nil
	}

	events, err = s.events.MatchEvents(ctx, query, venueIDs)
	if err != nil {
		log.Warn("Substring search failed", "query", query, "error", err)
		return nil, metrics.StageSubstring
	}

	return events, metrics.StageSubstring
}

func (s *SearchResolver) rankedSearch(ctx context.Context, query string) ([]models.Event, error) {
	ranked, err := s.ranker.RankEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to rank events: %w", err)
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(ranked))
	seen := make(map[string]struct{}, len(ranked))
	for _, r := range ranked {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		ids = append(ids, r.ID)
	}

	events, err := s.events.EventsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ranked events: %w", err)
	}

	return OrderByRank(events, ranked), nil
}

// OrderByRank sorts events by their position in ranked. Events missing from ranked keep
// their relative order after all ranked ones.
func OrderByRank(events []models.Event, ranked []models.RankedEvent) []models.Event {
	position := make(map[string]int, len(ranked))
	for i, r := range ranked {
		if _, ok := position[r.ID]; !ok {
			position[r.ID] = i
		}
	}

	rankOf := func(id string) int {
		if p, ok := position[id]; ok {
			return p
		}
		return len(ranked)
	}

	ordered := make([]models.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rankOf(ordered[i].ID) < rankOf(ordered[j].ID)
	})
	return ordered
}

// baseline is every event plus the user's registrations. It returns empty lists if the events cannot be read.
func (s *SearchResolver) baseline(ctx context.Context, userID string) (result *models.SearchResult) {
	log := logger.WithContext(ctx)
	empty := &models.SearchResult{Events: []models.Event{}, Registrations: []models.Registration{}}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Loading all events panicked", "panic", fmt.Sprint(r))
			result = empty
		}
	}()

	events, err := s.allEvents(ctx)
	if err != nil {
		log.Error("Failed to load events", "error", err)
		return empty
	}

	registrations, err := s.registrations.RegistrationsForUser(ctx, userID)
	if err != nil {
		log.Warn("Failed to load registrations", "error", err)
		registrations = []models.Registration{}
	}

	return &models.SearchResult{Events: events, Registrations: registrations}
}

func (s *SearchResolver) allEvents(ctx context.Context) ([]models.Event, error) {
	if s.cache != nil {
		events, ok, err := s.cache.GetEvents(ctx)
		if err != nil {
			logger.WithContext(ctx).Warn("Event cache unavailable", "error", err)
		} else if ok {
			return events, nil
		}
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetEvents(ctx, events); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache events", "error", err)
		}
	}

	return events, nil
}
