package service

import (
	"eventease/internal/cache"
	"eventease/internal/messaging"
	"eventease/internal/repository"
	"eventease/internal/search"
)

type Services struct {
	Events        *EventService
	Registration  *RegistrationCoordinator
	Registrations *RegistrationService
	Catalog       *CatalogService
	Indexer       *IndexerService
}

// Backends are the optional infrastructure clients; any nil field is treated as disabled
type Backends struct {
	NATS   *messaging.NATSClient
	Valkey *cache.ValkeyClient
	Locks  *cache.InflightLocks
	Search *search.ElasticsearchClient
}

func NewServices(repos *repository.Repositories, backends Backends) *Services {
	var (
		ranker      EventRanker = repos.Events
		eventCache  EventCache
		invalidator CacheInvalidator
		guard       Guard
		publisher   Publisher
		index       SearchIndex
	)

	if backends.Search != nil {
		ranker = backends.Search
		index = backends.Search
	}
	if backends.Valkey != nil {
		eventCache = backends.Valkey
		invalidator = backends.Valkey
	}
	if backends.Locks != nil {
		guard = backends.Locks
	}
	if backends.NATS != nil {
		publisher = backends.NATS
	}

	resolver := NewSearchResolver(repos.Events, ranker, repos.Registrations, eventCache)

	return &Services{
		Events:        NewEventService(resolver),
		Registration:  NewRegistrationCoordinator(repos.Registrations, guard, publisher),
		Registrations: NewRegistrationService(repos.Registrations),
		Catalog:       NewCatalogService(repos.Catalog),
		Indexer:       NewIndexerService(repos.Events, index, invalidator),
	}
}
