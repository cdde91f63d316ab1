package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"eventease/internal/cache"
	"eventease/internal/config"
	"eventease/internal/database"
	"eventease/internal/messaging"
	"eventease/internal/models"
	"eventease/internal/repository"
	"eventease/internal/search"
	"eventease/internal/service"

	"github.com/nats-io/stan.go"
)

const queueGroup = "consumers"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	repos    *repository.Repositories
	indexer  *service.IndexerService
	handlers *Handlers
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Connect to NATS
	cfg.NATS.Enabled = true
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Create repositories
	repos := repository.NewRepositories(db)

	var valkeyClient *cache.ValkeyClient
	if cfg.Valkey.Enabled {
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, event cache will expire on its own", "error", err)
			valkeyClient = nil
		}
	}

	var esClient *search.ElasticsearchClient
	if cfg.Search.Ranker == config.RankerElasticsearch {
		esClient, err = search.NewElasticsearchClient(cfg.Search.Elasticsearch)
		if err != nil {
			natsClient.Close()
			db.Close()
			return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
		}
	}

	services := service.NewServices(repos, service.Backends{
		NATS:   natsClient,
		Valkey: valkeyClient,
		Search: esClient,
	})

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		repos:    repos,
		indexer:  services.Indexer,
		handlers: NewHandlers(services.Indexer),
	}, nil
}

// Indexer exposes the event indexer for background jobs
func (cs *ConsumerService) Indexer() *service.IndexerService {
	return cs.indexer
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subscriptions := []struct {
		subject string
		handle  func(ctx context.Context, data []byte) error
	}{
		{models.EventRegistrationCreated, cs.handlers.HandleRegistrationCreated},
		{models.EventRegistrationCancelled, cs.handlers.HandleRegistrationCancelled},
		{models.EventEventUpserted, cs.handlers.HandleEventUpserted},
	}

	for _, s := range subscriptions {
		sub, err := cs.nats.SubscribeQueue(s.subject, queueGroup, ack(s.subject, s.handle))
		if err != nil {
			return err
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close keeps durable queue subscriptions for the next start
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.valkey != nil {
		if err := cs.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
