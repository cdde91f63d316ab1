package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"eventease/internal/client"
	"eventease/internal/logger"
	"eventease/internal/models"

	"github.com/google/uuid"
)

// validate runs a register/unregister round trip against a running API with a throwaway user.
func main() {
	var baseURL string
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "Base URL for API validation")
	flag.Parse()

	logger.Init("info", "text")
	slog.Info("Starting API validation", "url", baseURL)

	c := client.New(client.Config{
		BaseURL: baseURL,
		UserID:  uuid.NewString(),
		Timeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := validateAll(ctx, c); err != nil {
		slog.Error("Validation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Validation passed")
}

func validateAll(ctx context.Context, c *client.Client) error {
	step("Listing events")
	result, err := c.Search(ctx, "")
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(result.Events) == 0 {
		return errors.New("no events returned; run cmd/seed first")
	}
	if len(result.Registrations) != 0 {
		return fmt.Errorf("new user has %d registrations", len(result.Registrations))
	}

	event, tier, ok := freeTier(result.Events)
	if !ok {
		return errors.New("no event with a free ticket type")
	}

	step("Registering without a ticket type")
	if _, err := c.Register(ctx, event.ID, ""); !client.IsStatus(err, http.StatusBadRequest) {
		return fmt.Errorf("expected 400 without a ticket type, got %v", err)
	}

	step("Registering", "event", event.Name, "tier", tier.TierName)
	registered, err := c.Register(ctx, event.ID, tier.ID)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if !registered.PaymentMethod.IsFree() || registered.AmountPaid != 0 {
		return fmt.Errorf("free tier charged %.2f via %s", registered.AmountPaid, registered.PaymentMethod)
	}

	step("Registering twice")
	if _, err := c.Register(ctx, event.ID, tier.ID); !client.IsStatus(err, http.StatusConflict) {
		return fmt.Errorf("expected 409 on duplicate registration, got %v", err)
	}

	step("Filtering registered events")
	filtered, err := c.ListEvents(ctx, models.ListEventsQuery{Filter: models.FilterRegistered})
	if err != nil {
		return fmt.Errorf("list registered events: %w", err)
	}
	if len(filtered.Events) != 1 || filtered.Events[0].ID != event.ID {
		return fmt.Errorf("expected only %s under the registered filter, got %d events", event.ID, len(filtered.Events))
	}

	step("Unregistering")
	if _, err := c.Unregister(ctx, event.ID); err != nil {
		return fmt.Errorf("unregister: %w", err)
	}

	step("Unregistering twice")
	if _, err := c.Unregister(ctx, event.ID); !client.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("expected 404 on second unregister, got %v", err)
	}

	return nil
}

func freeTier(events []models.Event) (models.Event, models.TicketType, bool) {
	for _, e := range events {
		for _, tt := range e.TicketTypes {
			if tt.IsFree() {
				return e, tt, true
			}
		}
	}
	return models.Event{}, models.TicketType{}, false
}

func step(msg string, args ...any) {
	slog.Info("→ "+msg, args...)
}
