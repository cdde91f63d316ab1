package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"eventease/internal/config"
	"eventease/internal/database"
	"eventease/internal/logger"
	"eventease/internal/messaging"
	"eventease/internal/models"

	"github.com/google/uuid"
)

var (
	clearExisting = flag.Bool("clear", false, "Delete existing events, venues and organizers before seeding")
	eventCount    = flag.Int("events", 40, "Number of events to generate")
	daysAhead     = flag.Int("days", 60, "Spread event dates over this many days from today")
	seed          = flag.Int64("seed", 0, "Random seed (0 = current time)")
	dryRun        = flag.Bool("dry-run", false, "Show what would be generated without making changes")
	publish       = flag.Bool("publish", true, "Publish event.upserted for every generated event")
)

var (
	categoryNames = []string{"Music", "Technology", "Art", "Sports", "Food", "Business", "Education", "Community"}
	topics        = []string{"Jazz Night", "Go Meetup", "Watercolor Workshop", "City Marathon", "Street Food Festival", "Startup Pitch", "Data Science Bootcamp", "Neighborhood Cleanup", "Indie Rock Live", "Cloud Summit"}
	venueNames    = []string{"Riverside Hall", "Central Library", "Harbor Arena", "Old Town Theater", "Innovation Hub", "Park Pavilion"}
	cities        = []string{"Almaty", "Astana", "Berlin", "Lisbon", "Toronto"}
	orgTypes      = []string{"nonprofit", "company", "community"}
)

type tierTemplate struct {
	name     string
	capacity int
}

var tierTemplates = []tierTemplate{
	{"General Admission", 200},
	{"Standard", 120},
	{"VIP", 30},
}

type Seeder struct {
	db   *database.DB
	rng  *rand.Rand
	nats *messaging.NATSClient
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting demo data generator...")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	seeder := &Seeder{db: db, rng: rand.New(rand.NewSource(*seed))}

	if *publish && !*dryRun {
		cfg.NATS.ClientID = "eventease-seed"
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			slog.Warn("NATS unavailable, generated events will not be announced", "error", err)
		} else {
			seeder.nats = natsClient
			defer natsClient.Close()
		}
	}

	ids, err := seeder.Seed(*eventCount)
	if err != nil {
		slog.Error("Failed to seed demo data", "error", err)
		os.Exit(1)
	}

	seeder.announce(ids)

	slog.Info("Demo data generation completed successfully!", "events", len(ids), "seed", *seed)
}

// Seed generates the catalog in one transaction and returns the new event ids
func (s *Seeder) Seed(count int) ([]string, error) {
	if *dryRun {
		for i := 0; i < count; i++ {
			slog.Info("[DRY RUN] Would generate event", "name", s.eventName(), "date", s.eventDate().Format("2006-01-02"))
		}
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if *clearExisting {
		if err := clearCatalog(tx); err != nil {
			return nil, fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	categoryIDs, err := s.insertCategories(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert categories: %w", err)
	}

	venueIDs, err := s.insertVenues(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert venues: %w", err)
	}

	organizerIDs, err := s.insertOrganizers(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert organizers: %w", err)
	}

	eventIDs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := s.insertEvent(tx, pick(s.rng, venueIDs), pick(s.rng, organizerIDs), pick(s.rng, categoryIDs))
		if err != nil {
			return nil, fmt.Errorf("failed to insert event %d: %w", i+1, err)
		}
		eventIDs = append(eventIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return eventIDs, nil
}

func clearCatalog(tx *sql.Tx) error {
	// registrations reference purchases, purchases reference tiers
	statements := []string{
		"DELETE FROM registrations",
		"DELETE FROM ticket_purchases",
		"DELETE FROM events",
		"DELETE FROM venues",
		"DELETE FROM organizers",
		"DELETE FROM organizations",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) insertCategories(tx *sql.Tx) ([]string, error) {
	ids := make([]string, 0, len(categoryNames))
	for _, name := range categoryNames {
		var id string
		err := tx.QueryRow(`
			INSERT INTO categories (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			name, name+" events").Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Seeder) insertVenues(tx *sql.Tx) ([]string, error) {
	ids := make([]string, 0, len(venueNames))
	for _, name := range venueNames {
		id := uuid.NewString()
		address := fmt.Sprintf("%d Main St, %s", s.rng.Intn(200)+1, pick(s.rng, cities))
		capacity := (s.rng.Intn(10) + 1) * 100
		if _, err := tx.Exec(
			"INSERT INTO venues (id, name, address, capacity) VALUES ($1, $2, $3, $4)",
			id, name, address, capacity,
		); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Seeder) insertOrganizers(tx *sql.Tx) ([]string, error) {
	var ids []string
	for i := 1; i <= 3; i++ {
		orgID := uuid.NewString()
		if _, err := tx.Exec(
			"INSERT INTO organizations (id, name, type, contact_email) VALUES ($1, $2, $3, $4)",
			orgID, fmt.Sprintf("Organization %d", i), pick(s.rng, orgTypes), fmt.Sprintf("team%d@example.org", i),
		); err != nil {
			return nil, err
		}

		for j := 1; j <= 2; j++ {
			id := uuid.NewString()
			if _, err := tx.Exec(
				"INSERT INTO organizers (id, name, contact_info, organization_id) VALUES ($1, $2, $3, $4)",
				id, fmt.Sprintf("Organizer %d-%d", i, j), fmt.Sprintf("organizer%d%d@example.org", i, j), orgID,
			); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Seeder) insertEvent(tx *sql.Tx, venueID, organizerID, categoryID string) (string, error) {
	id := uuid.NewString()
	date := s.eventDate()
	start := date.Add(time.Duration(s.rng.Intn(10)+9) * time.Hour)
	end := start.Add(time.Duration(s.rng.Intn(4)+1) * time.Hour)
	name := s.eventName()
	description := fmt.Sprintf("Join us for %s. Everyone is welcome.", name)
	location := pick(s.rng, cities)

	if _, err := tx.Exec(`
		INSERT INTO events (id, name, description, date, start_time, end_time, location, venue_id, organizer_id, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, name, description, date, start, end, location, venueID, organizerID, 350,
	); err != nil {
		return "", err
	}

	if _, err := tx.Exec(
		"INSERT INTO event_categories (event_id, category_id) VALUES ($1, $2)",
		id, categoryID,
	); err != nil {
		return "", err
	}

	// every event gets at least one tier; about a third are free only
	tiers := tierTemplates[:1]
	if s.rng.Intn(3) > 0 {
		tiers = tierTemplates[1:]
	}
	for i, tier := range tiers {
		price := 0.0
		if tier.name != "General Admission" {
			price = tierPrice(i, s.rng)
		}
		if _, err := tx.Exec(
			"INSERT INTO ticket_types (event_id, tier_name, price, capacity) VALUES ($1, $2, $3, $4)",
			id, tier.name, price, tier.capacity,
		); err != nil {
			return "", err
		}
	}

	return id, nil
}

// tierPrice grows with the tier position
func tierPrice(position int, rng *rand.Rand) float64 {
	switch position {
	case 0:
		return float64(rng.Intn(30) + 10)
	default:
		return float64(rng.Intn(100) + 60)
	}
}

func (s *Seeder) eventName() string {
	return fmt.Sprintf("%s #%d", pick(s.rng, topics), s.rng.Intn(90)+10)
}

func (s *Seeder) eventDate() time.Time {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, s.rng.Intn(*daysAhead+1))
}

func (s *Seeder) announce(ids []string) {
	if s.nats == nil {
		return
	}
	for _, id := range ids {
		event := models.EventUpsertedEvent{EventID: id, Timestamp: time.Now()}
		if err := s.nats.Publish(models.EventEventUpserted, event); err != nil {
			slog.Error("Failed to publish event upserted", "event_id", id, "error", err)
		}
	}
	slog.Info("Announced generated events", "count", len(ids))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}
