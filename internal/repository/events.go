package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventease/internal/database"
	"eventease/internal/logger"
	"eventease/internal/models"

	"github.com/lib/pq"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const selectEventDetails = `
		SELECT e.id, e.name, e.description, e.date, e.start_time, e.end_time, e.location,
		       e.venue_id, e.organizer_id, e.capacity, e.created_at, e.updated_at,
		       v.id, v.name, v.address,
		       o.id, o.name, o.contact_info,
		       org.id, org.name, org.type
		FROM events e
		LEFT JOIN venues v ON v.id = e.venue_id
		LEFT JOIN organizers o ON o.id = e.organizer_id
		LEFT JOIN organizations org ON org.id = o.organization_id`

// eventRow holds scan targets for selectEventDetails
type eventRow struct {
	event models.Event

	venueID, venueName, venueAddress          sql.NullString
	organizerID, organizerName, organizerInfo sql.NullString
	organizationID, organizationName, orgType sql.NullString
}

func (r *eventRow) dest() []any {
	return []any{
		&r.event.ID,
		&r.event.Name,
		&r.event.Description,
		&r.event.Date,
		&r.event.StartTime,
		&r.event.EndTime,
		&r.event.Location,
		&r.event.VenueID,
		&r.event.OrganizerID,
		&r.event.Capacity,
		&r.event.CreatedAt,
		&r.event.UpdatedAt,
		&r.venueID, &r.venueName, &r.venueAddress,
		&r.organizerID, &r.organizerName, &r.organizerInfo,
		&r.organizationID, &r.organizationName, &r.orgType,
	}
}

func (r *eventRow) build() models.Event {
	event := r.event

	if r.venueID.Valid {
		event.Venue = &models.Venue{
			ID:      r.venueID.String,
			Name:    r.venueName.String,
			Address: nullStringPtr(r.venueAddress),
		}
	}

	if r.organizerID.Valid {
		event.Organizer = &models.Organizer{
			ID:          r.organizerID.String,
			Name:        r.organizerName.String,
			ContactInfo: nullStringPtr(r.organizerInfo),
		}
		if r.organizationID.Valid {
			event.Organizer.OrganizationID = nullStringPtr(r.organizationID)
			event.Organizer.Organization = &models.Organization{
				ID:   r.organizationID.String,
				Name: r.organizationName.String,
				Type: r.orgType.String,
			}
		}
	}

	return event
}

// ListEvents returns every event with organizer, venue and ticket types
func (r *EventRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	return r.queryEvents(ctx, selectEventDetails+`
		ORDER BY e.date ASC, e.start_time ASC NULLS LAST, e.id ASC`)
}

// EventsByIDs returns full detail for exactly the given ids, in no particular order
func (r *EventRepository) EventsByIDs(ctx context.Context, ids []string) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	return r.queryEvents(ctx, selectEventDetails+`
		WHERE e.id = ANY($1)`, pq.Array(ids))
}

// GetByID returns nil, nil when the event does not exist
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	events, err := r.EventsByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// RankEvents calls search_events_with_ranking and keeps its order
func (r *EventRepository) RankEvents(ctx context.Context, query string) ([]models.RankedEvent, error) {
	rows, err := r.db.QueryWithRetry(ctx, `SELECT id, rank FROM search_events_with_ranking($1)`, query)
	if err != nil {
		return nil, database.AsStoreError(err)
	}
	defer rows.Close()

	ranked := []models.RankedEvent{}
	for rows.Next() {
		var item models.RankedEvent
		if err := rows.Scan(&item.ID, &item.Rank); err != nil {
			return nil, err
		}
		ranked = append(ranked, item)
	}

	return ranked, rows.Err()
}

// VenueIDsByName finds venues whose name contains query, case-insensitive
func (r *EventRepository) VenueIDsByName(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryWithRetry(ctx, `SELECT id FROM venues WHERE name ILIKE $1`, likePattern(query))
	if err != nil {
		return nil, database.AsStoreError(err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// MatchEvents finds events whose name, description or location contains query,
// or which take place at one of venueIDs
func (r *EventRepository) MatchEvents(ctx context.Context, query string, venueIDs []string) ([]models.Event, error) {
	if venueIDs == nil {
		venueIDs = []string{}
	}
	return r.queryEvents(ctx, selectEventDetails+`
		WHERE e.name ILIKE $1
		   OR e.description ILIKE $1
		   OR e.location ILIKE $1
		   OR e.venue_id = ANY($2)
		ORDER BY e.date ASC, e.id ASC`, likePattern(query), pq.Array(venueIDs))
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.QueryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, database.AsStoreError(err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		events = append(events, row.build())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachTicketTypes(ctx, events); err != nil {
		return nil, err
	}

	return events, nil
}

// attachTicketTypes loads tiers for events and flags events that have none
func (r *EventRepository) attachTicketTypes(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}

	rows, err := r.db.QueryWithRetry(ctx, `
		SELECT id, event_id, tier_name, price, capacity, description
		FROM ticket_types
		WHERE event_id = ANY($1)
		ORDER BY price ASC, tier_name ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load ticket types: %w", database.AsStoreError(err))
	}
	defer rows.Close()

	byEvent := make(map[string][]models.TicketType, len(events))
	for rows.Next() {
		var tt models.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.TierName, &tt.Price, &tt.Capacity, &tt.Description); err != nil {
			return err
		}
		byEvent[tt.EventID] = append(byEvent[tt.EventID], tt)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range events {
		events[i].TicketTypes = byEvent[events[i].ID]
		if events[i].TicketTypes == nil {
			events[i].TicketTypes = []models.TicketType{}
		}
		if err := events[i].FlagInvalid(); err != nil {
			logger.WithContext(ctx).Warn("Event violates ticket type invariant",
				"event_id", events[i].ID, "error", err)
		}
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps query for a contains match; wildcards typed by the user match literally
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
