package database

import (
	"fmt"
	"log/slog"
)

// migrations run in order on every start; each step is idempotent
var migrations = []string{
	createExtensions,
	createOrganizationsTable,
	createOrganizersTable,
	createVenuesTable,
	createEventsTable,
	createCategoriesTables,
	createTicketTypesTable,
	createTicketPurchasesTable,
	createRegistrationsTable,
	createRefundAuditLogTable,
	createSearchIndexes,
	createSearchVectorTrigger,
	createEventStatsView,
	createSearchFunction,
	createRegisterFunction,
	createUnregisterFunction,
}

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createExtensions = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";
CREATE EXTENSION IF NOT EXISTS pg_trgm;`

const createOrganizationsTable = `
CREATE TABLE IF NOT EXISTS organizations (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    contact_email TEXT
);`

const createOrganizersTable = `
CREATE TABLE IF NOT EXISTS organizers (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    name TEXT NOT NULL,
    contact_info TEXT,
    organization_id UUID REFERENCES organizations(id) ON DELETE SET NULL
);`

const createVenuesTable = `
CREATE TABLE IF NOT EXISTS venues (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    name TEXT NOT NULL,
    address TEXT,
    capacity INTEGER CHECK (capacity IS NULL OR capacity >= 0)
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    name TEXT NOT NULL,
    description TEXT,
    date DATE NOT NULL,
    start_time TIMESTAMPTZ,
    end_time TIMESTAMPTZ,
    location TEXT,
    venue_id UUID REFERENCES venues(id) ON DELETE SET NULL,
    organizer_id UUID REFERENCES organizers(id) ON DELETE SET NULL,
    capacity INTEGER CHECK (capacity IS NULL OR capacity >= 0),
    search_vector TSVECTOR,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createCategoriesTables = `
CREATE TABLE IF NOT EXISTS categories (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    color TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS event_categories (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(event_id, category_id)
);`

const createTicketTypesTable = `
CREATE TABLE IF NOT EXISTS ticket_types (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    tier_name TEXT NOT NULL,
    price NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
    capacity INTEGER CHECK (capacity IS NULL OR capacity >= 0),
    description TEXT,
    UNIQUE(event_id, tier_name)
);`

const createTicketPurchasesTable = `
CREATE TABLE IF NOT EXISTS ticket_purchases (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    user_id UUID NOT NULL,
    ticket_type_id UUID NOT NULL REFERENCES ticket_types(id),
    amount_paid NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (amount_paid >= 0),
    payment_method TEXT NOT NULL DEFAULT 'free',
    payment_reference TEXT,
    payment_status TEXT NOT NULL DEFAULT 'completed',
    quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
    purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (payment_status IN ('completed', 'pending', 'failed', 'refunded'))
);`

const createRegistrationsTable = `
CREATE TABLE IF NOT EXISTS registrations (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    user_id UUID NOT NULL,
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    ticket_purchase_id UUID REFERENCES ticket_purchases(id),
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, event_id)
);
CREATE INDEX IF NOT EXISTS idx_registrations_user ON registrations(user_id, registered_at DESC);`

const createRefundAuditLogTable = `
CREATE TABLE IF NOT EXISTS refund_audit_log (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    event_id UUID NOT NULL,
    user_id UUID NOT NULL,
    ticket_purchase_id UUID NOT NULL,
    refunded_amount NUMERIC(10,2) NOT NULL,
    refund_reason TEXT,
    refunded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createSearchIndexes = `
CREATE INDEX IF NOT EXISTS idx_events_search_vector ON events USING GIN(search_vector);
CREATE INDEX IF NOT EXISTS idx_events_name_trgm ON events USING GIN(name gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_events_description_trgm ON events USING GIN(description gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_events_location_trgm ON events USING GIN(location gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_venues_name_trgm ON venues USING GIN(name gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);`

const createSearchVectorTrigger = `
CREATE OR REPLACE FUNCTION events_search_vector_update() RETURNS trigger AS $$
DECLARE
    venue_name TEXT;
BEGIN
    SELECT v.name INTO venue_name FROM venues v WHERE v.id = NEW.venue_id;
    NEW.search_vector :=
        setweight(to_tsvector('english', coalesce(NEW.name, '')), 'A') ||
        setweight(to_tsvector('english', coalesce(NEW.description, '')), 'B') ||
        setweight(to_tsvector('english', coalesce(NEW.location, '')), 'C') ||
        setweight(to_tsvector('english', coalesce(venue_name, '')), 'C');
    NEW.updated_at := NOW();
    RETURN NEW;
END
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_events_search_vector ON events;
CREATE TRIGGER trg_events_search_vector
    BEFORE INSERT OR UPDATE OF name, description, location, venue_id ON events
    FOR EACH ROW EXECUTE FUNCTION events_search_vector_update();

CREATE OR REPLACE FUNCTION venues_touch_events() RETURNS trigger AS $$
BEGIN
    UPDATE events SET venue_id = venue_id WHERE venue_id = NEW.id;
    RETURN NEW;
END
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_venues_touch_events ON venues;
CREATE TRIGGER trg_venues_touch_events
    AFTER UPDATE OF name ON venues
    FOR EACH ROW EXECUTE FUNCTION venues_touch_events();`

const createEventStatsView = `
CREATE OR REPLACE VIEW event_stats AS
SELECT e.id AS event_id,
       e.capacity,
       COUNT(r.id)::INTEGER AS registrations_count,
       CASE WHEN e.capacity IS NULL THEN NULL
            ELSE GREATEST(e.capacity - COUNT(r.id), 0)::INTEGER END AS seats_remaining,
       MAX(r.registered_at) AS last_registration_at
FROM events e
LEFT JOIN registrations r ON r.event_id = e.id
GROUP BY e.id, e.capacity;`

const createSearchFunction = `
CREATE OR REPLACE FUNCTION search_events_with_ranking(search_query TEXT)
RETURNS TABLE (
    id UUID,
    name TEXT,
    description TEXT,
    date DATE,
    start_time TIMESTAMPTZ,
    end_time TIMESTAMPTZ,
    location TEXT,
    venue_id UUID,
    organizer_id UUID,
    capacity INTEGER,
    rank REAL
) AS $$
    SELECT e.id, e.name, e.description, e.date, e.start_time, e.end_time, e.location,
           e.venue_id, e.organizer_id, e.capacity,
           ts_rank(e.search_vector, websearch_to_tsquery('english', search_query)) AS rank
    FROM events e
    WHERE e.search_vector @@ websearch_to_tsquery('english', search_query)
    ORDER BY rank DESC, e.date ASC, e.id ASC;
$$ LANGUAGE sql STABLE;`

const createRegisterFunction = `
CREATE OR REPLACE FUNCTION register_user_for_event(p_user_id UUID, p_event_id UUID, p_ticket_type_id UUID)
RETURNS JSON AS $$
DECLARE
    v_ticket ticket_types%ROWTYPE;
    v_event_capacity INTEGER;
    v_sold INTEGER;
    v_method TEXT;
    v_purchase_id UUID;
    v_registration_id UUID;
BEGIN
    SELECT capacity INTO v_event_capacity FROM events WHERE id = p_event_id FOR UPDATE;
    IF NOT FOUND THEN
        RAISE EXCEPTION 'Event not found' USING ERRCODE = '23503';
    END IF;

    SELECT * INTO v_ticket FROM ticket_types WHERE id = p_ticket_type_id AND event_id = p_event_id FOR UPDATE;
    IF NOT FOUND THEN
        RAISE EXCEPTION 'Ticket type not found for this event' USING ERRCODE = '23503';
    END IF;

    IF EXISTS (SELECT 1 FROM registrations WHERE user_id = p_user_id AND event_id = p_event_id) THEN
        RAISE EXCEPTION 'User is already registered for this event' USING ERRCODE = '23505';
    END IF;

    IF v_event_capacity IS NOT NULL THEN
        SELECT COUNT(*) INTO v_sold FROM registrations WHERE event_id = p_event_id;
        IF v_sold >= v_event_capacity THEN
            RAISE EXCEPTION 'Event is at full capacity' USING ERRCODE = '23514';
        END IF;
    END IF;

    IF v_ticket.capacity IS NOT NULL THEN
        SELECT COUNT(*) INTO v_sold FROM ticket_purchases
        WHERE ticket_type_id = p_ticket_type_id AND payment_status IN ('completed', 'pending');
        IF v_sold >= v_ticket.capacity THEN
            RAISE EXCEPTION 'Ticket tier % is sold out', v_ticket.tier_name USING ERRCODE = '23514';
        END IF;
    END IF;

    v_method := CASE WHEN v_ticket.price = 0 THEN 'free' ELSE 'stripe' END;

    INSERT INTO ticket_purchases (user_id, ticket_type_id, amount_paid, payment_method, payment_status)
    VALUES (p_user_id, p_ticket_type_id, v_ticket.price, v_method, 'completed')
    RETURNING id INTO v_purchase_id;

    INSERT INTO registrations (user_id, event_id, ticket_purchase_id)
    VALUES (p_user_id, p_event_id, v_purchase_id)
    RETURNING id INTO v_registration_id;

    RETURN json_build_object(
        'purchase_id', v_purchase_id,
        'registration_id', v_registration_id,
        'amount_paid', v_ticket.price,
        'payment_method', v_method
    );
END
$$ LANGUAGE plpgsql;`

const createUnregisterFunction = `
CREATE OR REPLACE FUNCTION unregister_user_from_event(p_user_id UUID, p_event_id UUID)
RETURNS JSON AS $$
DECLARE
    v_registration_id UUID;
    v_purchase_id UUID;
    v_amount NUMERIC(10,2);
    v_method TEXT;
    v_refund NUMERIC(10,2) := 0;
BEGIN
    SELECT id, ticket_purchase_id INTO v_registration_id, v_purchase_id
    FROM registrations
    WHERE user_id = p_user_id AND event_id = p_event_id
    FOR UPDATE;

    IF NOT FOUND THEN
        RAISE EXCEPTION 'No registration found for this user and event' USING ERRCODE = 'P0002';
    END IF;

    IF v_purchase_id IS NOT NULL THEN
        SELECT amount_paid, payment_method INTO v_amount, v_method
        FROM ticket_purchases
        WHERE id = v_purchase_id
        FOR UPDATE;
    END IF;

    DELETE FROM registrations WHERE id = v_registration_id;

    IF v_purchase_id IS NOT NULL THEN
        IF coalesce(v_amount, 0) > 0 THEN
            v_refund := v_amount;
            UPDATE ticket_purchases SET payment_status = 'refunded' WHERE id = v_purchase_id;
            INSERT INTO refund_audit_log (event_id, user_id, ticket_purchase_id, refunded_amount, refund_reason)
            VALUES (p_event_id, p_user_id, v_purchase_id, v_refund, 'user_cancellation');
        ELSE
            DELETE FROM ticket_purchases WHERE id = v_purchase_id;
        END IF;
    END IF;

    RETURN json_build_object(
        'refunded_amount', v_refund,
        'payment_method', coalesce(v_method, 'free'),
        'purchase_id', v_purchase_id
    );
END
$$ LANGUAGE plpgsql;`
