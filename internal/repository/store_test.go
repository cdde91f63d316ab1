package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"eventease/internal/config"
	"eventease/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file need PostgreSQL. Point DB_* at a scratch database and
// set EVENTEASE_DB_TESTS=1 to run them.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	if os.Getenv("EVENTEASE_DB_TESTS") == "" || testing.Short() {
		t.Skip("EVENTEASE_DB_TESTS not set")
	}

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())
	return db
}

type storeFixture struct {
	venueID  string
	eventID  string
	freeTier string
	paidTier string
}

func seedEvent(t *testing.T, db *database.DB, name, venueName string) storeFixture {
	t.Helper()
	ctx := context.Background()
	f := storeFixture{
		venueID:  uuid.NewString(),
		eventID:  uuid.NewString(),
		freeTier: uuid.NewString(),
		paidTier: uuid.NewString(),
	}

	_, err := db.ExecContext(ctx, `INSERT INTO venues (id, name) VALUES ($1, $2)`, f.venueID, venueName)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO events (id, name, description, date, location, venue_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		f.eventID, name, "An evening of live music", time.Now().AddDate(0, 0, 3), "Riverside", f.venueID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO ticket_types (id, event_id, tier_name, price) VALUES ($1, $2, 'General Admission', 0), ($3, $2, 'VIP', 25.00)`,
		f.freeTier, f.eventID, f.paidTier)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		db.ExecContext(ctx, `DELETE FROM refund_audit_log WHERE event_id = $1`, f.eventID)
		db.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1`, f.eventID)
		db.ExecContext(ctx, `DELETE FROM ticket_purchases WHERE ticket_type_id IN ($1, $2)`, f.freeTier, f.paidTier)
		db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, f.eventID)
		db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, f.venueID)
	})

	return f
}

func TestStoreRegisterUnregister(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	tests := []struct {
		name       string
		tier       func(storeFixture) string
		wantAmount float64
		wantFree   bool
		wantMethod string
	}{
		{"free tier", func(f storeFixture) string { return f.freeTier }, 0, true, "free"},
		{"paid tier", func(f storeFixture) string { return f.paidTier }, 25, false, "stripe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := seedEvent(t, db, "Harbor Jazz Night "+uuid.NewString()[:8], "Blue Note Hall")
			userID := uuid.NewString()

			registered, err := repo.RegisterUserForEvent(ctx, userID, f.eventID, tt.tier(f))
			require.NoError(t, err)
			assert.NotEmpty(t, registered.RegistrationID)
			assert.Equal(t, tt.wantAmount, registered.AmountPaid)
			assert.Equal(t, tt.wantFree, registered.PaymentMethod.IsFree())

			_, err = repo.RegisterUserForEvent(ctx, userID, f.eventID, tt.tier(f))
			var storeErr *database.StoreError
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, database.CodeUniqueViolation, storeErr.Code)

			regs, err := repo.RegistrationsForUser(ctx, userID)
			require.NoError(t, err)
			require.Len(t, regs, 1)
			require.NotNil(t, regs[0].TicketPurchase)
			assert.Equal(t, tt.tier(f), regs[0].TicketPurchase.TicketTypeID)

			unregistered, err := repo.UnregisterUserFromEvent(ctx, userID, f.eventID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, unregistered.RefundedAmount)
			assert.Equal(t, tt.wantMethod, unregistered.PaymentMethod.String())
			assert.Equal(t, registered.PurchaseID, unregistered.PurchaseID)

			_, err = repo.UnregisterUserFromEvent(ctx, userID, f.eventID)
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, database.CodeNoDataFound, storeErr.Code)

			regs, err = repo.RegistrationsForUser(ctx, userID)
			require.NoError(t, err)
			assert.Empty(t, regs)
		})
	}
}

func TestStoreSearch(t *testing.T) {
	db := openTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	marker := "Zephyr" + uuid.NewString()[:8]
	f := seedEvent(t, db, marker+" Jazz Night", marker+" Hall")

	ranked, err := repo.RankEvents(ctx, marker)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)
	assert.Equal(t, f.eventID, ranked[0].ID)
	assert.Greater(t, ranked[0].Rank, 0.0)

	venueIDs, err := repo.VenueIDsByName(ctx, marker+" hall")
	require.NoError(t, err)
	assert.Equal(t, []string{f.venueID}, venueIDs)

	matched, err := repo.MatchEvents(ctx, "no-such-text-"+marker, venueIDs)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, f.eventID, matched[0].ID)
	assert.Len(t, matched[0].TicketTypes, 2)

	// wildcards typed by the user match literally
	matched, err = repo.MatchEvents(ctx, "%", nil)
	require.NoError(t, err)
	for _, e := range matched {
		assert.NotEqual(t, f.eventID, e.ID)
	}
}
