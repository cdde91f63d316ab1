package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"eventease/internal/database"
	"eventease/internal/models"
)

type RegistrationRepository struct {
	db *database.DB
}

func NewRegistrationRepository(db *database.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// RegistrationsForUser returns the user's registrations with the purchased tier
func (r *RegistrationRepository) RegistrationsForUser(ctx context.Context, userID string) ([]models.Registration, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_purchase_id, r.registered_at, tp.ticket_type_id
		FROM registrations r
		LEFT JOIN ticket_purchases tp ON tp.id = r.ticket_purchase_id
		WHERE r.user_id = $1
		ORDER BY r.registered_at DESC`

	rows, err := r.db.QueryWithRetry(ctx, query, userID)
	if err != nil {
		return nil, database.AsStoreError(err)
	}
	defer rows.Close()

	registrations := []models.Registration{}
	for rows.Next() {
		var reg models.Registration
		var ticketTypeID sql.NullString
		err := rows.Scan(
			&reg.ID,
			&reg.UserID,
			&reg.EventID,
			&reg.TicketPurchaseID,
			&reg.RegisteredAt,
			&ticketTypeID,
		)
		if err != nil {
			return nil, err
		}
		if ticketTypeID.Valid {
			reg.TicketPurchase = &models.PurchaseRef{TicketTypeID: ticketTypeID.String}
		}
		registrations = append(registrations, reg)
	}

	return registrations, rows.Err()
}

// DetailedForUser returns registrations joined with event and purchase detail, newest first
func (r *RegistrationRepository) DetailedForUser(ctx context.Context, userID string) ([]models.RegistrationDetail, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_purchase_id, r.registered_at,
		       e.id, e.name, e.description, e.date, e.start_time, e.end_time, e.location,
		       e.venue_id, e.organizer_id, e.capacity, e.created_at, e.updated_at,
		       v.id, v.name, v.address,
		       o.id, o.name, o.contact_info,
		       org.id, org.name, org.type,
		       tp.id, tp.user_id, tp.ticket_type_id, tp.amount_paid, tp.payment_method,
		       tp.payment_reference, tp.payment_status, tp.quantity, tp.purchased_at,
		       tt.tier_name, tt.price, tt.description
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		LEFT JOIN venues v ON v.id = e.venue_id
		LEFT JOIN organizers o ON o.id = e.organizer_id
		LEFT JOIN organizations org ON org.id = o.organization_id
		LEFT JOIN ticket_purchases tp ON tp.id = r.ticket_purchase_id
		LEFT JOIN ticket_types tt ON tt.id = tp.ticket_type_id
		WHERE r.user_id = $1
		ORDER BY r.registered_at DESC`

	rows, err := r.db.QueryWithRetry(ctx, query, userID)
	if err != nil {
		return nil, database.AsStoreError(err)
	}
	defer rows.Close()

	details := []models.RegistrationDetail{}
	for rows.Next() {
		var (
			detail models.RegistrationDetail
			event  eventRow
			p      purchaseRow
		)

		dest := []any{
			&detail.ID,
			&detail.UserID,
			&detail.EventID,
			&detail.TicketPurchaseID,
			&detail.RegisteredAt,
		}
		dest = append(dest, event.dest()...)
		dest = append(dest, p.dest()...)

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		e := event.build()
		detail.Event = &e
		detail.Purchase = p.build()
		if detail.Purchase != nil {
			detail.TicketPurchase = &models.PurchaseRef{TicketTypeID: detail.Purchase.TicketTypeID}
			detail.PaymentLabel = detail.Purchase.StatusLabel()
		} else {
			detail.PaymentLabel = models.PaymentStatus("").Label(0, models.FreePayment())
		}

		details = append(details, detail)
	}

	return details, rows.Err()
}

type purchaseRow struct {
	id, userID, ticketTypeID sql.NullString
	amountPaid               sql.NullFloat64
	method                   models.PaymentMethod
	reference                *string
	status                   sql.NullString
	quantity                 sql.NullInt64
	purchasedAt              sql.NullTime
	tierName                 sql.NullString
	tierPrice                sql.NullFloat64
	tierDescription          *string
}

func (p *purchaseRow) dest() []any {
	return []any{
		&p.id, &p.userID, &p.ticketTypeID, &p.amountPaid, &p.method,
		&p.reference, &p.status, &p.quantity, &p.purchasedAt,
		&p.tierName, &p.tierPrice, &p.tierDescription,
	}
}

func (p *purchaseRow) build() *models.TicketPurchase {
	if !p.id.Valid {
		return nil
	}

	purchase := &models.TicketPurchase{
		ID:               p.id.String,
		UserID:           p.userID.String,
		TicketTypeID:     p.ticketTypeID.String,
		AmountPaid:       p.amountPaid.Float64,
		PaymentMethod:    p.method,
		PaymentReference: p.reference,
		PaymentStatus:    models.PaymentStatus(p.status.String),
		Quantity:         int(p.quantity.Int64),
		PurchasedAt:      p.purchasedAt.Time,
	}

	if p.tierName.Valid {
		purchase.TicketType = &models.TicketType{
			ID:          p.ticketTypeID.String,
			TierName:    p.tierName.String,
			Price:       p.tierPrice.Float64,
			Description: p.tierDescription,
		}
	}

	return purchase
}

// storeRegisterResult is the JSON returned by register_user_for_event
type storeRegisterResult struct {
	PurchaseID     string               `json:"purchase_id"`
	RegistrationID string               `json:"registration_id"`
	AmountPaid     float64              `json:"amount_paid"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
}

// storeUnregisterResult is the JSON returned by unregister_user_from_event
type storeUnregisterResult struct {
	RefundedAmount float64              `json:"refunded_amount"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
	PurchaseID     *string              `json:"purchase_id"`
}

// RegisterUserForEvent runs the atomic register procedure. Store errors come back as *database.StoreError.
func (r *RegistrationRepository) RegisterUserForEvent(ctx context.Context, userID, eventID, ticketTypeID string) (*models.RegisterResult, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT register_user_for_event($1, $2, $3)`,
		userID, eventID, ticketTypeID,
	).Scan(&raw)
	if err != nil {
		return nil, database.AsStoreError(err)
	}

	return decodeRegisterResult(raw)
}

// UnregisterUserFromEvent runs the atomic unregister procedure; the store computes the refund
func (r *RegistrationRepository) UnregisterUserFromEvent(ctx context.Context, userID, eventID string) (*models.UnregisterResult, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT unregister_user_from_event($1, $2)`,
		userID, eventID,
	).Scan(&raw)
	if err != nil {
		return nil, database.AsStoreError(err)
	}

	return decodeUnregisterResult(raw)
}

func decodeRegisterResult(raw []byte) (*models.RegisterResult, error) {
	var result storeRegisterResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode register result: %w", err)
	}
	if result.RegistrationID == "" {
		return nil, fmt.Errorf("failed to decode register result: missing registration_id")
	}

	return &models.RegisterResult{
		PurchaseID:     result.PurchaseID,
		RegistrationID: result.RegistrationID,
		AmountPaid:     result.AmountPaid,
		PaymentMethod:  result.PaymentMethod,
	}, nil
}

// decodeUnregisterResult treats a null purchase_id as a registration without a purchase
func decodeUnregisterResult(raw []byte) (*models.UnregisterResult, error) {
	var result storeUnregisterResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode unregister result: %w", err)
	}

	unregistered := &models.UnregisterResult{
		RefundedAmount: result.RefundedAmount,
		PaymentMethod:  result.PaymentMethod,
	}
	if result.PurchaseID != nil {
		unregistered.PurchaseID = *result.PurchaseID
	}

	return unregistered, nil
}
