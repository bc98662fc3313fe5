// Package persistence implements the rentals repositories on top of the
// shared database abstraction. Queries are written with '?' placeholders
// and rebound per driver so one implementation serves both backends.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"database/sql"

	"github.com/google/uuid"

	shareddomain "github.com/keyturn/keyturn/internal/shared/domain"
	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"

	"github.com/keyturn/keyturn/internal/rentals/domain/offer"
)

// OfferRepo persists Offer aggregates.
type OfferRepo struct {
	conn database.Connection
}

// NewOfferRepo creates a new offer repository.
func NewOfferRepo(conn database.Connection) *OfferRepo {
	return &OfferRepo{conn: conn}
}

const offerColumns = `
	id, rental_request_id, property_id, organization_id, status,
	verification_status, verification_deadline, verification_date,
	cancellation_reason, cancellation_evidence, verification_notes,
	version, created_at, updated_at
`

// Save upserts the offer and bumps its version.
func (r *OfferRepo) Save(ctx context.Context, o *offer.Offer) error {
	evidence, err := json.Marshal(evidenceOrEmpty(o.CancellationEvidence()))
	if err != nil {
		return fmt.Errorf("failed to encode cancellation evidence: %w", err)
	}

	query := database.Rebind(r.conn.Driver(), `
		INSERT INTO offers (
			id, rental_request_id, property_id, organization_id, status,
			verification_status, verification_deadline, verification_date,
			cancellation_reason, cancellation_evidence, verification_notes,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			verification_status = excluded.verification_status,
			verification_deadline = excluded.verification_deadline,
			verification_date = excluded.verification_date,
			cancellation_reason = excluded.cancellation_reason,
			cancellation_evidence = excluded.cancellation_evidence,
			verification_notes = excluded.verification_notes,
			version = excluded.version,
			updated_at = excluded.updated_at
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err = exec.Exec(ctx, query,
		o.ID(),
		uuidPtrValue(o.RentalRequestID()),
		uuidPtrValue(o.PropertyID()),
		uuidPtrValue(o.OrganizationID()),
		string(o.Status()),
		string(o.VerificationStatus()),
		timePtrValue(o.VerificationDeadline()),
		timePtrValue(o.VerificationDate()),
		o.CancellationReason(),
		string(evidence),
		o.VerificationNotes(),
		o.Version()+1,
		o.CreatedAt(),
		o.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save offer: %w", err)
	}
	o.SetVersion(o.Version() + 1)
	return nil
}

// FindByID loads an offer by its ID.
func (r *OfferRepo) FindByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	query := database.Rebind(r.conn.Driver(),
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	o, err := scanOffer(exec.QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, offer.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	return o, nil
}

// FindLatestPaidByProperty returns the most recently updated paid offer
// for the property, or nil when none exists.
func (r *OfferRepo) FindLatestPaidByProperty(ctx context.Context, propertyID uuid.UUID) (*offer.Offer, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT `+offerColumns+`
		FROM offers
		WHERE property_id = ? AND status = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	o, err := scanOffer(exec.QueryRow(ctx, query, propertyID, string(offer.StatusPaid)))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest paid offer: %w", err)
	}
	return o, nil
}

func scanOffer(row database.Row) (*offer.Offer, error) {
	var (
		id                   uuid.UUID
		rentalRequestID      uuid.NullUUID
		propertyID           uuid.NullUUID
		organizationID       uuid.NullUUID
		status               string
		verificationStatus   string
		verificationDeadline sql.NullTime
		verificationDate     sql.NullTime
		cancellationReason   string
		evidenceJSON         []byte
		verificationNotes    string
		version              int
		createdAt            sql.NullTime
		updatedAt            sql.NullTime
	)

	err := row.Scan(
		&id, &rentalRequestID, &propertyID, &organizationID, &status,
		&verificationStatus, &verificationDeadline, &verificationDate,
		&cancellationReason, &evidenceJSON, &verificationNotes,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	var evidence []string
	if len(evidenceJSON) > 0 {
		if err := json.Unmarshal(evidenceJSON, &evidence); err != nil {
			return nil, fmt.Errorf("failed to decode cancellation evidence: %w", err)
		}
	}

	base := shareddomain.RehydrateBaseEntity(id, createdAt.Time, updatedAt.Time)
	return offer.Rehydrate(
		base,
		version,
		nullUUIDPtr(rentalRequestID),
		nullUUIDPtr(propertyID),
		nullUUIDPtr(organizationID),
		offer.Status(status),
		offer.VerificationStatus(verificationStatus),
		nullTimePtr(verificationDeadline),
		nullTimePtr(verificationDate),
		cancellationReason,
		evidence,
		verificationNotes,
	), nil
}

func evidenceOrEmpty(evidence []string) []string {
	if evidence == nil {
		return []string{}
	}
	return evidence
}
