// Package offer contains the Offer aggregate and its move-in
// verification state machine.
package offer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyturn/keyturn/internal/shared/domain"
)

var (
	ErrOfferNotFound  = errors.New("offer not found")
	ErrOfferCancelled = errors.New("offer is cancelled")
	ErrReasonRequired = errors.New("a reason is required to report a move-in issue")
	ErrNotOfferTenant = errors.New("caller is not the tenant of this offer")
)

// Status is the commercial lifecycle of an offer.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusPaid     Status = "paid"
	StatusExpired  Status = "expired"
)

// VerificationStatus is the move-in verification state of a paid offer.
//
// Transitions are monotonic except for the single issue_reported->success
// reject transition; cancelled is terminal.
type VerificationStatus string

const (
	VerificationPending       VerificationStatus = "pending"
	VerificationSuccess       VerificationStatus = "success"
	VerificationIssueReported VerificationStatus = "issue_reported"
	VerificationCancelled     VerificationStatus = "cancelled"
)

// IsTerminal returns true if no further verification transition is allowed.
func (s VerificationStatus) IsTerminal() bool {
	return s == VerificationCancelled
}

// Offer is the paid rental agreement whose move-in outcome this
// subsystem tracks. It references, but does not own, the rental
// request, the property, and the landlord organization.
type Offer struct {
	domain.BaseAggregateRoot
	rentalRequestID *uuid.UUID
	propertyID      *uuid.UUID
	organizationID  *uuid.UUID
	status          Status

	verificationStatus   VerificationStatus
	verificationDeadline *time.Time
	verificationDate     *time.Time
	cancellationReason   string
	cancellationEvidence []string
	verificationNotes    string
}

// NewOffer creates an offer in its pending commercial state.
func NewOffer(rentalRequestID, propertyID, organizationID *uuid.UUID) *Offer {
	return &Offer{
		BaseAggregateRoot:  domain.NewBaseAggregateRoot(),
		rentalRequestID:    rentalRequestID,
		propertyID:         propertyID,
		organizationID:     organizationID,
		status:             StatusPending,
		verificationStatus: VerificationPending,
	}
}

// Rehydrate recreates an offer from persisted state.
func Rehydrate(
	base domain.BaseEntity,
	version int,
	rentalRequestID, propertyID, organizationID *uuid.UUID,
	status Status,
	verificationStatus VerificationStatus,
	verificationDeadline, verificationDate *time.Time,
	cancellationReason string,
	cancellationEvidence []string,
	verificationNotes string,
) *Offer {
	return &Offer{
		BaseAggregateRoot:    domain.RehydrateBaseAggregateRoot(base, version),
		rentalRequestID:      rentalRequestID,
		propertyID:           propertyID,
		organizationID:       organizationID,
		status:               status,
		verificationStatus:   verificationStatus,
		verificationDeadline: verificationDeadline,
		verificationDate:     verificationDate,
		cancellationReason:   cancellationReason,
		cancellationEvidence: cancellationEvidence,
		verificationNotes:    verificationNotes,
	}
}

func (o *Offer) RentalRequestID() *uuid.UUID            { return o.rentalRequestID }
func (o *Offer) PropertyID() *uuid.UUID                 { return o.propertyID }
func (o *Offer) OrganizationID() *uuid.UUID             { return o.organizationID }
func (o *Offer) Status() Status                         { return o.status }
func (o *Offer) VerificationStatus() VerificationStatus { return o.verificationStatus }
func (o *Offer) VerificationDeadline() *time.Time       { return o.verificationDeadline }
func (o *Offer) VerificationDate() *time.Time           { return o.verificationDate }
func (o *Offer) CancellationReason() string             { return o.cancellationReason }
func (o *Offer) CancellationEvidence() []string         { return o.cancellationEvidence }
func (o *Offer) VerificationNotes() string              { return o.verificationNotes }

// EffectiveDeadline returns the stored deadline when present, otherwise
// one derived from the rental request's move-in date. This is the
// single place that fallback lives so callers cannot silently diverge
// from the stored value.
func (o *Offer) EffectiveDeadline(moveInDate *time.Time) time.Time {
	if o.verificationDeadline != nil {
		return *o.verificationDeadline
	}
	return ComputeDeadline(moveInDate)
}

// MarkPaid moves the offer into its paid state and starts the move-in
// verification window. The deadline is set once; later calls keep the
// original value.
func (o *Offer) MarkPaid(moveInDate *time.Time) {
	o.status = StatusPaid
	o.verificationStatus = VerificationPending
	if o.verificationDeadline == nil {
		d := ComputeDeadline(moveInDate)
		o.verificationDeadline = &d
	}
	o.Touch()
}

// VerifyMoveIn records a successful move-in. The transition is allowed
// from any prior status except the terminal cancelled state; the tenant
// confirming success is authoritative even after an issue was reported.
func (o *Offer) VerifyMoveIn() error {
	if o.verificationStatus.IsTerminal() {
		return ErrOfferCancelled
	}
	now := time.Now().UTC()
	o.verificationStatus = VerificationSuccess
	o.verificationDate = &now
	o.Touch()

	o.AddDomainEvent(NewMoveInVerified(o.ID(), now))
	return nil
}

// ReportIssue records a move-in problem with supporting evidence.
// Reason is required; evidence is an ordered list of stored file paths
// and is immutable once set.
func (o *Offer) ReportIssue(reason, notes string, evidence []string) error {
	if o.verificationStatus.IsTerminal() {
		return ErrOfferCancelled
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	o.verificationStatus = VerificationIssueReported
	o.cancellationReason = reason
	o.cancellationEvidence = append([]string(nil), evidence...)
	if notes != "" {
		o.verificationNotes = notes
	}
	o.Touch()

	o.AddDomainEvent(NewMoveInIssueReported(o.ID(), reason, o.cancellationEvidence))
	return nil
}

// Cancel moves the offer into its terminal cancelled state. A second
// cancellation attempt fails so racing admin approvals cannot both
// trigger the cascading cleanup.
func (o *Offer) Cancel(notes string) error {
	if o.verificationStatus == VerificationCancelled {
		return ErrOfferCancelled
	}
	o.verificationStatus = VerificationCancelled
	o.verificationNotes = notes
	o.Touch()

	o.AddDomainEvent(NewOfferCancelled(o.ID(), o.cancellationReason))
	return nil
}

// RejectCancellation reverts a reported issue back to a successful
// move-in without touching any related entity. Rejecting an offer that
// is already successful is a harmless overwrite of the notes.
func (o *Offer) RejectCancellation(notes string) error {
	if o.verificationStatus == VerificationCancelled {
		return ErrOfferCancelled
	}
	o.verificationStatus = VerificationSuccess
	o.verificationNotes = notes
	o.Touch()

	o.AddDomainEvent(NewCancellationRejected(o.ID()))
	return nil
}
