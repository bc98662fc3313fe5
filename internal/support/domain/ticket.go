// Package domain holds support tickets, including the ticket
// auto-opened when a tenant reports a move-in issue.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies a ticket.
type Category string

const (
	CategoryPropertyIssue Category = "property_issue"
	CategoryBilling       Category = "billing"
	CategoryGeneral       Category = "general"
)

// Priority ranks a ticket.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketResolved TicketStatus = "resolved"
	TicketClosed   TicketStatus = "closed"
)

// Ticket is a support request raised by or on behalf of a user.
type Ticket struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Category    Category
	Priority    Priority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewMoveInIssueTicket builds the ticket auto-created when a tenant
// reports a move-in problem. The title references the offer so the
// cancellation flow can find and resolve it later.
func NewMoveInIssueTicket(userID, offerID uuid.UUID, tenantEmail, reason string, evidence []string) *Ticket {
	now := time.Now().UTC()

	summary := fmt.Sprintf("Tenant %s reported a move-in issue: %s", tenantEmail, reason)
	if len(evidence) > 0 {
		summary += fmt.Sprintf("\nEvidence: %s", strings.Join(evidence, ", "))
	}

	return &Ticket{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       MoveInIssueTitle(offerID),
		Description: summary,
		Category:    CategoryPropertyIssue,
		Priority:    PriorityHigh,
		Status:      TicketOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MoveInIssueTitle is the title format shared by ticket creation and
// the lookup that resolves the ticket on cancellation approval.
func MoveInIssueTitle(offerID uuid.UUID) string {
	return fmt.Sprintf("Move-in issue for offer %s", offerID)
}

// Repository defines the interface for ticket persistence.
type Repository interface {
	Save(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)

	// ResolveOpenByUserAndOffer resolves any open ticket belonging to
	// the user whose title references the offer. Returns how many rows
	// changed; zero is not an error.
	ResolveOpenByUserAndOffer(ctx context.Context, userID, offerID uuid.UUID) (int64, error)
}
