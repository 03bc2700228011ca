package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// TicketCategory enumerates supported problem categories.
type TicketCategory string

const (
	TicketCategoryGeneral   TicketCategory = "General"
	TicketCategoryTechnical TicketCategory = "Technical"
	TicketCategoryBilling   TicketCategory = "Billing"
	TicketCategoryFeature   TicketCategory = "Feature Request"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	ExternalKey string
	RequesterID string
	Title       string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidCategory reports whether c is a recognized category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case TicketCategoryGeneral, TicketCategoryTechnical, TicketCategoryBilling, TicketCategoryFeature:
		return true
	}
	return false
}

// ValidPriority reports whether p is a recognized priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}
