package entity

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// TicketAttrs are the caller-supplied properties used to build a ticket.
type TicketAttrs struct {
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	UserID string  `json:"userId"`
}

// Ticket is a purchasable item owned by a user. Its identifier is stored as
// ticket_id and exposed to clients as id.
type Ticket struct {
	ID     string  `json:"id" db:"ticket_id"`
	Title  string  `json:"title" db:"title"`
	Price  float64 `json:"price" db:"price"`
	UserID string  `json:"userId" db:"user_id"`
}

// NewTicket builds an in-memory ticket with a freshly assigned id.
func NewTicket(attrs TicketAttrs) (Ticket, error) {
	if err := attrs.validate(); err != nil {
		return Ticket{}, err
	}

	return Ticket{
		ID:     uuid.NewString(),
		Title:  attrs.Title,
		Price:  attrs.Price,
		UserID: attrs.UserID,
	}, nil
}

func (a TicketAttrs) validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTicket)
	}
	if math.IsNaN(a.Price) || math.IsInf(a.Price, 0) {
		return fmt.Errorf("%w: price must be a number", ErrInvalidTicket)
	}
	if a.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidTicket)
	}
	return nil
}
