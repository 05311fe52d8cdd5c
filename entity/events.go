package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

type TicketCreated struct {
	Header   EventHeader `json:"header"`
	TicketID string      `json:"ticket_id"`
	Title    string      `json:"title"`
	Price    float64     `json:"price"`
	UserID   string      `json:"user_id"`
}

func NewTicketCreated(ticket Ticket) TicketCreated {
	return TicketCreated{
		Header:   NewEventHeader(),
		TicketID: ticket.ID,
		Title:    ticket.Title,
		Price:    ticket.Price,
		UserID:   ticket.UserID,
	}
}
