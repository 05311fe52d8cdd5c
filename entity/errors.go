package entity

import "errors"

var (
	ErrInvalidTicket  = errors.New("invalid ticket")
	ErrTicketNotFound = errors.New("ticket not found")
)
