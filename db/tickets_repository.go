package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"

	"tickets/entity"
	"tickets/pubsub/bus"
	"tickets/pubsub/outbox"
)

type TicketsPostgresRepository struct {
	db     *sqlx.DB
	logger watermill.LoggerAdapter
}

func NewTicketsPostgresRepository(db *sqlx.DB, logger watermill.LoggerAdapter) *TicketsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &TicketsPostgresRepository{db: db, logger: logger}
}

// Add stores the ticket and publishes TicketCreated through the outbox in the
// same transaction. Adding an already stored ticket is a no-op.
func (r *TicketsPostgresRepository) Add(ctx context.Context, ticket entity.Ticket) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO tickets (ticket_id, title, price, user_id)
		VALUES (:ticket_id, :title, :price, :user_id)
		ON CONFLICT DO NOTHING
	`, ticket)
	if err != nil {
		return fmt.Errorf("could not add ticket: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil
	}

	outboxPublisher, err := outbox.NewPublisherForTx(tx.Tx, r.logger)
	if err != nil {
		return err
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return fmt.Errorf("could not create event bus: %w", err)
	}

	if err = eventBus.Publish(ctx, entity.NewTicketCreated(ticket)); err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}

func (r *TicketsPostgresRepository) FindByID(ctx context.Context, ticketID string) (entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.GetContext(ctx, &ticket, `
		SELECT ticket_id, title, price, user_id
		FROM tickets
		WHERE ticket_id = $1
	`, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Ticket{}, entity.ErrTicketNotFound
	}
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("could not get ticket %s: %w", ticketID, err)
	}
	return ticket, nil
}

func (r *TicketsPostgresRepository) FindAll(ctx context.Context) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	err := r.db.SelectContext(ctx, &tickets, `
		SELECT ticket_id, title, price, user_id
		FROM tickets
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("could not list tickets: %w", err)
	}
	return tickets, nil
}
