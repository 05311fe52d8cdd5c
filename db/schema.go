package db

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"

	"tickets/pubsub/outbox"
)

func InitializeDatabaseSchema(db *sqlx.DB, logger watermill.LoggerAdapter) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tickets (
			ticket_id UUID PRIMARY KEY,
			title TEXT NOT NULL CHECK (title <> ''),
			price NUMERIC NOT NULL,
			user_id TEXT NOT NULL CHECK (user_id <> ''),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("could not create tickets table: %w", err)
	}

	return outbox.InitializeSchema(db.DB, logger)
}
