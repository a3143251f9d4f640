// Package db implements the opening and graceful closing of ledger backends.
package db

import (
	"fmt"

	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger/file"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger/mongo"
	"github.com/LianD-09/discord-faucet-bot/lib/ledger/postgres"
)

const (
	FILE     string = "file"
	MONGODB  string = "mongodb"
	POSTGRES string = "postgresql"
)

// New returns a new ledger backend according to the options (backend type). For the file backend, connection is the
// file path.
func New(options, connection string) (ledger.Ledger, error) {
	switch options {
	case FILE:
		return file.New(connection)
	case MONGODB:
		return mongo.New(connection)
	case POSTGRES:
		return postgres.New(connection)
	}

	return nil, fmt.Errorf("unknown ledger backend type %q", options)
}

// Close gracefully closes the ledger backend.
func Close(options string, l ledger.Ledger) error {
	switch options {
	case FILE:
		return l.(*file.File).CloseFile()
	case MONGODB:
		return l.(*mongo.Mongo).CloseMongo()
	case POSTGRES:
		return l.(*postgres.Postgres).ClosePostgres()
	}

	return nil
}
