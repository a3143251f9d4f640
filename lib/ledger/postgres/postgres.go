// Package postgres implements the ledger interface for PostgreSQL.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" //nolint:gci // load the postgres driver that is used by the system

	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
)

// createStmt creates the ledger table. The service only ever runs INSERTs against it.
const createStmt = `CREATE TABLE IF NOT EXISTS disbursements (
	ts timestamptz NOT NULL,
	net text NOT NULL,
	address text NOT NULL,
	amount text NOT NULL,
	hash text NOT NULL,
	balance text NOT NULL
)`

type Postgres struct {
	db *sql.DB
}

// New returns a postgres client connection to the specified database in 'connection' and ensures the disbursements
// table exists.
func New(connection string) (*Postgres, error) {
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	if _, err = db.Exec(createStmt); err != nil {
		return nil, fmt.Errorf("cannot create disbursements table: %w", err)
	}

	return &Postgres{db: db}, nil
}

// ClosePostgres will close any database connection. Must be called at termination time.
func (p *Postgres) ClosePostgres() error {
	return p.db.Close()
}

// Append inserts one disbursement entry.
func (p *Postgres) Append(e ledger.Entry) error {
	_, err := p.db.Exec(
		"INSERT INTO disbursements (ts, net, address, amount, hash, balance) VALUES ($1, $2, $3, $4, $5, $6)",
		e.When, e.Net, e.Address, e.Amount, e.Hash, e.Balance)
	if err != nil {
		return fmt.Errorf("could not insert ledger entry in db: %w", err)
	}

	return nil
}
