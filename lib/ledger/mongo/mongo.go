// Package mongo implements the ledger interface for MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LianD-09/discord-faucet-bot/lib/ledger"
)

// Mongo implements a connection to a MongoDB database. Entries are stored in the "ledger" database, one collection
// per network.
type Mongo struct {
	c *mgo.Client
}

// New returns a Mongo client connection to the specified MongoDB database uri.
func New(uri string) (*Mongo, error) {
	// get a client
	c, err := mgo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB in %s: %w", uri, err)
	}
	// connect client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	err = c.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	return &Mongo{c: c}, nil
}

// CloseMongo will close a database connection. Must be called at termination time.
func (m *Mongo) CloseMongo() error {
	return m.c.Disconnect(context.Background())
}

// Append inserts one disbursement entry. Entries are only ever inserted, the ledger has no update path.
func (m *Mongo) Append(e ledger.Entry) error {
	col := m.c.Database("ledger").Collection(e.Net)

	_, err := col.InsertOne(context.Background(), bson.M{
		"ts":      e.When,
		"net":     e.Net,
		"address": e.Address,
		"amount":  e.Amount,
		"hash":    e.Hash,
		"balance": e.Balance,
	})
	if err != nil {
		return fmt.Errorf("could not insert ledger entry in db: %w", err)
	}

	return nil
}
