// Package mongo implements the interface for MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tarancss/supply/lib/store"
)

// Database, collection and document key holding the snapshot.
const (
	Database   = "supply"
	Collection = "snapshot"
	key        = "current"
)

// Mongo implements a connection to a MongoDB database.
type Mongo struct {
	c   *mgo.Client
	col *mgo.Collection
}

// MongoSnapshot implements a store snapshot to MongoDB. Amounts are saved as decimal strings since BSON has no
// arbitrary precision integer.
type MongoSnapshot struct {
	Key               string    `bson:"_id"`
	ID                string    `bson:"id"`
	Symbol            string    `bson:"symbol"`
	TotalSupply       string    `bson:"totalSupply"`
	CirculatingSupply string    `bson:"circulatingSupply"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

// Snapshot converts a MongoSnapshot to store.Snapshot type.
func (ms MongoSnapshot) Snapshot() (s store.Snapshot, err error) {
	s = store.Snapshot{ID: ms.ID, Symbol: ms.Symbol, UpdatedAt: ms.UpdatedAt.UTC()}

	if s.TotalSupply, err = store.ParseAmount(ms.TotalSupply); err != nil {
		return store.Snapshot{}, err
	}

	if s.CirculatingSupply, err = store.ParseAmount(ms.CirculatingSupply); err != nil {
		return store.Snapshot{}, err
	}

	return s, nil
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

	if err = c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	return &Mongo{c: c, col: c.Database(Database).Collection(Collection)}, nil
}

// CloseMongo will close a database connection. Must be called at termination time.
func (m *Mongo) CloseMongo() error {
	return m.c.Disconnect(context.Background())
}

// Upsert saves the snapshot in a single findAndModify command, so the check for an existing document and the write
// are atomic on the server. The ID is only set when the document is inserted.
func (m *Mongo) Upsert(ctx context.Context, s store.Snapshot) (store.Snapshot, error) {
	if err := s.Check(); err != nil {
		return store.Snapshot{}, err
	}

	id, err := store.NewID()
	if err != nil {
		return store.Snapshot{}, err
	}

	update := bson.D{
		{
			Key: "$set", Value: bson.D{
				{Key: "symbol", Value: s.Symbol},
				{Key: "totalSupply", Value: s.TotalSupply.String()},
				{Key: "circulatingSupply", Value: s.CirculatingSupply.String()},
				{Key: "updatedAt", Value: time.Now().UTC()},
			},
		},
		{
			Key: "$setOnInsert", Value: bson.D{
				{Key: "id", Value: id},
			},
		},
	}

	var ms MongoSnapshot

	err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": key}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).Decode(&ms)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("could not save snapshot in db: %w", err)
	}

	return ms.Snapshot()
}

// Fetch loads the snapshot from db.
func (m *Mongo) Fetch(ctx context.Context) (store.Snapshot, bool, error) {
	var ms MongoSnapshot

	err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&ms)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return store.Snapshot{}, false, nil
	}

	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("could not load snapshot from db: %w", err)
	}

	s, err := ms.Snapshot()
	if err != nil {
		return store.Snapshot{}, false, err
	}

	return s, true, nil
}

// DeleteSnapshot deletes the snapshot from db. It is only used to reset test databases.
func (m *Mongo) DeleteSnapshot(ctx context.Context) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key})

	return err
}

var _ store.DB = (*Mongo)(nil)
