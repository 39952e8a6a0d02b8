package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/schemasmith/schemasmith/internal/schema"
)

const snapshotCollection = "snapshots"

// MongoStore keeps snapshots in a MongoDB collection, one document per project slot.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type snapshotDocument struct {
	ID          string    `bson:"_id"`
	Project     string    `bson:"project"`
	Slot        string    `bson:"slot"`
	Fingerprint string    `bson:"fingerprint"`
	Data        []byte    `bson:"data"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// NewMongoStore connects to the given MongoDB instance and verifies it is reachable.
func NewMongoStore(ctx context.Context, connectionString, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(snapshotCollection),
	}, nil
}

// Load reads a slot. A missing document yields ErrNotFound.
func (m *MongoStore) Load(ctx context.Context, project string, slot Slot) (*schema.Schema, error) {
	var doc snapshotDocument
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key(project, slot)}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s snapshot: %w", slot, err)
	}
	s, err := Decode(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("loading %s snapshot of %s: %w", slot, project, err)
	}
	return s, nil
}

// Fingerprint reads only the stored fingerprint of a slot.
func (m *MongoStore) Fingerprint(ctx context.Context, project string, slot Slot) (string, error) {
	var doc struct {
		Fingerprint string `bson:"fingerprint"`
	}
	opts := options.FindOne().SetProjection(bson.D{{Key: "fingerprint", Value: 1}})
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key(project, slot)}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading %s fingerprint: %w", slot, err)
	}
	return doc.Fingerprint, nil
}

// Save upserts a slot.
func (m *MongoStore) Save(ctx context.Context, project string, slot Slot, s *schema.Schema) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	fp, err := Fingerprint(s)
	if err != nil {
		return err
	}
	doc := snapshotDocument{
		ID:          key(project, slot),
		Project:     project,
		Slot:        string(slot),
		Fingerprint: fp,
		Data:        data,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err = m.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("writing %s snapshot: %w", slot, err)
	}
	return nil
}

// Delete removes every slot of project.
func (m *MongoStore) Delete(ctx context.Context, project string) error {
	if _, err := m.coll.DeleteMany(ctx, bson.D{{Key: "project", Value: project}}); err != nil {
		return fmt.Errorf("removing snapshots of %s: %w", project, err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
