// Package mongostore keeps entity records in one MongoDB collection.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const CollectionName = "entity_records"

type document struct {
	ID        string    `bson:"_id"`
	Kind      string    `bson:"kind"`
	Owner     string    `bson:"owner"`
	Data      bson.M    `bson:"data"`
	Version   int       `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Backend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials uri, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Backend, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	b := New(client.Database(database))
	b.client = client
	if err := b.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return b, nil
}

func New(db *mongo.Database) *Backend {
	return &Backend{collection: db.Collection(CollectionName)}
}

func (b *Backend) ensureIndexes(ctx context.Context) error {
	_, err := b.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "kind", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create entity index: %w", err)
	}
	return nil
}

// Insert writes all records. MongoDB has no multi-document atomicity
// without a replica set, so a partial failure deletes what was written.
func (b *Backend) Insert(ctx context.Context, records []store.Record) error {
	docs := make([]any, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		docs = append(docs, toDocument(r))
		ids = append(ids, r.ID)
	}

	_, err := b.collection.InsertMany(ctx, docs)
	if err == nil {
		return nil
	}
	if _, cleanupErr := b.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); cleanupErr != nil {
		return fmt.Errorf("insert failed (%v) and cleanup failed: %w", err, cleanupErr)
	}
	return fmt.Errorf("failed to insert records: %w", err)
}

func (b *Backend) Get(ctx context.Context, kind string, owner uuid.UUID, id string) (store.Record, error) {
	var doc document
	err := b.collection.FindOne(ctx, bson.M{"_id": id, "kind": kind, "owner": owner.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Record{}, apperrors.NotFound(kind, id)
	}
	if err != nil {
		return store.Record{}, err
	}
	return fromDocument(doc)
}

func (b *Backend) Replace(ctx context.Context, record store.Record, prevVersion int) error {
	filter := bson.M{
		"_id":     record.ID,
		"kind":    record.Kind,
		"owner":   record.Owner.String(),
		"version": prevVersion,
	}
	update := bson.M{"$set": bson.M{
		"data":       bson.M(record.Fields),
		"version":    record.Version,
		"updated_at": record.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated document
	err := b.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := b.Get(ctx, record.Kind, record.Owner, record.ID); getErr != nil {
			return getErr
		}
		return &apperrors.ConflictError{Kind: record.Kind, ID: record.ID, Version: prevVersion}
	}
	return err
}

// Find pushes scalar criteria down to MongoDB; the store re-checks exact
// equality for arrays and objects.
func (b *Backend) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	filter := bson.M{"kind": q.Kind, "owner": q.Owner.String()}
	for name, value := range q.Criteria {
		switch v := value.(type) {
		case string:
			if name == schema.FieldID {
				filter["_id"] = v
			} else if !schema.IsSystemField(name) {
				filter["data."+name] = v
			}
		case float64, bool:
			if !schema.IsSystemField(name) {
				filter["data."+name] = v
			}
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := b.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]store.Record, 0, len(docs))
	for _, doc := range docs {
		r, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *Backend) DeleteOwner(ctx context.Context, owner uuid.UUID) error {
	_, err := b.collection.DeleteMany(ctx, bson.M{"owner": owner.String()})
	return err
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// Close disconnects a client opened by Connect.
func (b *Backend) Close(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	return b.client.Disconnect(ctx)
}

func toDocument(r store.Record) document {
	return document{
		ID:        r.ID,
		Kind:      r.Kind,
		Owner:     r.Owner.String(),
		Data:      bson.M(r.Fields),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// fromDocument round-trips data through relaxed extended JSON so numbers,
// arrays and nested objects come back in the same shape the schema
// validator produces.
func fromDocument(doc document) (store.Record, error) {
	owner, err := uuid.Parse(doc.Owner)
	if err != nil {
		return store.Record{}, fmt.Errorf("record %s has invalid owner %q: %w", doc.ID, doc.Owner, err)
	}

	fields := map[string]any{}
	if len(doc.Data) > 0 {
		raw, err := bson.MarshalExtJSON(doc.Data, false, false)
		if err != nil {
			return store.Record{}, fmt.Errorf("encode %s %s: %w", doc.Kind, doc.ID, err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return store.Record{}, fmt.Errorf("decode %s %s: %w", doc.Kind, doc.ID, err)
		}
	}

	return store.Record{
		ID:        doc.ID,
		Kind:      doc.Kind,
		Owner:     owner,
		Fields:    fields,
		Version:   doc.Version,
		CreatedAt: store.Timestamp(doc.CreatedAt),
		UpdatedAt: store.Timestamp(doc.UpdatedAt),
	}, nil
}
