package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

const metaCollection = "meta"

// document is the stored envelope. The payload stays the exact JSON written by
// the repositories so every driver returns byte-identical records.
type document struct {
	ID        string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoDBRepository implements store.Store with one collection per table.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

var _ store.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects, verifies the connection and provisions every
// collection that does not exist yet.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to mongodb: %v", models.ErrStorageUnavailable, err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: failed to ping mongodb: %v", models.ErrStorageUnavailable, err)
	}

	r := &MongoDBRepository{client: client, dbName: dbName, logger: logger}
	if err := r.provision(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return r, nil
}

func (r *MongoDBRepository) provision(ctx context.Context) error {
	db := r.client.Database(r.dbName)
	existing, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, table := range store.Tables {
		if have[string(table)] {
			continue
		}
		if err := db.CreateCollection(ctx, string(table)); err != nil {
			return fmt.Errorf("create collection %s: %w", table, err)
		}
		r.logger.Info("collection created", zap.String("collection", string(table)))
	}

	_, err = db.Collection(metaCollection).UpdateOne(ctx,
		bson.M{"_id": "schema", "version": bson.M{"$not": bson.M{"$gte": store.SchemaVersion}}},
		bson.M{"$set": bson.M{"version": store.SchemaVersion}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) collection(table store.Table) (*mongo.Collection, error) {
	if !store.Known(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return r.client.Database(r.dbName).Collection(string(table)), nil
}

// GetAll returns every payload stored in the table.
func (r *MongoDBRepository) GetAll(ctx context.Context, table store.Table) ([][]byte, error) {
	coll, err := r.collection(table)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", table, err)
	}

	out := make([][]byte, 0, len(docs))
	for _, d := range docs {
		out = append(out, []byte(d.Payload))
	}
	return out, nil
}

// Put replaces the document stored under id, inserting it when missing.
func (r *MongoDBRepository) Put(ctx context.Context, table store.Table, id string, doc []byte) error {
	coll, err := r.collection(table)
	if err != nil {
		return err
	}
	envelope := document{ID: id, Payload: string(doc), UpdatedAt: time.Now().UTC()}
	_, err = coll.ReplaceOne(ctx, bson.M{"_id": id}, envelope, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert %s/%s: %w", table, id, err)
	}
	return nil
}

// Remove deletes the document stored under id.
func (r *MongoDBRepository) Remove(ctx context.Context, table store.Table, id string) error {
	coll, err := r.collection(table)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, id, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
