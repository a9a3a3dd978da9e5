package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	mongoCollection = "guild_configs"
	mongoSnapshotID = "snapshot"
)

type snapshotDocument struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoBackend keeps the snapshot as one document in MongoDB.
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
	mu     sync.RWMutex
}

// ConnectMongo establishes a connection to MongoDB and verifies it with a ping.
func ConnectMongo(ctx context.Context, mongoURL, dbName string) (*MongoBackend, error) {
	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Critical("Fallo al conectar con la base de datos.", "DB")
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Critical("Fallo al verificar conexión con la base de datos.", "DB")
		client.Disconnect(context.Background())
		return nil, err
	}

	db := client.Database(dbName)
	logger.Success("Conectado exitosamente a la base de datos.", "DB")

	return &MongoBackend{
		client: client,
		db:     db,
		col:    db.Collection(mongoCollection),
	}, nil
}

func (m *MongoBackend) Name() string { return "mongo" }

func (m *MongoBackend) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var doc snapshotDocument
	err := m.col.FindOne(ctx, bson.M{"_id": mongoSnapshotID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find snapshot: %w", err)
	}
	return doc.Data, nil
}

func (m *MongoBackend) Save(ctx context.Context, data []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx,
		bson.M{"_id": mongoSnapshotID},
		bson.M{"$set": bson.M{"data": data, "updatedAt": time.Now()}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("mongo upsert snapshot: %w", err)
	}
	return nil
}

func (m *MongoBackend) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.client == nil {
		return fmt.Errorf("not connected to database")
	}
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *MongoBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		return err
	}
	m.client = nil
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}
