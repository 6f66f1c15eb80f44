package utils

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB is a process-wide MongoDB handle. The underlying client is created
// lazily and health-checked with a ping before every reuse; a stale
// connection is discarded and replaced instead of surfacing to the caller.
type DB struct {
	uri  string
	name string

	mu     sync.Mutex
	client *mongo.Client
}

// NewDB creates a handle without connecting. The first Collection call
// establishes the connection.
func NewDB(uri, name string) *DB {
	return &DB{uri: uri, name: name}
}

// Collection returns a handle to the named collection, connecting or
// reconnecting as needed.
func (db *DB) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := db.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(db.name).Collection(name), nil
}

// Ping verifies the connection, establishing it if necessary.
func (db *DB) Ping(ctx context.Context) error {
	_, err := db.ensure(ctx)
	return err
}

func (db *DB) ensure(ctx context.Context) (*mongo.Client, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if db.client != nil {
		if err := db.client.Ping(pingCtx, nil); err == nil {
			return db.client, nil
		}
		// Stale connection, drop it and open a fresh one.
		log.Println("MongoDB ping failed, reconnecting")
		_ = db.client.Disconnect(context.Background())
		db.client = nil
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	defer cancelConnect()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(db.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db.client = client
	return db.client, nil
}

// Close disconnects the underlying client if one was opened.
func (db *DB) Close(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.client == nil {
		return nil
	}
	err := db.client.Disconnect(ctx)
	db.client = nil
	return err
}
