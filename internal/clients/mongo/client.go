package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"user-pulse/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const connectTimeout = 10 * time.Second

var (
	// ErrNotInitialized is returned by Shutdown when Init never succeeded.
	ErrNotInitialized = errors.New("mongo client not initialized")
	// ErrShutdown is returned by Shutdown once the client is already closed.
	ErrShutdown = errors.New("mongo client already shut down")
)

// driver is the seam between the singleton and the real mongo driver.
type driver interface {
	Connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
	Ping(ctx context.Context, cli *mongo.Client) error
	Disconnect(ctx context.Context, cli *mongo.Client) error
}

type mongoDriver struct{}

func (mongoDriver) Connect(_ context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return cli, nil
}

func (mongoDriver) Ping(ctx context.Context, cli *mongo.Client) error {
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	return nil
}

func (mongoDriver) Disconnect(ctx context.Context, cli *mongo.Client) error {
	if err := cli.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	return nil
}

var (
	drv    driver = mongoDriver{}
	client *mongo.Client
	db     *mongo.Database
	closed bool
	mu     sync.Mutex
)

// Init connects to MongoDB and pings the primary. The first successful call
// wins; a failed call leaves nothing behind so the next call retries.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		return client, db, nil
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(connectTimeout).
		SetAppName("user-pulse")

	ctx, cancel := withTimeout(ctx, connectTimeout)
	defer cancel()

	cli, err := drv.Connect(ctx, opts)
	if err != nil {
		log.Error("mongo connect failed", "error", err)
		return nil, nil, err
	}

	if err := drv.Ping(ctx, cli); err != nil {
		log.Error("mongo ping failed", "error", err)
		_ = drv.Disconnect(ctx, cli)
		return nil, nil, err
	}

	client = cli
	db = cli.Database(cfg.MongoDBName)
	closed = false

	log.Info("successfully connected to mongo", "db", cfg.MongoDBName)

	return client, db, nil
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Shutdown disconnects the singleton client.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		if closed {
			return ErrShutdown
		}
		return ErrNotInitialized
	}

	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	err := drv.Disconnect(ctx, client)

	client = nil
	db = nil
	closed = true

	return err
}

// Ping checks the singleton client against the primary.
func Ping(ctx context.Context) error {
	cli := Client()
	if cli == nil {
		return ErrNotInitialized
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()
	return drv.Ping(ctx, cli)
}
