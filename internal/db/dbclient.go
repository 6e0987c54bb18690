package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sameicp/assignment-monitor/internal/config"
)

type Database struct {
	DbName string
	Client *mongo.Client
	cfg    config.DbConfig
}

// New opens the storage backend selected by the db driver config.
func New(ctx context.Context, cfg config.DbConfig) (DBClient, error) {
	if cfg.IsSQLite() {
		return NewSQLiteDatabase(cfg.SqlitePath)
	}
	return NewMongoDatabase(ctx, cfg)
}

func NewMongoDatabase(ctx context.Context, cfg config.DbConfig) (*Database, error) {
	clientOps := options.Client().ApplyURI(cfg.Address)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return nil, err
	}

	return &Database{
		DbName: cfg.DbName,
		Client: client,
		cfg:    cfg,
	}, nil
}

func (db *Database) Ping(ctx context.Context) error {
	err := db.Client.Ping(ctx, nil)
	if err != nil {
		return err
	}
	return nil
}

func (db *Database) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

func (db *Database) collection(name string) *mongo.Collection {
	return db.Client.Database(db.DbName).Collection(name)
}

func nowUnixNano() int64 {
	return time.Now().UnixNano()
}
