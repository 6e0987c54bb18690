package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sameicp/assignment-monitor/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Keys are kept in a bson.D so compound indexes keep their field order
type index struct {
	Indexes bson.D
	Unique  bool
}

var collections = map[string][]index{
	ParticipantCollection:    {{Indexes: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: 1}}, Unique: false}},
	BalanceCollection:        {{Indexes: bson.D{}}},
	SupervisorPoolCollection: {{Indexes: bson.D{{Key: "joined_at", Value: 1}}, Unique: false}},
	AssignmentCollection:     {{Indexes: bson.D{{Key: "progress_record_id", Value: 1}}, Unique: true}},
	ProgressRecordCollection: {
		{Indexes: bson.D{{Key: "assignment_id", Value: 1}}, Unique: true},
		{Indexes: bson.D{{Key: "student_id", Value: 1}, {Key: "state", Value: 1}}, Unique: false},
	},
	UploadedWorkCollection:         {{Indexes: bson.D{}}},
	SupervisorAssignmentCollection: {{Indexes: bson.D{}}},
	TimerCollection:                {{Indexes: bson.D{{Key: "state", Value: 1}, {Key: "fire_at", Value: 1}}, Unique: false}},
	UnprocessableMsgCollection:     {{Indexes: bson.D{{Key: "created_at", Value: 1}}, Unique: false}},
}

func Setup(ctx context.Context, cfg *config.Config) error {
	// The sqlite driver creates its schema when the database is opened
	if cfg.Db.IsSQLite() {
		return nil
	}

	clientOps := options.Client().ApplyURI(cfg.Db.Address)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx) // nolint:errcheck

	// Create a context with timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Access a database and create collections.
	database := client.Database(cfg.Db.DbName)

	// Create collections.
	for collection := range collections {
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			createIndex(ctx, database, name, idx)
		}
	}

	log.Info().Msg("Collections and Indexes created successfully.")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	// Check if the collection already exists.
	existing, err := database.ListCollectionNames(ctx, bson.M{"name": collectionName})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to list collections: " + collectionName)
		return
	}
	if len(existing) > 0 {
		log.Debug().Msg(fmt.Sprintf("Collection already exists: %s, skip the rest.", collectionName))
		return
	}

	// Collections must exist before they are written inside a transaction.
	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create collection: " + collectionName)
		return
	}

	log.Debug().Msg("Collection created successfully: " + collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	if len(idx.Indexes) == 0 {
		return
	}

	index := mongo.IndexModel{
		Keys:    idx.Indexes,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, index); err != nil {
		log.Debug().Msg(fmt.Sprintf("Failed to create index on collection '%s': %v", collectionName, err))
		return
	}

	log.Debug().Msg("Index created successfully on collection: " + collectionName)
}
