package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sameicp/assignment-monitor/internal/db/model"
)

// SaveParticipant inserts a new participant together with its zero balance.
func (db *Database) SaveParticipant(ctx context.Context, participant *model.ParticipantDocument) error {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		_, err := db.collection(model.ParticipantCollection).InsertOne(sessCtx, participant)
		if err != nil {
			return nil, toDuplicateKeyError(err, participant.Id, "Participant already exists")
		}
		balance := model.BalanceDocument{ParticipantId: participant.Id, Amount: 0}
		_, err = db.collection(model.BalanceCollection).InsertOne(sessCtx, balance)
		if err != nil {
			return nil, toDuplicateKeyError(err, participant.Id, "Balance already exists")
		}
		return nil, nil
	}

	_, err := db.txWithRetries(ctx, transactionWork)
	return err
}

func (db *Database) FindParticipantById(ctx context.Context, participantId string) (*model.ParticipantDocument, error) {
	return findParticipant(ctx, db.collection(model.ParticipantCollection), participantId)
}

func (db *Database) FindParticipants(ctx context.Context) ([]model.ParticipantDocument, error) {
	client := db.collection(model.ParticipantCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := client.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	participants := []model.ParticipantDocument{}
	if err = cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func findParticipant(ctx context.Context, client *mongo.Collection, participantId string) (*model.ParticipantDocument, error) {
	var participant model.ParticipantDocument
	err := client.FindOne(ctx, bson.M{"_id": participantId}).Decode(&participant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     participantId,
				Message: "Participant not found",
			}
		}
		return nil, err
	}
	return &participant, nil
}
