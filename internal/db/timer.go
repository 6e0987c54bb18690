package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/types"
)

func (db *Database) SaveTimer(ctx context.Context, timer *model.TimerDocument) error {
	_, err := db.collection(model.TimerCollection).ReplaceOne(
		ctx, bson.M{"_id": timer.AssignmentId}, timer, options.Replace().SetUpsert(true),
	)
	return err
}

func (db *Database) FindTimer(ctx context.Context, assignmentId string) (*model.TimerDocument, error) {
	var timer model.TimerDocument
	err := db.collection(model.TimerCollection).FindOne(ctx, bson.M{"_id": assignmentId}).Decode(&timer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     assignmentId,
				Message: "Timer not found",
			}
		}
		return nil, err
	}
	return &timer, nil
}

func (db *Database) ConsumeTimer(ctx context.Context, assignmentId string) (*model.TimerDocument, error) {
	var timer model.TimerDocument
	err := db.collection(model.TimerCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": assignmentId, "state": types.TimerArmed},
		bson.M{"$set": bson.M{"state": types.TimerCanceled}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&timer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     assignmentId,
				Message: "Timer not found or already consumed",
			}
		}
		return nil, err
	}
	return &timer, nil
}

func (db *Database) FindArmedTimers(ctx context.Context) ([]model.TimerDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fire_at", Value: 1}})
	cursor, err := db.collection(model.TimerCollection).Find(ctx, bson.M{"state": types.TimerArmed}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	timers := []model.TimerDocument{}
	if err = cursor.All(ctx, &timers); err != nil {
		return nil, err
	}
	return timers, nil
}
