package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/types"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

func (db *Database) SaveStake(ctx context.Context, participantId string, amount uint64) error {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		participant, err := findParticipant(sessCtx, db.collection(model.ParticipantCollection), participantId)
		if err != nil {
			return nil, err
		}

		_, err = db.collection(model.ParticipantCollection).UpdateOne(
			sessCtx, bson.M{"_id": participantId}, bson.M{"$set": bson.M{"has_staked": true}},
		)
		if err != nil {
			return nil, err
		}

		// Replace, not add: the stake is the latest deposit
		_, err = db.collection(model.BalanceCollection).UpdateOne(
			sessCtx, bson.M{"_id": participantId}, bson.M{"$set": bson.M{"amount": amount}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, err
		}

		if participant.Role == types.Supervisor {
			poolEntry := bson.M{
				"$setOnInsert": bson.M{
					"name":          participant.Name,
					"area_of_study": participant.AreaOfStudy,
					"joined_at":     nowUnixNano(),
				},
			}
			_, err = db.collection(model.SupervisorPoolCollection).UpdateOne(
				sessCtx, bson.M{"_id": participantId}, poolEntry, options.Update().SetUpsert(true),
			)
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	_, err := db.txWithRetries(ctx, transactionWork)
	return err
}

func (db *Database) FindBalance(ctx context.Context, participantId string) (uint64, error) {
	var balance model.BalanceDocument
	err := db.collection(model.BalanceCollection).FindOne(ctx, bson.M{"_id": participantId}).Decode(&balance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, &NotFoundError{
				Key:     participantId,
				Message: "Balance not found",
			}
		}
		return 0, err
	}
	return balance.Amount, nil
}

func (db *Database) FindSupervisorPool(ctx context.Context) ([]model.SupervisorPoolDocument, error) {
	client := db.collection(model.SupervisorPoolCollection)
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := client.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pool := []model.SupervisorPoolDocument{}
	if err = cursor.All(ctx, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (db *Database) ForfeitStake(
	ctx context.Context, timer *model.TimerDocument, eligiblePreviousState []types.ProgressState,
) error {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		err := transitionProgressState(
			sessCtx, db.collection(model.ProgressRecordCollection),
			timer.ProgressRecordId, types.Forfeited, eligiblePreviousState,
		)
		if err != nil {
			return nil, err
		}

		_, err = db.collection(model.BalanceCollection).UpdateOne(
			sessCtx, bson.M{"_id": timer.ParticipantId}, bson.M{"$set": bson.M{"amount": uint64(0)}},
		)
		if err != nil {
			return nil, err
		}

		_, err = db.collection(model.TimerCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": timer.AssignmentId, "state": types.TimerArmed},
			bson.M{"$set": bson.M{"state": types.TimerFired}},
		)
		if err != nil {
			return nil, err
		}
		return nil, nil
	}

	_, err := db.txWithRetries(ctx, transactionWork)
	return err
}

func (db *Database) ClaimStake(ctx context.Context, progressRecordId, studentId string) (uint64, error) {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		filter := bson.M{
			"_id":        progressRecordId,
			"student_id": studentId,
			"state":      bson.M{"$in": utils.QualifiedStatesToClaimed()},
		}
		update := bson.M{"$set": bson.M{"state": types.Claimed, "is_finished": types.Claimed.IsFinished()}}
		result, err := db.collection(model.ProgressRecordCollection).UpdateOne(sessCtx, filter, update)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, &NotFoundError{
				Key:     progressRecordId,
				Message: "Progress record not found or not eligible for claim",
			}
		}

		var previous model.BalanceDocument
		err = db.collection(model.BalanceCollection).FindOneAndUpdate(
			sessCtx, bson.M{"_id": studentId}, bson.M{"$set": bson.M{"amount": uint64(0)}},
			options.FindOneAndUpdate().SetReturnDocument(options.Before),
		).Decode(&previous)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, &NotFoundError{
					Key:     studentId,
					Message: "Balance not found",
				}
			}
			return nil, err
		}

		_, err = db.collection(model.ParticipantCollection).UpdateOne(
			sessCtx, bson.M{"_id": studentId}, bson.M{"$set": bson.M{"has_staked": false}},
		)
		if err != nil {
			return nil, err
		}
		return previous.Amount, nil
	}

	result, err := db.txWithRetries(ctx, transactionWork)
	if err != nil {
		return 0, err
	}
	return result.(uint64), nil
}
