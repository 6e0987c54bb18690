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

// SaveAssignment creates the assignment, its progress record and its armed
// timer, and points the supervisor's single-slot index at the new record.
func (db *Database) SaveAssignment(
	ctx context.Context, assignment *model.AssignmentDocument,
	progress *model.ProgressRecordDocument, timer *model.TimerDocument,
) error {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		_, err := db.collection(model.AssignmentCollection).InsertOne(sessCtx, assignment)
		if err != nil {
			return nil, toDuplicateKeyError(err, assignment.Id, "Assignment already exists")
		}

		_, err = db.collection(model.ProgressRecordCollection).InsertOne(sessCtx, progress)
		if err != nil {
			return nil, toDuplicateKeyError(err, progress.Id, "Progress record already exists")
		}

		_, err = db.collection(model.SupervisorAssignmentCollection).UpdateOne(
			sessCtx,
			bson.M{"_id": progress.SupervisorId},
			bson.M{"$set": bson.M{"progress_record_id": progress.Id}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, err
		}

		_, err = db.collection(model.TimerCollection).InsertOne(sessCtx, timer)
		if err != nil {
			return nil, toDuplicateKeyError(err, timer.AssignmentId, "Timer already exists")
		}
		return nil, nil
	}

	_, err := db.txWithRetries(ctx, transactionWork)
	return err
}

func (db *Database) FindAssignmentById(ctx context.Context, assignmentId string) (*model.AssignmentDocument, error) {
	var assignment model.AssignmentDocument
	err := db.collection(model.AssignmentCollection).FindOne(ctx, bson.M{"_id": assignmentId}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     assignmentId,
				Message: "Assignment not found",
			}
		}
		return nil, err
	}
	return &assignment, nil
}

func (db *Database) FindProgressRecordById(ctx context.Context, progressRecordId string) (*model.ProgressRecordDocument, error) {
	var progress model.ProgressRecordDocument
	err := db.collection(model.ProgressRecordCollection).FindOne(ctx, bson.M{"_id": progressRecordId}).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     progressRecordId,
				Message: "Progress record not found",
			}
		}
		return nil, err
	}
	return &progress, nil
}

func (db *Database) FindProgressRecords(ctx context.Context) ([]model.ProgressRecordDocument, error) {
	// Progress record ids are ULIDs, sorting by id keeps creation order
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := db.collection(model.ProgressRecordCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []model.ProgressRecordDocument{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (db *Database) FindActiveSupervision(ctx context.Context, supervisorId string) (string, error) {
	var supervision model.SupervisorAssignmentDocument
	err := db.collection(model.SupervisorAssignmentCollection).FindOne(ctx, bson.M{"_id": supervisorId}).Decode(&supervision)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", &NotFoundError{
				Key:     supervisorId,
				Message: "No active supervision for supervisor",
			}
		}
		return "", err
	}
	return supervision.ProgressRecordId, nil
}

// TransitionProgressState updates the state of a progress record to a new state
// It returns an NotFoundError if the record is not found or not in the eligible state to transition
func (db *Database) TransitionProgressState(
	ctx context.Context, progressRecordId string, newState types.ProgressState, eligiblePreviousState []types.ProgressState,
) error {
	return transitionProgressState(
		ctx, db.collection(model.ProgressRecordCollection), progressRecordId, newState, eligiblePreviousState,
	)
}

func transitionProgressState(
	ctx context.Context, client *mongo.Collection,
	progressRecordId string, newState types.ProgressState, eligiblePreviousState []types.ProgressState,
) error {
	filter := bson.M{"_id": progressRecordId, "state": bson.M{"$in": eligiblePreviousState}}
	update := bson.M{"$set": bson.M{"state": newState, "is_finished": newState.IsFinished()}}
	result, err := client.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{
			Key:     progressRecordId,
			Message: "Progress record not found or not in eligible state to transition",
		}
	}
	return nil
}

func (db *Database) SaveUploadedWork(ctx context.Context, assignmentId, work string) error {
	_, err := db.collection(model.UploadedWorkCollection).UpdateOne(
		ctx,
		bson.M{"_id": assignmentId},
		bson.M{"$set": bson.M{"work": work, "uploaded_at": nowUnixNano()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (db *Database) FindUploadedWork(ctx context.Context, assignmentId string) (string, error) {
	var uploaded model.UploadedWorkDocument
	err := db.collection(model.UploadedWorkCollection).FindOne(ctx, bson.M{"_id": assignmentId}).Decode(&uploaded)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", &NotFoundError{
				Key:     assignmentId,
				Message: "Work not uploaded",
			}
		}
		return "", err
	}
	return uploaded.Work, nil
}
