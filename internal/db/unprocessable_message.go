package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/utils"
)

func (db *Database) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error {
	unprocessableMsgClient := db.collection(model.UnprocessableMsgCollection)

	_, err := unprocessableMsgClient.InsertOne(ctx, model.NewUnprocessableMessageDocument(
		utils.NewProgressRecordId(), messageBody, receipt, nowUnixNano(),
	))
	if err != nil {
		return err
	}

	return nil
}

func (db *Database) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	client := db.collection(model.UnprocessableMsgCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := client.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	unprocessableMessages := []model.UnprocessableMessageDocument{}
	if err = cursor.All(ctx, &unprocessableMessages); err != nil {
		return nil, err
	}

	return unprocessableMessages, nil
}

func (db *Database) DeleteUnprocessableMessage(ctx context.Context, id string) error {
	unprocessableMsgClient := db.collection(model.UnprocessableMsgCollection)
	_, err := unprocessableMsgClient.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
