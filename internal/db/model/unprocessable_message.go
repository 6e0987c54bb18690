package model

const UnprocessableMsgCollection = "unprocessable_messages"

// UnprocessableMessageDocument keeps a queue message that ran out of retries so
// it can be replayed later.
type UnprocessableMessageDocument struct {
	Id          string `bson:"_id"`
	MessageBody string `bson:"message_body"`
	Receipt     string `bson:"receipt"`
	CreatedAt   int64  `bson:"created_at"`
}

func NewUnprocessableMessageDocument(id, messageBody, receipt string, createdAt int64) *UnprocessableMessageDocument {
	return &UnprocessableMessageDocument{
		Id:          id,
		MessageBody: messageBody,
		Receipt:     receipt,
		CreatedAt:   createdAt,
	}
}
