package databases

// go generate: mockery --name ChatDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const chatName = "teamChat"

// ChatDatabase contains the methods to use with the team chat database
type ChatDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.ChatMessage, error)
	InsertOne(context.Context, models.ChatMessage, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type chatDatabase struct {
	db DatabaseHelper
}

// NewChatDatabase initializes a new instance of chat database with the provided db connection
func NewChatDatabase(db DatabaseHelper) ChatDatabase {
	return &chatDatabase{
		db: db,
	}
}

func (c *chatDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	cur, err := c.db.Collection(chatName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&messages)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *chatDatabase) InsertOne(ctx context.Context, message models.ChatMessage, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(chatName).InsertOne(ctx, message, opts...)
	return res, err
}
