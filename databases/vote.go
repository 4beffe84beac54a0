package databases

// go generate: mockery --name VoteDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const voteName = "votes"

// VoteDatabase contains the methods to use with the vote database
type VoteDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Vote, error)
	InsertOne(context.Context, models.Vote, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type voteDatabase struct {
	db DatabaseHelper
}

// NewVoteDatabase initializes a new instance of vote database with the provided db connection
func NewVoteDatabase(db DatabaseHelper) VoteDatabase {
	return &voteDatabase{
		db: db,
	}
}

func (v *voteDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Vote, error) {
	vote := &models.Vote{}
	err := v.db.Collection(voteName).FindOne(ctx, filter, opts...).Decode(&vote)
	if err != nil {
		return nil, err
	}
	return vote, nil
}

func (v *voteDatabase) InsertOne(ctx context.Context, vote models.Vote, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := v.db.Collection(voteName).InsertOne(ctx, vote, opts...)
	return res, err
}

func (v *voteDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return v.db.Collection(voteName).DeleteOne(ctx, filter, opts...)
}

func (v *voteDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return v.db.Collection(voteName).CountDocuments(ctx, filter, opts...)
}
