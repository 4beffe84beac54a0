package databases

// go generate: mockery --name TeamDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const teamMemberName = "teamMembers"

// TeamDatabase contains the methods to use with the team member database
type TeamDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.TeamMember, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.TeamMember, error)
	InsertOne(context.Context, models.TeamMember, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type teamDatabase struct {
	db DatabaseHelper
}

// NewTeamDatabase initializes a new instance of team database with the provided db connection
func NewTeamDatabase(db DatabaseHelper) TeamDatabase {
	return &teamDatabase{
		db: db,
	}
}

func (t *teamDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TeamMember, error) {
	member := &models.TeamMember{}
	err := t.db.Collection(teamMemberName).FindOne(ctx, filter, opts...).Decode(&member)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (t *teamDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TeamMember, error) {
	var members []models.TeamMember
	cur, err := t.db.Collection(teamMemberName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (t *teamDatabase) InsertOne(ctx context.Context, member models.TeamMember, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := t.db.Collection(teamMemberName).InsertOne(ctx, member, opts...)
	return res, err
}

func (t *teamDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return t.db.Collection(teamMemberName).UpdateOne(ctx, filter, update, opts...)
}

func (t *teamDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return t.db.Collection(teamMemberName).DeleteOne(ctx, filter, opts...)
}

func (t *teamDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return t.db.Collection(teamMemberName).CountDocuments(ctx, filter, opts...)
}
