package databases

// go generate: mockery --name BoostDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const boostName = "boosts"

// BoostDatabase contains the methods to use with the boost database
type BoostDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Boost, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Boost, error)
	InsertOne(context.Context, models.Boost, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type boostDatabase struct {
	db DatabaseHelper
}

// NewBoostDatabase initializes a new instance of boost database with the provided db connection
func NewBoostDatabase(db DatabaseHelper) BoostDatabase {
	return &boostDatabase{
		db: db,
	}
}

func (b *boostDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Boost, error) {
	boost := &models.Boost{}
	err := b.db.Collection(boostName).FindOne(ctx, filter, opts...).Decode(&boost)
	if err != nil {
		return nil, err
	}
	return boost, nil
}

func (b *boostDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Boost, error) {
	var boosts []models.Boost
	cur, err := b.db.Collection(boostName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&boosts)
	if err != nil {
		return nil, err
	}
	return boosts, nil
}

func (b *boostDatabase) InsertOne(ctx context.Context, boost models.Boost, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := b.db.Collection(boostName).InsertOne(ctx, boost, opts...)
	return res, err
}

func (b *boostDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return b.db.Collection(boostName).UpdateOne(ctx, filter, update, opts...)
}

func (b *boostDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return b.db.Collection(boostName).UpdateMany(ctx, filter, update, opts...)
}

func (b *boostDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return b.db.Collection(boostName).CountDocuments(ctx, filter, opts...)
}
