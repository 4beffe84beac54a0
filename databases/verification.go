package databases

// go generate: mockery --name VerificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const verificationName = "verifications"

// VerificationDatabase contains the methods to use with the verification database
type VerificationDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.VerificationRequest, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.VerificationRequest, error)
	InsertOne(context.Context, models.VerificationRequest, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type verificationDatabase struct {
	db DatabaseHelper
}

// NewVerificationDatabase initializes a new instance of verification database with the provided db connection
func NewVerificationDatabase(db DatabaseHelper) VerificationDatabase {
	return &verificationDatabase{
		db: db,
	}
}

func (v *verificationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.VerificationRequest, error) {
	verification := &models.VerificationRequest{}
	err := v.db.Collection(verificationName).FindOne(ctx, filter, opts...).Decode(&verification)
	if err != nil {
		return nil, err
	}
	return verification, nil
}

func (v *verificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.VerificationRequest, error) {
	var verifications []models.VerificationRequest
	cur, err := v.db.Collection(verificationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&verifications)
	if err != nil {
		return nil, err
	}
	return verifications, nil
}

func (v *verificationDatabase) InsertOne(ctx context.Context, verification models.VerificationRequest, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := v.db.Collection(verificationName).InsertOne(ctx, verification, opts...)
	return res, err
}

func (v *verificationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return v.db.Collection(verificationName).UpdateOne(ctx, filter, update, opts...)
}

func (v *verificationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return v.db.Collection(verificationName).CountDocuments(ctx, filter, opts...)
}
