package databases

// go generate: mockery --name TheoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const theoryName = "theories"

// TheoryDatabase contains the methods to use with the theory database
type TheoryDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Theory, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Theory, error)
	InsertOne(context.Context, models.Theory, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type theoryDatabase struct {
	db DatabaseHelper
}

// NewTheoryDatabase initializes a new instance of theory database with the provided db connection
func NewTheoryDatabase(db DatabaseHelper) TheoryDatabase {
	return &theoryDatabase{
		db: db,
	}
}

func (t *theoryDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Theory, error) {
	theory := &models.Theory{}
	err := t.db.Collection(theoryName).FindOne(ctx, filter, opts...).Decode(&theory)
	if err != nil {
		return nil, err
	}
	return theory, nil
}

func (t *theoryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Theory, error) {
	var theories []models.Theory
	cur, err := t.db.Collection(theoryName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&theories)
	if err != nil {
		return nil, err
	}
	return theories, nil
}

func (t *theoryDatabase) InsertOne(ctx context.Context, theory models.Theory, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := t.db.Collection(theoryName).InsertOne(ctx, theory, opts...)
	return res, err
}
