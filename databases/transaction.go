package databases

// go generate: mockery --name TransactionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const transactionName = "transactions"

// TransactionDatabase contains the methods to use with the transaction
// database. The ledger is append-only; completed entries are never edited,
// only pending withdrawals flip status.
type TransactionDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Transaction, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Transaction, error)
	InsertOne(context.Context, models.Transaction, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type transactionDatabase struct {
	db DatabaseHelper
}

// NewTransactionDatabase initializes a new instance of transaction database with the provided db connection
func NewTransactionDatabase(db DatabaseHelper) TransactionDatabase {
	return &transactionDatabase{
		db: db,
	}
}

func (t *transactionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Transaction, error) {
	transaction := &models.Transaction{}
	err := t.db.Collection(transactionName).FindOne(ctx, filter, opts...).Decode(&transaction)
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (t *transactionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Transaction, error) {
	var transactions []models.Transaction
	cur, err := t.db.Collection(transactionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&transactions)
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (t *transactionDatabase) InsertOne(ctx context.Context, transaction models.Transaction, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := t.db.Collection(transactionName).InsertOne(ctx, transaction, opts...)
	return res, err
}

func (t *transactionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return t.db.Collection(transactionName).UpdateOne(ctx, filter, update, opts...)
}
