package databases

// go generate: mockery --name WalletDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/models"
)

const walletName = "wallets"

// WalletDatabase contains the methods to use with the wallet database
type WalletDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Wallet, error)
	InsertOne(context.Context, models.Wallet, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type walletDatabase struct {
	db DatabaseHelper
}

// NewWalletDatabase initializes a new instance of wallet database with the provided db connection
func NewWalletDatabase(db DatabaseHelper) WalletDatabase {
	return &walletDatabase{
		db: db,
	}
}

func (wd *walletDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Wallet, error) {
	wallet := &models.Wallet{}
	err := wd.db.Collection(walletName).FindOne(ctx, filter, opts...).Decode(&wallet)
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func (wd *walletDatabase) InsertOne(ctx context.Context, wallet models.Wallet, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := wd.db.Collection(walletName).InsertOne(ctx, wallet, opts...)
	return res, err
}

func (wd *walletDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return wd.db.Collection(walletName).UpdateOne(ctx, filter, update, opts...)
}
