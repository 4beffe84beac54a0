package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/unexplained-archive/unexplained-archive-api/api/handlers"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	mocksdb "github.com/unexplained-archive/unexplained-archive-api/databases/mocks"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	"github.com/unexplained-archive/unexplained-archive-api/payments"
)

func TestBoost_CreateBoostHandlerUnknownTier(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"userId":        "user-1",
		"boostType":     "forever",
		"paymentMethod": "wallet",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/boost", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	h := handlers.Boost{Policy: payments.DefaultPolicy()}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.CreateBoostHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBoost_CreateBoostHandlerAlreadyBoosted(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"userId":        "user-1",
		"boostType":     models.BoostType24Hours,
		"paymentMethod": "wallet",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/boost", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	boostsConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil)
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	boostsConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "boosts").Return(boostsConn)

	h := handlers.Boost{
		DB:     databases.NewBoostDatabase(db),
		CDB:    databases.NewCaseDatabase(db),
		Policy: payments.DefaultPolicy(),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.CreateBoostHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestBoost_CreateBoostHandlerInsufficientWallet(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"userId":        "user-1",
		"boostType":     models.BoostType7Days,
		"paymentMethod": "wallet",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/boost", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	boostsConn := &mocksdb.CollectionHelper{}
	walletsConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}
	walletResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil)
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	boostsConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	walletResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Wallet)
		(*arg).UserID = "user-1"
		(*arg).Balance = 5
	})
	walletsConn.On("FindOne", mock.Anything, mock.Anything).Return(walletResult)
	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "boosts").Return(boostsConn)
	db.On("Collection", "wallets").Return(walletsConn)

	h := handlers.Boost{
		DB:     databases.NewBoostDatabase(db),
		CDB:    databases.NewCaseDatabase(db),
		WDB:    databases.NewWalletDatabase(db),
		Policy: payments.DefaultPolicy(),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.CreateBoostHandler)
	handler.ServeHTTP(rr, req)

	// an underfunded wallet purchase fails before any write
	assert.Equal(t, http.StatusConflict, rr.Code)
	walletsConn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestBoost_ImpressionHandlerAlwaysAccepts(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/boost/5fc51f58c72ff10004dca382/impression", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"boost_id": "5fc51f58c72ff10004dca382"})

	// nil redis client: the counter bump is skipped, the caller still gets 202
	h := handlers.Boost{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.ImpressionHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
}
