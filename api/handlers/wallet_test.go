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
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unexplained-archive/unexplained-archive-api/api/handlers"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	mocksdb "github.com/unexplained-archive/unexplained-archive-api/databases/mocks"
	"github.com/unexplained-archive/unexplained-archive-api/payments"
)

func TestWallet_DepositHandlerBelowMinimum(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"userId": "user-1",
		"amount": 2.50,
	})
	req, err := http.NewRequest("POST", "/api/v1/wallet/deposit", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Wallet{Policy: payments.DefaultPolicy()}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.DepositHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWallet_DonateHandlerBelowMinimum(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"caseId":        "5fc51f58c72ff10004dca382",
		"amount":        1,
		"paymentMethod": "wallet",
	})
	req, err := http.NewRequest("POST", "/api/v1/wallet/user-1/donate", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "user-1"})

	h := handlers.Wallet{Policy: payments.DefaultPolicy()}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.DonateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWallet_DonateHandlerBadPaymentMethod(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"caseId":        "5fc51f58c72ff10004dca382",
		"amount":        20,
		"paymentMethod": "iou",
	})
	req, err := http.NewRequest("POST", "/api/v1/wallet/user-1/donate", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "user-1"})

	h := handlers.Wallet{Policy: payments.DefaultPolicy()}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.DonateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWallet_WithdrawHandlerBelowMinimum(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"amount": 9.99})
	req, err := http.NewRequest("POST", "/api/v1/wallet/user-1/withdraw", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "user-1"})

	h := handlers.Wallet{Policy: payments.DefaultPolicy()}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.WithdrawHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWallet_WithdrawHandlerInsufficientBalance(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"amount": 50})
	req, err := http.NewRequest("POST", "/api/v1/wallet/user-1/withdraw", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "user-1"})

	db := &mocksdb.DatabaseHelper{}
	walletsConn := &mocksdb.CollectionHelper{}
	// the balance condition in the filter matches nothing
	walletsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 0}, nil)
	db.On("Collection", "wallets").Return(walletsConn)

	h := handlers.Wallet{
		DB:     databases.NewWalletDatabase(db),
		Policy: payments.DefaultPolicy(),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.WithdrawHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestWallet_PaymentSuccessHandlerMissingSession(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/payments/success", nil)
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Wallet{Policy: payments.DefaultPolicy()}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.PaymentSuccessHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
