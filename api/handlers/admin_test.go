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
	"github.com/unexplained-archive/unexplained-archive-api/models"
)

func TestAdmin_ReviewVerificationHandlerBadAction(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"action": "maybe", "reviewerId": "admin-1"})
	req, err := http.NewRequest("PUT", "/api/v1/admin/verification/5fc51f58c72ff10004dca382", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"verification_id": "5fc51f58c72ff10004dca382"})

	h := handlers.Admin{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.ReviewVerificationHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdmin_ReviewVerificationHandlerLostRace(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"action": "approve", "reviewerId": "admin-1"})
	req, err := http.NewRequest("PUT", "/api/v1/admin/verification/5fc51f58c72ff10004dca382", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"verification_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	verificationsConn := &mocksdb.CollectionHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	verificationResult := &mocksdb.SingleResultHelper{}

	verificationResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.VerificationRequest)
		(*arg).UserID = "user-1"
		(*arg).Status = models.VerificationPending
	})
	verificationsConn.On("FindOne", mock.Anything, mock.Anything).Return(verificationResult)
	// another admin claimed the request between the read and the write
	verificationsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 0}, nil)
	db.On("Collection", "verifications").Return(verificationsConn)
	db.On("Collection", "users").Return(usersConn)

	h := handlers.Admin{
		UDB: databases.NewUserDatabase(db),
		VDB: databases.NewVerificationDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.ReviewVerificationHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	usersConn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdmin_PendingVerificationsHandlerEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/admin/verifications", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	verificationsConn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil)
	verificationsConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "verifications").Return(verificationsConn)

	h := handlers.Admin{VDB: databases.NewVerificationDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.PendingVerificationsHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
