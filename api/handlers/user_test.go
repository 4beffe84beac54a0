package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/unexplained-archive/unexplained-archive-api/api/handlers"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	mocksdb "github.com/unexplained-archive/unexplained-archive-api/databases/mocks"
	"github.com/unexplained-archive/unexplained-archive-api/models"
)

func TestUser_UserCreateHandlerDuplicateEmail(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"email":    "taken@example.com",
		"password": "hunter2hunter2",
	})
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	usersConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "users").Return(usersConn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserCreateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUser_UserCreateHandlerMissingPassword(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"email": "new@example.com"})
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.User{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserCreateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUser_UserCreateHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"email":    "new@example.com",
		"password": "hunter2hunter2",
		"username": "newuser",
	})
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	usersConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	var inserted models.UserDetails
	usersConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil).
		Run(func(args mock.Arguments) {
			// the db layer wraps the details in an outer {user: ...} document
			doc := reflect.ValueOf(args.Get(1))
			inserted = doc.FieldByName("User").Interface().(models.UserDetails)
		})
	db.On("Collection", "users").Return(usersConn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserCreateHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	// new accounts never start with elevated standing
	assert.Equal(t, models.RoleUser, inserted.Role)
	assert.Equal(t, models.InvestigatorNone, inserted.InvestigatorStatus)
	assert.False(t, inserted.VerifiedBadge)
	assert.NotEqual(t, "hunter2hunter2", inserted.Password)
}

func TestUser_SubmitVerificationHandlerAlreadyPending(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"documentUrls": []string{"https://example.com/id.jpg"},
	})
	req, err := http.NewRequest("POST", "/api/v1/user/user-1/verification", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "user-1"})

	db := &mocksdb.DatabaseHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	verificationsConn := &mocksdb.CollectionHelper{}
	userResult := &mocksdb.SingleResultHelper{}

	userResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = "user-1"
		(*arg).Details.InvestigatorStatus = models.InvestigatorPending
	})
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)
	verificationsConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "users").Return(usersConn)
	db.On("Collection", "verifications").Return(verificationsConn)

	u := handlers.User{
		DB:  databases.NewUserDatabase(db),
		VDB: databases.NewVerificationDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.SubmitVerificationHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}
