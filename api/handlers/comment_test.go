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

func TestComment_CreateCommentHandlerNestedReply(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"userId":   "user-1",
		"parentId": "5fc51f58c72ff10004dca383",
		"body":     "replying to a reply",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/comment", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	commentsConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}
	parentResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil)
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	// the parent is itself a reply, one level of nesting only
	parentResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Comment)
		(*arg).CaseID = "5fc51f58c72ff10004dca382"
		(*arg).ParentID = "5fc51f58c72ff10004dca381"
	})
	commentsConn.On("FindOne", mock.Anything, mock.Anything).Return(parentResult)
	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "comments").Return(commentsConn)

	c := handlers.Comment{
		DB:  databases.NewCommentDatabase(db),
		CDB: databases.NewCaseDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CreateCommentHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestComment_CreateCommentHandlerParentOnOtherCase(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"userId":   "user-1",
		"parentId": "5fc51f58c72ff10004dca383",
		"body":     "cross-case reply",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/comment", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	commentsConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}
	parentResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil)
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	parentResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Comment)
		(*arg).CaseID = "5fc51f58c72ff10004dca399"
	})
	commentsConn.On("FindOne", mock.Anything, mock.Anything).Return(parentResult)
	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "comments").Return(commentsConn)

	c := handlers.Comment{
		DB:  databases.NewCommentDatabase(db),
		CDB: databases.NewCaseDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CreateCommentHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestComment_CommentVoteHandlerToggleOn(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"userId": "user-1"})
	req, err := http.NewRequest("POST", "/api/v1/comment/5fc51f58c72ff10004dca382/vote", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"comment_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	commentsConn := &mocksdb.CollectionHelper{}
	votesConn := &mocksdb.CollectionHelper{}
	commentResult := &mocksdb.SingleResultHelper{}
	noVoteResult := &mocksdb.SingleResultHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	commentResult.On("Decode", mock.Anything).Return(nil)
	commentsConn.On("FindOne", mock.Anything, mock.Anything).Return(commentResult)
	// no existing vote, so this toggles on
	noVoteResult.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	votesConn.On("FindOne", mock.Anything, mock.Anything).Return(noVoteResult)
	votesConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	votesConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "comments").Return(commentsConn)
	db.On("Collection", "votes").Return(votesConn)

	c := handlers.Comment{
		DB:  databases.NewCommentDatabase(db),
		VDB: databases.NewVoteDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CommentVoteHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, true, resp["voted"])
	assert.Equal(t, float64(1), resp["votes"])
}

func TestComment_TheoryVoteHandlerToggleOff(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"userId": "user-1"})
	req, err := http.NewRequest("POST", "/api/v1/theory/5fc51f58c72ff10004dca382/vote", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"theory_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	theoriesConn := &mocksdb.CollectionHelper{}
	votesConn := &mocksdb.CollectionHelper{}
	theoryResult := &mocksdb.SingleResultHelper{}
	voteResult := &mocksdb.SingleResultHelper{}

	theoryResult.On("Decode", mock.Anything).Return(nil)
	theoriesConn.On("FindOne", mock.Anything, mock.Anything).Return(theoryResult)
	// an existing vote, so this toggles off
	voteResult.On("Decode", mock.Anything).Return(nil)
	votesConn.On("FindOne", mock.Anything, mock.Anything).Return(voteResult)
	votesConn.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)
	votesConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	db.On("Collection", "theories").Return(theoriesConn)
	db.On("Collection", "votes").Return(votesConn)

	c := handlers.Comment{
		TDB: databases.NewTheoryDatabase(db),
		VDB: databases.NewVoteDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.TheoryVoteHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, false, resp["voted"])
	assert.Equal(t, float64(0), resp["votes"])
}
