package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/api/handlers"
	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	mocksdb "github.com/unexplained-archive/unexplained-archive-api/databases/mocks"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	"github.com/unexplained-archive/unexplained-archive-api/payments"
)

func TestCase_CaseByIDHandlerBadHex(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/case/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	c := handlers.Case{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CaseByIDHandler)
	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := `{"response": "failed to get objectID from Hex, the provided hex string is not a valid ObjectID"}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestCase_CreateCaseHandlerMissingTitle(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"description": "strange lights over the bay",
	})
	req, err := http.NewRequest("POST", "/api/v1/case", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}

	c := handlers.Case{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CreateCaseHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CreateCaseHandlerNegativeReward(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"title":       "Strange lights",
		"description": "strange lights over the bay",
		"reward":      -10,
	})
	req, err := http.NewRequest("POST", "/api/v1/case", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}

	c := handlers.Case{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.CreateCaseHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_AssignInvestigatorHandlerNotApproved(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"investigatorId": "user-1"})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/assign", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	userResult := &mocksdb.SingleResultHelper{}

	userResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = "user-1"
		(*arg).Details.Role = models.RoleUser
		(*arg).Details.InvestigatorStatus = models.InvestigatorNone
	})
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)
	db.On("Collection", "users").Return(usersConn)

	c := handlers.Case{
		DB:  databases.NewCaseDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.AssignInvestigatorHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCase_AssignInvestigatorHandlerAlreadyAssigned(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"investigatorId": "user-1"})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/assign", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	userResult := &mocksdb.SingleResultHelper{}

	userResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = "user-1"
		(*arg).Details.Role = models.RoleInvestigator
		(*arg).Details.InvestigatorStatus = models.InvestigatorApproved
	})
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)
	// a second assign finds the conditional filter matching nothing
	casesConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 0}, nil)
	db.On("Collection", "users").Return(usersConn)
	db.On("Collection", "cases").Return(casesConn)

	c := handlers.Case{
		DB:  databases.NewCaseDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.AssignInvestigatorHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCase_SubmitResolutionHandlerWrongInvestigator(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"investigatorId": "intruder",
		"proposal":       "it was a drone",
	})
	req, err := http.NewRequest("PUT", "/api/v1/case/5fc51f58c72ff10004dca382/resolution", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).Status = models.CaseStatusInvestigating
		(*arg).AssignedInvestigator = "the-real-one"
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	db.On("Collection", "cases").Return(casesConn)

	c := handlers.Case{DB: databases.NewCaseDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.SubmitResolutionHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCase_OpenVoteHandlerNotDisputed(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/open-vote", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	casesConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 0}, nil)
	db.On("Collection", "cases").Return(casesConn)

	c := handlers.Case{DB: databases.NewCaseDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.OpenVoteHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCase_CaseHandlerPaginationIsPerRequest(t *testing.T) {
	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil)
	var skips []int64
	casesConn.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return(cursor, nil).
		Run(func(args mock.Arguments) {
			opts := args.Get(2).(*options.FindOptions)
			skips = append(skips, *opts.Skip)
		})
	db.On("Collection", "cases").Return(casesConn)

	c := handlers.Case{DB: databases.NewCaseDatabase(db)}
	handler := http.HandlerFunc(c.CaseHandler)

	req, _ := http.NewRequest("GET", "/api/v1/cases?limit=10&page=2", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// a following request without a page param must start from zero again
	req, _ = http.NewRequest("GET", "/api/v1/cases?limit=10", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []int64{20, 0}, skips)
}

func TestCase_ProcessResolutionHandlerAcceptReleasesReward(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"submitterId": "submitter",
		"rating":      4,
		"accepted":    true,
	})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/process-resolution", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	cID, _ := primitive.ObjectIDFromHex("5fc51f58c72ff10004dca382")

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	teamConn := &mocksdb.CollectionHelper{}
	walletsConn := &mocksdb.CollectionHelper{}
	transactionsConn := &mocksdb.CollectionHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}
	cursor := &mocksdb.CursorHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = cID
		(*arg).Status = models.CaseStatusPendingReview
		(*arg).SubmittedBy = "submitter"
		(*arg).AssignedInvestigator = "inv-1"
		(*arg).Reward = 100
		(*arg).ResolutionProposal = "it was a drone"
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	casesConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	cursor.On("Decode", mock.Anything).Return(nil).Run(teamOf(
		models.TeamMember{CaseID: "5fc51f58c72ff10004dca382", UserID: "inv-1", Role: models.TeamRoleLeader, ContributionPercentage: 100},
	))
	teamConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	var credited float64
	walletsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			update := args.Get(2).(bson.M)
			credited = update["$inc"].(bson.M)["balance"].(float64)
		})

	var payout models.Transaction
	transactionsConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil).
		Run(func(args mock.Arguments) {
			payout = args.Get(1).(models.Transaction)
		})

	var reputation int
	usersConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			update := args.Get(2).(bson.M)
			reputation = update["$inc"].(bson.M)["user.reputation"].(int)
		})

	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "teamMembers").Return(teamConn)
	db.On("Collection", "wallets").Return(walletsConn)
	db.On("Collection", "transactions").Return(transactionsConn)
	db.On("Collection", "users").Return(usersConn)

	c := handlers.Case{
		DB:     databases.NewCaseDatabase(db),
		UDB:    databases.NewUserDatabase(db),
		TDB:    databases.NewTeamDatabase(db),
		WDB:    databases.NewWalletDatabase(db),
		TXDB:   databases.NewTransactionDatabase(db),
		Policy: payments.DefaultPolicy(),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.ProcessResolutionHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	// €100 reward, 15% platform fee withheld
	assert.Equal(t, 85.0, credited)
	assert.Equal(t, 100.0, payout.Amount)
	assert.Equal(t, 15.0, payout.Fee)
	assert.Equal(t, 85.0, payout.Net)
	assert.Equal(t, models.TransactionReward, payout.Type)
	// rating 4 credits rating*5 reputation
	assert.Equal(t, 20, reputation)
}

func TestCase_ProcessResolutionHandlerRejectKeepsEscrow(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"submitterId": "submitter",
		"accepted":    false,
		"feedback":    "not convinced",
	})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/process-resolution", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	cID, _ := primitive.ObjectIDFromHex("5fc51f58c72ff10004dca382")

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	walletsConn := &mocksdb.CollectionHelper{}
	transactionsConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = cID
		(*arg).Status = models.CaseStatusPendingReview
		(*arg).SubmittedBy = "submitter"
		(*arg).AssignedInvestigator = "inv-1"
		(*arg).Reward = 100
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)

	var set bson.M
	casesConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			set = args.Get(2).(bson.M)["$set"].(bson.M)
		})

	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "wallets").Return(walletsConn)
	db.On("Collection", "transactions").Return(transactionsConn)

	c := handlers.Case{
		DB:     databases.NewCaseDatabase(db),
		WDB:    databases.NewWalletDatabase(db),
		TXDB:   databases.NewTransactionDatabase(db),
		Config: config.Config{RejectionRating: config.RejectionRatingFixed},
		Policy: payments.DefaultPolicy(),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.ProcessResolutionHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.CaseStatusDisputed, set["status"])
	review := set["userReview"].(*models.UserReview)
	assert.Equal(t, 1, review.Rating)
	// rejection moves the case to disputed without touching money
	walletsConn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	transactionsConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCase_DisputeVoteHandlerQuorumMajorityReleasesReward(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"userId": "voter-3", "agree": true})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/dispute-vote", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	cID, _ := primitive.ObjectIDFromHex("5fc51f58c72ff10004dca382")

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	votesConn := &mocksdb.CollectionHelper{}
	teamConn := &mocksdb.CollectionHelper{}
	walletsConn := &mocksdb.CollectionHelper{}
	transactionsConn := &mocksdb.CollectionHelper{}
	usersConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}
	noVoteResult := &mocksdb.SingleResultHelper{}
	cursor := &mocksdb.CursorHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = cID
		(*arg).Status = models.CaseStatusVoting
		(*arg).AssignedInvestigator = "inv-1"
		(*arg).Reward = 100
		(*arg).ResolutionProposal = "it was a drone"
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	casesConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	noVoteResult.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	votesConn.On("FindOne", mock.Anything, mock.Anything).Return(noVoteResult)
	votesConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	// this vote reaches the quorum of 3 with a 2-1 majority for the team
	votesConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil).Once()
	votesConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(2), nil).Once()

	cursor.On("Decode", mock.Anything).Return(nil).Run(teamOf(
		models.TeamMember{CaseID: "5fc51f58c72ff10004dca382", UserID: "inv-1", Role: models.TeamRoleLeader, ContributionPercentage: 100},
	))
	teamConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	var credited float64
	walletsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			update := args.Get(2).(bson.M)
			credited = update["$inc"].(bson.M)["balance"].(float64)
		})
	transactionsConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)

	var reputation int
	usersConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			update := args.Get(2).(bson.M)
			reputation = update["$inc"].(bson.M)["user.reputation"].(int)
		})

	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "votes").Return(votesConn)
	db.On("Collection", "teamMembers").Return(teamConn)
	db.On("Collection", "wallets").Return(walletsConn)
	db.On("Collection", "transactions").Return(transactionsConn)
	db.On("Collection", "users").Return(usersConn)

	c := handlers.Case{
		DB:     databases.NewCaseDatabase(db),
		UDB:    databases.NewUserDatabase(db),
		TDB:    databases.NewTeamDatabase(db),
		WDB:    databases.NewWalletDatabase(db),
		TXDB:   databases.NewTransactionDatabase(db),
		VDB:    databases.NewVoteDatabase(db),
		Config: config.Config{VoteQuorum: 3},
		Policy: payments.DefaultPolicy(),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.DisputeVoteHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 85.0, credited)
	// a community settlement credits the fixed middling rating
	assert.Equal(t, 15, reputation)
}

func TestCase_SentimentVoteHandlerLookupError(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"userId": "user-1", "agree": true})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/sentiment-vote", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	votesConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}
	voteResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).Status = models.CaseStatusResolved
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	// a transient error must not be read as "no prior vote"
	voteResult.On("Decode", mock.Anything).Return(errors.New("connection reset by peer"))
	votesConn.On("FindOne", mock.Anything, mock.Anything).Return(voteResult)
	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "votes").Return(votesConn)

	c := handlers.Case{
		DB:  databases.NewCaseDatabase(db),
		VDB: databases.NewVoteDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.SentimentVoteHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	votesConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCase_SentimentVoteHandlerNotResolved(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"userId": "user-1", "agree": true})
	req, err := http.NewRequest("POST", "/api/v1/case/5fc51f58c72ff10004dca382/sentiment-vote", bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "5fc51f58c72ff10004dca382"})

	db := &mocksdb.DatabaseHelper{}
	casesConn := &mocksdb.CollectionHelper{}
	caseResult := &mocksdb.SingleResultHelper{}

	caseResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).Status = models.CaseStatusInvestigating
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)
	db.On("Collection", "cases").Return(casesConn)

	c := handlers.Case{
		DB:     databases.NewCaseDatabase(db),
		Config: config.Config{VoteQuorum: 5},
		Policy: payments.DefaultPolicy(),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(c.SentimentVoteHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}
