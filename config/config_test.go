package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, 5, conf.VoteQuorum)
	assert.Equal(t, RejectionRatingFixed, conf.RejectionRating)
}

func TestNewReadsPolicyOverrides(t *testing.T) {
	os.Setenv("VOTE_QUORUM", "9")
	os.Setenv("REJECTION_RATING_POLICY", "omit")
	defer os.Unsetenv("VOTE_QUORUM")
	defer os.Unsetenv("REJECTION_RATING_POLICY")

	conf := New()
	assert.Equal(t, 9, conf.VoteQuorum)
	assert.Equal(t, RejectionRatingOmit, conf.RejectionRating)
}

func TestErrorStatus(t *testing.T) {

	ErrorStatus("error it borked", http.StatusBadRequest, httptest.NewRecorder(), errors.New("bad request"))
	assert.True(t, true)
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
