package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// RejectionRatingPolicy controls what rating is recorded when a submitter
// rejects a resolution proposal.
type RejectionRatingPolicy string

// Supported rejection rating policies. "fixed" records the minimum rating of
// 1, "omit" records no rating at all.
const (
	RejectionRatingFixed RejectionRatingPolicy = "fixed"
	RejectionRatingOmit  RejectionRatingPolicy = "omit"
)

// Config holds the project config values
type Config struct {
	URL             string
	DatabaseName    string
	BaseURL         string
	Port            string
	RedisURL        string
	VoteQuorum      int
	RejectionRating RejectionRatingPolicy
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger, err := setLogger(os.Getenv("APP_ENV"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	quorum, err := strconv.Atoi(os.Getenv("VOTE_QUORUM"))
	if err != nil || quorum <= 0 {
		quorum = 5
	}

	rejectionRating := RejectionRatingPolicy(os.Getenv("REJECTION_RATING_POLICY"))
	if rejectionRating != RejectionRatingOmit {
		rejectionRating = RejectionRatingFixed
	}

	return &Config{
		URL:             os.Getenv("DB_URI"),
		DatabaseName:    os.Getenv("DB_NAME"),
		BaseURL:         os.Getenv("BASE_URL"),
		Port:            os.Getenv("PORT"),
		RedisURL:        os.Getenv("REDIS_URL"),
		VoteQuorum:      quorum,
		RejectionRating: rejectionRating,
	}

}

// setLogger picks a zap logger for the given environment
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
}
