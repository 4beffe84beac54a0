package scheduler

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	templates "github.com/unexplained-archive/unexplained-archive-api/templates/html"
)

// reviewReminderAge is how long a case may sit in pending_review or disputed
// before the responsible party gets a nudge email
const reviewReminderAge = 7 * 24 * time.Hour

// Scheduler handles periodic background jobs: boost counter flushing, boost
// expiry and review reminder emails
type Scheduler struct {
	cron       *cron.Cron
	BDB        databases.BoostDatabase
	CDB        databases.CaseDatabase
	UDB        databases.UserDatabase
	LockDB     databases.SchedulerLockDatabase
	Redis      *redis.Client
	instanceID string
}

// New creates a new scheduler instance
func New(
	bDB databases.BoostDatabase,
	cDB databases.CaseDatabase,
	uDB databases.UserDatabase,
	lockDB databases.SchedulerLockDatabase,
	rdb *redis.Client,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		BDB:        bDB,
		CDB:        cDB,
		UDB:        uDB,
		LockDB:     lockDB,
		Redis:      rdb,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Flush boost counters from redis and expire stale boosts every 10 minutes
	_, err := s.cron.AddFunc("*/10 * * * *", s.runBoostMaintenance)
	if err != nil {
		zap.S().Errorw("failed to register boost maintenance job", "error", err)
	}

	// Send review reminder emails daily at 3 AM UTC
	_, err = s.cron.AddFunc("0 3 * * *", s.sendReviewReminders)
	if err != nil {
		zap.S().Errorw("failed to register review reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Background scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Background scheduler stopped")
}

// runBoostMaintenance drains the redis impression/click counters into mongo
// and flips boosts past their featuredUntil to expired
func (s *Scheduler) runBoostMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "boost_maintenance_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for boost maintenance job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Boost maintenance job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "boost_maintenance_job", s.instanceID)

	now := time.Now()

	// Flush counters before expiring so clicks landing near the boundary are
	// not lost. Recently expired boosts are included for the same reason.
	recentCutoff := primitive.NewDateTimeFromTime(now.Add(-1 * time.Hour))
	boosts, err := s.BDB.Find(ctx, bson.M{"$or": []bson.M{
		{"status": models.BoostStatusActive},
		{"status": models.BoostStatusExpired, "featuredUntil": bson.M{"$gt": recentCutoff}},
	}})
	if err != nil {
		zap.S().Errorw("failed to find boosts for counter flush", "error", err)
		return
	}

	flushed := 0
	for _, boost := range boosts {
		if s.flushBoostCounters(ctx, boost) {
			flushed++
		}
	}

	res, err := s.BDB.UpdateMany(ctx,
		bson.M{
			"status":        models.BoostStatusActive,
			"featuredUntil": bson.M{"$lt": primitive.NewDateTimeFromTime(now)},
		},
		bson.M{"$set": bson.M{"status": models.BoostStatusExpired}},
	)
	if err != nil {
		zap.S().Errorw("failed to expire boosts", "error", err)
		return
	}

	zap.S().Infow("Boost maintenance complete",
		"instance", s.instanceID,
		"countersFlushed", flushed,
		"boostsExpired", res.ModifiedCount,
	)
}

// flushBoostCounters moves the redis counters for one boost into mongo.
// GetDel makes each counter read destructive, so a crash between the read
// and the write loses at most one flush window of counts.
func (s *Scheduler) flushBoostCounters(ctx context.Context, boost models.Boost) bool {
	if s.Redis == nil {
		return false
	}

	boostID := boost.ID.Hex()
	inc := bson.M{}
	for _, counter := range []string{"impressions", "clicks"} {
		key := fmt.Sprintf("boost:%s:%s", boostID, counter)
		val, err := s.Redis.GetDel(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			zap.S().Warnw("failed to read boost counter", "key", key, "error", err)
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n == 0 {
			continue
		}
		inc[counter] = n
	}
	if len(inc) == 0 {
		return false
	}

	_, err := s.BDB.UpdateOne(ctx, bson.M{"_id": boost.ID}, bson.M{"$inc": inc})
	if err != nil {
		zap.S().Errorw("failed to flush boost counters", "boostId", boostID, "error", err)
		return false
	}
	return true
}

// sendReviewReminders nudges the party holding up a stale case: the submitter
// when a resolution has waited in pending_review, the investigator when a
// dispute has gone unaddressed
func (s *Scheduler) sendReviewReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (15 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "review_reminder_job", s.instanceID, 15*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for review reminder job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Review reminder job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "review_reminder_job", s.instanceID)

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-reviewReminderAge))

	zap.S().Infow("Running review reminder job", "instance", s.instanceID)

	pendingCases, err := s.CDB.Find(ctx, bson.M{
		"status":    models.CaseStatusPendingReview,
		"updatedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().Errorw("failed to find stale pending_review cases", "error", err)
		return
	}
	for _, caseDoc := range pendingCases {
		s.sendPendingReviewReminder(ctx, caseDoc)
	}

	disputedCases, err := s.CDB.Find(ctx, bson.M{
		"status":    models.CaseStatusDisputed,
		"updatedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().Errorw("failed to find stale disputed cases", "error", err)
		return
	}
	for _, caseDoc := range disputedCases {
		s.sendDisputeReminder(ctx, caseDoc)
	}

	zap.S().Infow("Review reminder job complete",
		"pendingReviewReminders", len(pendingCases),
		"disputeReminders", len(disputedCases),
	)
}

func (s *Scheduler) sendPendingReviewReminder(ctx context.Context, caseDoc models.Case) {
	email, name := s.getUserEmail(ctx, caseDoc.SubmittedBy)
	if email == "" {
		return
	}

	subject := "A resolution is waiting for your review - Unexplained Archive"
	htmlContent := templates.RenderReviewReminder(name, caseDoc.Title)
	plainText := "The investigator has proposed a resolution for your case and it has been waiting for your review for over a week: " + caseDoc.Title

	if err := s.sendEmail(email, name, subject, htmlContent, plainText); err != nil {
		zap.S().Errorw("failed to send review reminder email", "error", err, "caseId", caseDoc.ID.Hex())
	}
}

func (s *Scheduler) sendDisputeReminder(ctx context.Context, caseDoc models.Case) {
	email, name := s.getUserEmail(ctx, caseDoc.AssignedInvestigator)
	if email == "" {
		return
	}

	subject := "A disputed case needs your attention - Unexplained Archive"
	htmlContent := templates.RenderDisputeReminder(name, caseDoc.Title)
	plainText := "The submitter has disputed your resolution and the case has been waiting for over a week: " + caseDoc.Title

	if err := s.sendEmail(email, name, subject, htmlContent, plainText); err != nil {
		zap.S().Errorw("failed to send dispute reminder email", "error", err, "caseId", caseDoc.ID.Hex())
	}
}

// --- Email Helper Functions ---

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("Unexplained Archive", "no-reply@unexplained-archive.com")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

func (s *Scheduler) getUserEmail(ctx context.Context, userID string) (email, name string) {
	if userID == "" {
		return "", ""
	}
	filter := bson.M{"_id": userID}
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		filter = bson.M{"$or": []bson.M{{"_id": userID}, {"_id": oid}}}
	}
	user, err := s.UDB.FindOne(ctx, filter)
	if err != nil || user.Details.Email == "" {
		return "", ""
	}
	return user.Details.Email, user.Details.Username
}
