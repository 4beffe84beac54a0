package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SchedulerLock holds the structure for the schedulerLocks collection in
// mongo, used so cron jobs run on exactly one instance at a time
type SchedulerLock struct {
	ID        string             `bson:"_id" json:"id"`
	Owner     string             `bson:"owner" json:"owner"`
	ExpiresAt primitive.DateTime `bson:"expiresAt" json:"expiresAt"`
}
