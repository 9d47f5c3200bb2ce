package model

import (
	"time"
)

// User mirrors the upstream identity subject. Records are upserted on
// every authenticated request; LastSeen drives the presence window.
type User struct {
	ID          string    `json:"id"          bson:"id"          dynamodbav:"id"`
	Username    string    `json:"username"    bson:"username"    dynamodbav:"username"`
	Email       string    `json:"email"       bson:"email"       dynamodbav:"email"`
	LastSeen    time.Time `json:"lastSeen"    bson:"lastSeen"    dynamodbav:"lastSeen"`
	IsOnline    bool      `json:"isOnline"    bson:"isOnline"    dynamodbav:"isOnline"`
	IsModerator bool      `json:"isModerator" bson:"isModerator" dynamodbav:"isModerator"`
	CreatedAt   time.Time `json:"createdAt"   bson:"createdAt"   dynamodbav:"createdAt"`
}
