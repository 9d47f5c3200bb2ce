package model

import (
	"time"
)

// Post is a forum post. Vote counters are kept in lockstep with the
// membership slices: upvotes == len(UpvotedBy) and downvotes ==
// len(DownvotedBy) after every completed vote.
type Post struct {
	ID           string    `json:"id"           bson:"id"           dynamodbav:"id"`
	Title        string    `json:"title"        bson:"title"        dynamodbav:"title"`
	Content      string    `json:"content"      bson:"content"      dynamodbav:"content"`
	Tags         []string  `json:"tags"         bson:"tags"         dynamodbav:"tags"`
	AuthorID     string    `json:"authorId"     bson:"authorId"     dynamodbav:"authorId"`
	AuthorName   string    `json:"authorName"   bson:"authorName"   dynamodbav:"authorName"`
	CreatedAt    time.Time `json:"createdAt"    bson:"createdAt"    dynamodbav:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"    bson:"updatedAt"    dynamodbav:"updatedAt"`
	Upvotes      int       `json:"upvotes"      bson:"upvotes"      dynamodbav:"upvotes"`
	Downvotes    int       `json:"downvotes"    bson:"downvotes"    dynamodbav:"downvotes"`
	CommentCount int       `json:"commentCount" bson:"commentCount" dynamodbav:"commentCount"`
	IsPinned     bool      `json:"isPinned"     bson:"isPinned"     dynamodbav:"isPinned"`
	IsLocked     bool      `json:"isLocked"     bson:"isLocked"     dynamodbav:"isLocked"`
	IsApproved   bool      `json:"isApproved"   bson:"isApproved"   dynamodbav:"isApproved"`
	UpvotedBy    []string  `json:"upvotedBy"    bson:"upvotedBy"    dynamodbav:"upvotedBy"`
	DownvotedBy  []string  `json:"downvotedBy"  bson:"downvotedBy"  dynamodbav:"downvotedBy"`

	// Version guards vote read-modify-write cycles against concurrent
	// writers. Not part of the API payload.
	Version int64 `json:"-" bson:"version" dynamodbav:"version"`
}
