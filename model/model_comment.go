package model

import (
	"time"
)

// Comment belongs to a post via PostID and optionally to another comment
// via ParentID for threading. Nothing prevents reference cycles beyond
// application discipline.
type Comment struct {
	ID          string    `json:"id"          bson:"id"          dynamodbav:"id"`
	PostID      string    `json:"postId"      bson:"postId"      dynamodbav:"postId"`
	Content     string    `json:"content"     bson:"content"     dynamodbav:"content"`
	ParentID    *string   `json:"parentId"    bson:"parentId"    dynamodbav:"parentId"`
	AuthorID    string    `json:"authorId"    bson:"authorId"    dynamodbav:"authorId"`
	AuthorName  string    `json:"authorName"  bson:"authorName"  dynamodbav:"authorName"`
	CreatedAt   time.Time `json:"createdAt"   bson:"createdAt"   dynamodbav:"createdAt"`
	Upvotes     int       `json:"upvotes"     bson:"upvotes"     dynamodbav:"upvotes"`
	Downvotes   int       `json:"downvotes"   bson:"downvotes"   dynamodbav:"downvotes"`
	IsApproved  bool      `json:"isApproved"  bson:"isApproved"  dynamodbav:"isApproved"`
	UpvotedBy   []string  `json:"upvotedBy"   bson:"upvotedBy"   dynamodbav:"upvotedBy"`
	DownvotedBy []string  `json:"downvotedBy" bson:"downvotedBy" dynamodbav:"downvotedBy"`

	Version int64 `json:"-" bson:"version" dynamodbav:"version"`
}
