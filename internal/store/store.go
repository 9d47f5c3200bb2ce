// Package store defines the narrow contract the entity services hold
// against the document store: get/put/update/delete/scan over three
// named collections, with atomic adds and optional conditional writes.
package store

import (
	"context"
	"errors"
)

// Logical collection names. Backends map these to tables or collections
// via their own configuration.
const (
	Posts    = "posts"
	Comments = "comments"
	Users    = "users"
)

var (
	ErrNotFound        = errors.New("store: record not found")
	ErrConditionFailed = errors.New("store: conditional update failed")
)

// Filter is the predicate language shared by every backend: equality
// matches and strictly-greater-than comparisons, ANDed together.
type Filter struct {
	Eq map[string]any
	Gt map[string]any
}

// Update describes one write against a single record. Set assigns
// fields, Add increments numeric fields atomically, and IfEq makes the
// whole write conditional; a failed condition surfaces as
// ErrConditionFailed.
type Update struct {
	Set  map[string]any
	Add  map[string]int
	IfEq map[string]any
}

// Store is the adapter every entity service is built on. Get and Scan
// decode into dest (a pointer to a struct, or to a slice for Scan).
// Get returns ErrNotFound for missing ids. Update on a missing id with
// no condition is a silent no-op, matching upstream document stores.
type Store interface {
	Get(ctx context.Context, collection, id string, dest any) error
	Put(ctx context.Context, collection, id string, doc any) error
	Update(ctx context.Context, collection, id string, upd Update) error
	Delete(ctx context.Context, collection, id string) error
	Scan(ctx context.Context, collection string, filter Filter, dest any) error
}
