// Package memory implements the store contract in-process. It backs the
// test suites and local development; documents round-trip through BSON so
// encoding behavior matches the mongo backend.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"forumapi/internal/store"
)

type Store struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func New() *Store {
	return &Store{data: map[string]map[string][]byte{}}
}

func (s *Store) collection(name string) map[string][]byte {
	c, ok := s.data[name]
	if !ok {
		c = map[string][]byte{}
		s.data[name] = c
	}
	return c
}

func (s *Store) Get(ctx context.Context, collection, id string, dest any) error {
	s.mu.Lock()
	raw, ok := s.collection(collection)[id]
	s.mu.Unlock()
	if !ok {
		return store.ErrNotFound
	}
	return bson.Unmarshal(raw, dest)
}

func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory: encode %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	s.collection(collection)[id] = raw
	s.mu.Unlock()
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, upd store.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collection(collection)
	raw, ok := coll[id]
	if !ok {
		if len(upd.IfEq) > 0 {
			return store.ErrConditionFailed
		}
		return nil
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("memory: decode %s/%s: %w", collection, id, err)
	}
	for name, want := range upd.IfEq {
		if !equalValues(doc[name], want) {
			return store.ErrConditionFailed
		}
	}
	for name, value := range upd.Set {
		doc[name] = value
	}
	for name, delta := range upd.Add {
		doc[name] = asInt64(doc[name]) + int64(delta)
	}

	updated, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory: encode %s/%s: %w", collection, id, err)
	}
	coll[id] = updated
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.collection(collection), id)
	s.mu.Unlock()
	return nil
}

func (s *Store) Scan(ctx context.Context, collection string, filter store.Filter, dest any) error {
	s.mu.Lock()
	var matched [][]byte
	for _, raw := range s.collection(collection) {
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("memory: decode scan %s: %w", collection, err)
		}
		if matches(doc, filter) {
			matched = append(matched, raw)
		}
	}
	s.mu.Unlock()

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("memory: scan dest must be a pointer to a slice, got %T", dest)
	}
	slice := rv.Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(matched)))
	for _, raw := range matched {
		elem := reflect.New(slice.Type().Elem())
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return fmt.Errorf("memory: decode scan %s: %w", collection, err)
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}

func matches(doc bson.M, filter store.Filter) bool {
	for name, want := range filter.Eq {
		if !equalValues(doc[name], want) {
			return false
		}
	}
	for name, floor := range filter.Gt {
		if !greaterThan(doc[name], floor) {
			return false
		}
	}
	return true
}

// normalize collapses the type differences between BSON-decoded values
// and plain Go values so they compare cleanly.
func normalize(v any) any {
	switch x := v.(type) {
	case bson.DateTime:
		return x.Time().UTC()
	case time.Time:
		return x.UTC()
	case int:
		return int64(x)
	case int32:
		return int64(x)
	default:
		return v
	}
}

func equalValues(a, b any) bool {
	return normalize(a) == normalize(b)
}

func greaterThan(a, b any) bool {
	switch av := normalize(a).(type) {
	case time.Time:
		bv, ok := normalize(b).(time.Time)
		return ok && av.After(bv)
	case int64:
		bv, ok := normalize(b).(int64)
		return ok && av > bv
	case float64:
		bv, ok := normalize(b).(float64)
		return ok && av > bv
	case string:
		bv, ok := normalize(b).(string)
		return ok && av > bv
	default:
		return false
	}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float64:
		return int64(x)
	default:
		return 0
	}
}
