package mystore

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
)

// memoryDatabase is shared by all in-memory stores of one Database, so a transaction can span stores.
type memoryDatabase struct {
	sync.Mutex
}

type inMemoryTransactionKey struct {
	db *memoryDatabase
}

type inMemoryTransaction struct {
	// one restore function per store that was written to
	rollbacks map[any]func()
}

func (t *inMemoryTransaction) rollback() {
	for _, restore := range t.rollbacks {
		restore()
	}
}

type inMemoryStore[T any] struct {
	db    *memoryDatabase
	items map[string][]byte
	// insertion order, acts as natural order
	uids []string
}

func newInMemoryStore[T any](db *memoryDatabase) *inMemoryStore[T] {
	return &inMemoryStore[T]{
		db:    db,
		items: map[string][]byte{},
		uids:  []string{},
	}
}

func (s *inMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if s.transaction(c) != nil {
		return f(c)
	}

	// Start transaction
	s.db.Lock()
	defer s.db.Unlock()

	t := &inMemoryTransaction{rollbacks: map[any]func(){}}

	// Within this block everything is transactional
	err := f(context.WithValue(c, inMemoryTransactionKey{db: s.db}, t))
	if err != nil {
		t.rollback()
		return err
	}

	// Commit
	return nil
}

func (s *inMemoryStore[T]) transaction(c context.Context) *inMemoryTransaction {
	t, _ := c.Value(inMemoryTransactionKey{db: s.db}).(*inMemoryTransaction)
	return t
}

func (s *inMemoryStore[T]) lock(c context.Context) func() {
	if s.transaction(c) != nil {
		return func() {}
	}
	s.db.Lock()
	return s.db.Unlock
}

// snapshot remembers the state before the first write of a transaction
func (s *inMemoryStore[T]) snapshot(c context.Context) {
	t := s.transaction(c)
	if t == nil {
		return
	}
	if _, exists := t.rollbacks[s]; exists {
		return
	}
	items := maps.Clone(s.items)
	uids := slices.Clone(s.uids)
	t.rollbacks[s] = func() {
		s.items = items
		s.uids = uids
	}
}

func (s *inMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	// Store serialized so callers never share memory with the stored entity
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error serializing entity with uid %s: %s", uid, err)
	}

	unlock := s.lock(c)
	defer unlock()
	s.snapshot(c)

	_, exists := s.items[uid]
	if !exists {
		s.uids = append(s.uids, uid)
	}
	s.items[uid] = data

	return nil
}

func (s *inMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	unlock := s.lock(c)
	data, exists := s.items[uid]
	unlock()

	if !exists {
		return *new(T), false, nil
	}

	value, err := decode[T](data)
	if err != nil {
		return *new(T), false, fmt.Errorf("error deserializing entity with uid %s: %s", uid, err)
	}

	return value, true, nil
}

func (s *inMemoryStore[T]) Delete(c context.Context, uid string) error {
	unlock := s.lock(c)
	defer unlock()

	_, exists := s.items[uid]
	if !exists {
		return nil
	}
	s.snapshot(c)
	delete(s.items, uid)

	for idx, u := range s.uids {
		if u == uid {
			s.uids = append(s.uids[:idx], s.uids[idx+1:]...)
			break
		}
	}

	return nil
}

func (s *inMemoryStore[T]) List(c context.Context) ([]T, error) {
	return s.Query(c, nil, "")
}

func (s *inMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	result, _, err := s.Paginate(c, PageQuery{
		Filters: filters,
		OrderBy: orderByField,
	})
	return result, err
}

func (s *inMemoryStore[T]) Paginate(c context.Context, q PageQuery) ([]T, int, error) {
	all, err := s.all(c)
	if err != nil {
		return nil, 0, err
	}

	matching := make([]T, 0, len(all))
	for _, v := range all {
		ok, err := matchesAll(v, q.Filters)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matching = append(matching, v)
		}
	}

	if q.OrderBy != "" {
		var sortErr error
		sort.SliceStable(matching, func(i, j int) bool {
			cmp, err := compareFields(matching[i], matching[j], q.OrderBy)
			if err != nil {
				sortErr = err
				return false
			}
			if q.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
		if sortErr != nil {
			return nil, 0, sortErr
		}
	}

	total := len(matching)

	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = start + min(q.Limit, total-start)
	}

	return matching[start:end], total, nil
}

func (s *inMemoryStore[T]) all(c context.Context) ([]T, error) {
	unlock := s.lock(c)
	serialized := make([][]byte, 0, len(s.uids))
	for _, uid := range s.uids {
		serialized = append(serialized, s.items[uid])
	}
	unlock()

	result := make([]T, 0, len(serialized))
	for _, data := range serialized {
		value, err := decode[T](data)
		if err != nil {
			return nil, fmt.Errorf("error deserializing entity: %s", err)
		}
		result = append(result, value)
	}
	return result, nil
}

func decode[T any](data []byte) (T, error) {
	value := new(T)
	err := json.Unmarshal(data, value)
	if err != nil {
		return *value, err
	}
	return *value, nil
}
