package mystore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/datastore"
)

const maxTransactionAttempts = 3

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
}

func newGcloudStore[T any](client *datastore.Client) *gcloudStore[T] {
	return &gcloudStore[T]{
		client: client,
		kind:   kindOf[T](),
	}
}

func (s *gcloudStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if transactionFrom(c) != nil {
		// Join the running transaction
		return f(c)
	}

	var err error
	for i := 1; i <= maxTransactionAttempts; i++ {
		err = s.runInTransaction(c, f)
		if err != nil {
			if errors.Is(err, datastore.ErrConcurrentTransaction) {
				log.Printf("Concurrent transaction error, retrying (%d of %d): %s", i, maxTransactionAttempts, err)
				// force retry: this approach requires idempotency of the business logic
				continue
			}

			return err
		}
		return nil
	}
	return err
}

func (s *gcloudStore[T]) runInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	t, err := s.client.NewTransaction(c)
	if err != nil {
		return fmt.Errorf("error creating transaction: %w", err)
	}

	// Shadow original context with new transactional context
	err = f(context.WithValue(c, ctxTransactionKey{}, t))
	if err != nil {
		// Rollback
		rollbackError := t.Rollback()
		if rollbackError != nil {
			log.Printf("error rolling-back transaction %p: %s", t, rollbackError)
		}

		return err
	}

	// Commit
	_, err = t.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func transactionFrom(c context.Context) *datastore.Transaction {
	t, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction)
	if !ok {
		return nil
	}
	return t
}

func (s *gcloudStore[T]) key(uid string) *datastore.Key {
	return datastore.NameKey(s.kind, uid, nil)
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	transaction := transactionFrom(c)

	if transaction != nil {
		_, err := transaction.Put(s.key(uid), &value)
		if err != nil {
			return fmt.Errorf("error transactionally storing entity %s with uid %s: %s", s.kind, uid, err)
		}
		return nil
	}

	_, err := s.client.Put(c, s.key(uid), &value)
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	value := new(T)

	var err error
	transaction := transactionFrom(c)
	if transaction != nil {
		err = transaction.Get(s.key(uid), value)
	} else {
		err = s.client.Get(c, s.key(uid), value)
	}
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return *value, false, nil
		}
		return *value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	return *value, true, nil
}

func (s *gcloudStore[T]) Delete(c context.Context, uid string) error {
	var err error
	transaction := transactionFrom(c)
	if transaction != nil {
		err = transaction.Delete(s.key(uid))
	} else {
		err = s.client.Delete(c, s.key(uid))
	}
	if err != nil {
		return fmt.Errorf("error deleting entity %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) List(c context.Context) ([]T, error) {
	return s.Query(c, nil, "")
}

func (s *gcloudStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	result, _, err := s.Paginate(c, PageQuery{
		Filters: filters,
		OrderBy: orderByField,
	})
	return result, err
}

func (s *gcloudStore[T]) Paginate(c context.Context, pq PageQuery) ([]T, int, error) {
	q := datastore.NewQuery(s.kind)
	for _, f := range pq.Filters {
		if !validCompare(f.Compare) {
			return nil, 0, fmt.Errorf("unsupported comparison '%s' on field %s", f.Compare, f.Field)
		}
		q = q.FilterField(f.Field, f.Compare, f.Value)
	}

	transaction := transactionFrom(c)
	if transaction != nil {
		q = q.Transaction(transaction)
	}

	total, err := s.client.Count(c, q)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting entities %s: %s", s.kind, err)
	}

	if pq.OrderBy != "" {
		if pq.Descending {
			q = q.Order("-" + pq.OrderBy)
		} else {
			q = q.Order(pq.OrderBy)
		}
	}
	if pq.Offset > 0 {
		q = q.Offset(pq.Offset)
	}
	if pq.Limit > 0 {
		q = q.Limit(pq.Limit)
	}

	objectsToFetch := []T{}
	_, err = s.client.GetAll(c, q, &objectsToFetch)
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching entities %s: %s", s.kind, err)
	}

	return objectsToFetch, total, nil
}
