package mystore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/camelcase"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoOperators = map[string]string{
	CompareEqual:          "$eq",
	CompareNotEqual:       "$ne",
	CompareLessThan:       "$lt",
	CompareLessOrEqual:    "$lte",
	CompareGreaterThan:    "$gt",
	CompareGreaterOrEqual: "$gte",
}

type mongoStore[T any] struct {
	collection *mongo.Collection
	kind       string
}

func newMongoStore[T any](db *mongo.Database) *mongoStore[T] {
	kind := kindOf[T]()
	return &mongoStore[T]{
		collection: db.Collection(collectionName(kind)),
		kind:       kind,
	}
}

// collectionName converts a Go type name into a plural snake-case name: LineItem -> line_items
func collectionName(kind string) string {
	return strings.ToLower(strings.Join(camelcase.Split(kind), "_")) + "s"
}

// RunInTransaction requires mongodb to run as a replica-set.
func (s *mongoStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if mongo.SessionFromContext(c) != nil {
		// Join the running transaction
		return f(c)
	}

	session, err := s.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("error starting session: %w", err)
	}
	defer session.EndSession(c)

	// WithTransaction retries on transient transaction errors
	_, err = session.WithTransaction(c, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, f(sc)
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *mongoStore[T]) Put(c context.Context, uid string, value T) error {
	_, err := s.collection.ReplaceOne(c, bson.M{"_id": uid}, value, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *mongoStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	value := new(T)

	err := s.collection.FindOne(c, bson.M{"_id": uid}).Decode(value)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return *value, false, nil
		}
		return *value, false, fmt.Errorf("error fetching entity %s with uid %s: %s", s.kind, uid, err)
	}

	return *value, true, nil
}

func (s *mongoStore[T]) Delete(c context.Context, uid string) error {
	_, err := s.collection.DeleteOne(c, bson.M{"_id": uid})
	if err != nil {
		return fmt.Errorf("error deleting entity %s with uid %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *mongoStore[T]) List(c context.Context) ([]T, error) {
	return s.Query(c, nil, "")
}

func (s *mongoStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	result, _, err := s.Paginate(c, PageQuery{
		Filters: filters,
		OrderBy: orderByField,
	})
	return result, err
}

func (s *mongoStore[T]) Paginate(c context.Context, q PageQuery) ([]T, int, error) {
	filter, err := toMongoFilter(q.Filters)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.collection.CountDocuments(c, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting entities %s: %s", s.kind, err)
	}

	opts := options.Find()
	if q.OrderBy != "" {
		direction := 1
		if q.Descending {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: direction}})
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.collection.Find(c, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching entities %s: %s", s.kind, err)
	}
	defer cursor.Close(c)

	objectsToFetch := []T{}
	err = cursor.All(c, &objectsToFetch)
	if err != nil {
		return nil, 0, fmt.Errorf("error decoding entities %s: %s", s.kind, err)
	}

	return objectsToFetch, int(total), nil
}

func toMongoFilter(filters []Filter) (bson.M, error) {
	conditions := bson.A{}
	for _, f := range filters {
		operator, found := mongoOperators[f.Compare]
		if !found {
			return nil, fmt.Errorf("unsupported comparison '%s' on field %s", f.Compare, f.Field)
		}
		conditions = append(conditions, bson.M{f.Field: bson.M{operator: f.Value}})
	}

	switch len(conditions) {
	case 0:
		return bson.M{}, nil
	case 1:
		return conditions[0].(bson.M), nil
	default:
		return bson.M{"$and": conditions}, nil
	}
}
