package mystore

import (
	"context"
	"fmt"
	"strings"
)

type ctxTransactionKey struct{}

const (
	CompareEqual          = "="
	CompareNotEqual       = "!="
	CompareLessThan       = "<"
	CompareLessOrEqual    = "<="
	CompareGreaterThan    = ">"
	CompareGreaterOrEqual = ">="
)

// Filter selects on a stored field. Field is the name used in the datastore/bson/json struct-tags.
type Filter struct {
	Field   string
	Compare string
	Value   any
}

type PageQuery struct {
	Filters []Filter
	// OrderBy empty means natural store order
	OrderBy    string
	Descending bool
	Offset     int
	// Limit 0 means everything from Offset
	Limit int
}

//go:generate mockgen -source=api.go -package mystore -destination store_mock.go Store
type Store[T any] interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Put(c context.Context, uid string, value T) error
	Get(c context.Context, uid string) (T, bool, error)
	Delete(c context.Context, uid string) error
	List(c context.Context) ([]T, error)
	Query(c context.Context, filters []Filter, orderByField string) ([]T, error)
	// Paginate returns the requested page together with the total number of matching entities
	Paginate(c context.Context, q PageQuery) ([]T, int, error)
}

// New creates a store for entities of type T on top of the shared database handle.
func New[T any](db *Database) Store[T] {
	switch db.backend {
	case backendDatastore:
		return newGcloudStore[T](db.datastoreClient)
	case backendMongo:
		return newMongoStore[T](db.mongoDatabase)
	default:
		return newInMemoryStore[T](db.memory)
	}
}

func kindOf[T any]() string {
	val := new(T)
	kind := fmt.Sprintf("%T", *val)
	if strings.Contains(kind, ".") {
		kind = strings.Split(kind, ".")[1]
	}
	return kind
}

func validCompare(compare string) bool {
	switch compare {
	case CompareEqual, CompareNotEqual, CompareLessThan, CompareLessOrEqual, CompareGreaterThan, CompareGreaterOrEqual:
		return true
	default:
		return false
	}
}
