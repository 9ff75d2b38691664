package mystore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The same contract runs against every backend. The datastore and mongodb backends
// only run when an emulator or test-database is available.

func TestInMemoryStoreContract(t *testing.T) {
	StoreContract{
		newStore: func(t *testing.T) Store[Article] {
			return New[Article](NewInMemoryDatabase())
		},
	}.Test(t)
}

func TestDatastoreStoreContract(t *testing.T) {
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("DATASTORE_EMULATOR_HOST not set")
	}
	StoreContract{
		newStore: func(t *testing.T) Store[Article] {
			return openForContract(t, "datastore://contract-test")
		},
	}.Test(t)
}

func TestMongoStoreContract(t *testing.T) {
	mongoURL := os.Getenv("MONGODB_TEST_URL")
	if mongoURL == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}
	StoreContract{
		newStore: func(t *testing.T) Store[Article] {
			return openForContract(t, fmt.Sprintf("%s/contract_%d", mongoURL, time.Now().UnixNano()))
		},
	}.Test(t)
}

func openForContract(t *testing.T, databaseURL string) Store[Article] {
	c := context.Background()
	db, cleanup, err := Open(c, databaseURL)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	s := New[Article](db)
	existing, err := s.List(c)
	require.NoError(t, err)
	for _, a := range existing {
		require.NoError(t, s.Delete(c, a.UID))
	}
	return s
}

type StoreContract struct {
	newStore func(t *testing.T) Store[Article]
}

func (sc StoreContract) Test(t *testing.T) {
	t.Run("can put, get and delete", func(t *testing.T) {
		var (
			sut = sc.newStore(t)
			c   = context.Background()
		)

		assert.NoError(t, sut.Put(c, article1.UID, article1))

		got, found, err := sut.Get(c, article1.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, article1.Name, got.Name)
		assert.Equal(t, article1.Price, got.Price)

		assert.NoError(t, sut.Delete(c, article1.UID))

		_, found, err = sut.Get(c, article1.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("can filter, order and paginate", func(t *testing.T) {
		var (
			sut = sc.newStore(t)
			c   = context.Background()
		)
		for _, a := range []Article{article1, article2, article3, article4} {
			require.NoError(t, sut.Put(c, a.UID, a))
		}

		page, total, err := sut.Paginate(c, PageQuery{
			Filters:    []Filter{{Field: "group", Compare: CompareEqual, Value: "tennis"}},
			OrderBy:    "price",
			Descending: true,
			Limit:      1,
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, page, 1)
		assert.Equal(t, "racket", page[0].Name)

		page, total, err = sut.Paginate(c, PageQuery{OrderBy: "price", Offset: 1, Limit: 2})
		assert.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Equal(t, []string{"shoes", "racket"}, names(page))
	})

	t.Run("rolls back a failed transaction", func(t *testing.T) {
		var (
			sut = sc.newStore(t)
			c   = context.Background()
		)

		err := sut.RunInTransaction(c, func(c context.Context) error {
			err := sut.Put(c, article2.UID, article2)
			if err != nil {
				return err
			}
			return fmt.Errorf("business rule violated")
		})
		assert.Error(t, err)

		_, found, err := sut.Get(c, article2.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

func names(articles []Article) []string {
	result := []string{}
	for _, a := range articles {
		result = append(result, a.Name)
	}
	return result
}
