package mystore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type Article struct {
	UID      string   `json:"uid" bson:"_id" datastore:"uid"`
	Name     string   `json:"name" bson:"name" datastore:"name"`
	Group    string   `json:"group" bson:"group" datastore:"group"`
	Price    float64  `json:"price" bson:"price" datastore:"price"`
	Tags     []string `json:"tags" bson:"tags" datastore:"tags"`
	InStock  bool     `json:"inStock" bson:"inStock" datastore:"inStock"`
	Quantity *int     `json:"quantity,omitempty" bson:"quantity,omitempty" datastore:"quantity"`
}

var (
	article1 = Article{UID: "1", Name: "racket", Group: "tennis", Price: 169.0, InStock: true}
	article2 = Article{UID: "2", Name: "balls", Group: "tennis", Price: 10.0}
	article3 = Article{UID: "3", Name: "stick", Group: "hockey", Price: 190.0, InStock: true}
	article4 = Article{UID: "4", Name: "shoes", Group: "running", Price: 120.0}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	s := New[Article](NewInMemoryDatabase())

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := s.Get(c, article1.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		err := s.Put(c, article1.UID, article1)
		assert.NoError(t, err)
	})

	t.Run("Get found", func(t *testing.T) {
		a, found, err := s.Get(c, article1.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, article1, a)
	})

	t.Run("List", func(t *testing.T) {
		all, err := s.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []Article{article1}, all)
	})

	t.Run("Delete", func(t *testing.T) {
		err := s.Delete(c, article1.UID)
		assert.NoError(t, err)

		_, found, err := s.Get(c, article1.UID)
		assert.NoError(t, err)
		assert.False(t, found)

		all, err := s.List(c)
		assert.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Delete not existing", func(t *testing.T) {
		err := s.Delete(c, "unknown")
		assert.NoError(t, err)
	})
}

func TestStoreDoesNotShareMemory(t *testing.T) {
	c := context.TODO()
	s := New[Article](NewInMemoryDatabase())

	// given
	original := Article{UID: "1", Tags: []string{"a", "b"}}
	err := s.Put(c, original.UID, original)
	assert.NoError(t, err)

	// when
	original.Tags[0] = "changed"
	fetched, _, err := s.Get(c, "1")
	assert.NoError(t, err)
	fetched.Tags[1] = "changed too"

	// then
	again, _, err := s.Get(c, "1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, again.Tags)
}

func TestStoreTransaction(t *testing.T) {
	c := context.TODO()

	t.Run("Commit", func(t *testing.T) {
		s := New[Article](NewInMemoryDatabase())

		err := s.RunInTransaction(c, func(c context.Context) error {
			err := s.Put(c, article1.UID, article1)
			if err != nil {
				return err
			}
			_, found, err := s.Get(c, article1.UID)
			assert.True(t, found)
			return err
		})
		assert.NoError(t, err)

		_, found, err := s.Get(c, article1.UID)
		assert.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("Rollback", func(t *testing.T) {
		s := New[Article](NewInMemoryDatabase())
		_ = s.Put(c, article1.UID, article1)

		err := s.RunInTransaction(c, func(c context.Context) error {
			_ = s.Put(c, article2.UID, article2)
			_ = s.Delete(c, article1.UID)
			return fmt.Errorf("something went wrong")
		})
		assert.EqualError(t, err, "something went wrong")

		all, err := s.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []Article{article1}, all)
	})

	t.Run("Nested transaction joins outer", func(t *testing.T) {
		s := New[Article](NewInMemoryDatabase())

		err := s.RunInTransaction(c, func(c context.Context) error {
			return s.RunInTransaction(c, func(c context.Context) error {
				return s.Put(c, article1.UID, article1)
			})
		})
		assert.NoError(t, err)

		_, found, _ := s.Get(c, article1.UID)
		assert.True(t, found)
	})

	t.Run("Other store usable within transaction", func(t *testing.T) {
		db := NewInMemoryDatabase()
		s1 := New[Article](db)
		s2 := New[Article](db)

		err := s1.RunInTransaction(c, func(c context.Context) error {
			err := s2.RunInTransaction(c, func(c context.Context) error {
				return s2.Put(c, article2.UID, article2)
			})
			if err != nil {
				return err
			}
			_, found, err := s2.Get(c, article2.UID)
			assert.True(t, found)
			if err != nil {
				return err
			}
			return s1.Put(c, article1.UID, article1)
		})
		assert.NoError(t, err)
	})

	t.Run("Rollback spans all stores of the database", func(t *testing.T) {
		db := NewInMemoryDatabase()
		s1 := New[Article](db)
		s2 := New[Article](db)
		_ = s2.Put(c, article3.UID, article3)

		err := s1.RunInTransaction(c, func(c context.Context) error {
			_ = s1.Put(c, article1.UID, article1)
			_ = s2.Put(c, article2.UID, article2)
			_ = s2.Delete(c, article3.UID)
			return fmt.Errorf("something went wrong")
		})
		assert.Error(t, err)

		all1, err := s1.List(c)
		assert.NoError(t, err)
		assert.Empty(t, all1)

		all2, err := s2.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []Article{article3}, all2)
	})

	t.Run("Stores of different databases do not share transactions", func(t *testing.T) {
		s1 := New[Article](NewInMemoryDatabase())
		s2 := New[Article](NewInMemoryDatabase())

		err := s1.RunInTransaction(c, func(c context.Context) error {
			_ = s2.Put(c, article2.UID, article2)
			return fmt.Errorf("something went wrong")
		})
		assert.Error(t, err)

		_, found, err := s2.Get(c, article2.UID)
		assert.NoError(t, err)
		assert.True(t, found)
	})
}

func TestStoreQuery(t *testing.T) {
	c := context.TODO()
	s := New[Article](NewInMemoryDatabase())
	for _, a := range []Article{article1, article2, article3, article4} {
		err := s.Put(c, a.UID, a)
		assert.NoError(t, err)
	}

	t.Run("Natural order", func(t *testing.T) {
		all, err := s.Query(c, nil, "")
		assert.NoError(t, err)
		assert.Equal(t, []Article{article1, article2, article3, article4}, all)
	})

	t.Run("Filter on string", func(t *testing.T) {
		tennis, err := s.Query(c, []Filter{{Field: "group", Compare: "=", Value: "tennis"}}, "")
		assert.NoError(t, err)
		assert.Equal(t, []Article{article1, article2}, tennis)
	})

	t.Run("Filter on number and bool", func(t *testing.T) {
		expensive, err := s.Query(c, []Filter{
			{Field: "price", Compare: ">=", Value: 150},
			{Field: "inStock", Compare: "=", Value: true},
		}, "price")
		assert.NoError(t, err)
		assert.Equal(t, []Article{article1, article3}, expensive)
	})

	t.Run("Order by price", func(t *testing.T) {
		all, err := s.Query(c, nil, "price")
		assert.NoError(t, err)
		assert.Equal(t, []Article{article2, article4, article1, article3}, all)
	})

	t.Run("Unknown field", func(t *testing.T) {
		_, err := s.Query(c, []Filter{{Field: "color", Compare: "=", Value: "red"}}, "")
		assert.Error(t, err)
	})

	t.Run("Unsupported comparison", func(t *testing.T) {
		_, err := s.Query(c, []Filter{{Field: "group", Compare: "~", Value: "tennis"}}, "")
		assert.Error(t, err)
	})
}

func TestStorePaginate(t *testing.T) {
	c := context.TODO()
	s := New[Article](NewInMemoryDatabase())
	for _, a := range []Article{article1, article2, article3, article4} {
		err := s.Put(c, a.UID, a)
		assert.NoError(t, err)
	}

	testCases := []struct {
		name  string
		query PageQuery
		uids  []string
		total int
	}{
		{
			name:  "First page",
			query: PageQuery{Offset: 0, Limit: 3},
			uids:  []string{"1", "2", "3"},
			total: 4,
		},
		{
			name:  "Last page",
			query: PageQuery{Offset: 3, Limit: 3},
			uids:  []string{"4"},
			total: 4,
		},
		{
			name:  "Beyond last page",
			query: PageQuery{Offset: 9, Limit: 3},
			uids:  []string{},
			total: 4,
		},
		{
			name:  "Filtered and descending",
			query: PageQuery{Filters: []Filter{{Field: "group", Compare: "=", Value: "tennis"}}, OrderBy: "price", Descending: true, Limit: 10},
			uids:  []string{"1", "2"},
			total: 2,
		},
		{
			name:  "Second page ascending",
			query: PageQuery{OrderBy: "price", Offset: 2, Limit: 2},
			uids:  []string{"1", "3"},
			total: 4,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, total, err := s.Paginate(c, tc.query)
			assert.NoError(t, err)
			assert.Equal(t, tc.total, total)
			uids := []string{}
			for _, a := range page {
				uids = append(uids, a.UID)
			}
			assert.Equal(t, tc.uids, uids)
		})
	}
}
