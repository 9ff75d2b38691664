package mystore

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOpen(t *testing.T) {
	c := context.TODO()

	t.Run("Memory", func(t *testing.T) {
		db, cleanup, err := Open(c, "memory://")
		assert.NoError(t, err)
		defer cleanup()
		assert.Equal(t, "memory", db.Backend())
	})

	t.Run("Unsupported scheme", func(t *testing.T) {
		_, _, err := Open(c, "postgres://localhost/shop")
		assert.EqualError(t, err, "unsupported database-url scheme 'postgres'")
	})

	t.Run("Datastore without project", func(t *testing.T) {
		_, _, err := Open(c, "datastore://")
		assert.Error(t, err)
	})
}

func TestMongoNaming(t *testing.T) {
	t.Run("Collection name", func(t *testing.T) {
		assert.Equal(t, "products", collectionName("Product"))
		assert.Equal(t, "line_items", collectionName("LineItem"))
		assert.Equal(t, "articles", collectionName(kindOf[Article]()))
	})

	t.Run("Database name", func(t *testing.T) {
		u, _ := url.Parse("mongodb://localhost:27017/catalog?retryWrites=true")
		assert.Equal(t, "catalog", mongoDatabaseName(u))

		u, _ = url.Parse("mongodb://localhost:27017")
		assert.Equal(t, "shop", mongoDatabaseName(u))
	})
}

func TestMongoFilter(t *testing.T) {
	t.Run("No filters", func(t *testing.T) {
		f, err := toMongoFilter(nil)
		assert.NoError(t, err)
		assert.Equal(t, bson.M{}, f)
	})

	t.Run("Single filter", func(t *testing.T) {
		f, err := toMongoFilter([]Filter{{Field: "category", Compare: "=", Value: "tennis"}})
		assert.NoError(t, err)
		assert.Equal(t, bson.M{"category": bson.M{"$eq": "tennis"}}, f)
	})

	t.Run("Multiple filters", func(t *testing.T) {
		f, err := toMongoFilter([]Filter{
			{Field: "category", Compare: "=", Value: "tennis"},
			{Field: "price", Compare: "<", Value: 100},
		})
		assert.NoError(t, err)
		assert.Equal(t, bson.M{"$and": bson.A{
			bson.M{"category": bson.M{"$eq": "tennis"}},
			bson.M{"price": bson.M{"$lt": 100}},
		}}, f)
	})

	t.Run("Unsupported comparison", func(t *testing.T) {
		_, err := toMongoFilter([]Filter{{Field: "category", Compare: "like", Value: "ten%"}})
		assert.Error(t, err)
	})
}
