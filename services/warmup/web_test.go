package warmup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/catalogshop/lib/mystore"
	"github.com/MarcGrol/catalogshop/services/catalog"
)

type unreachableStore struct {
	mystore.Store[catalog.Product]
}

func (s unreachableStore) Paginate(c context.Context, q mystore.PageQuery) ([]catalog.Product, int, error) {
	return nil, 0, fmt.Errorf("connection refused")
}

func TestWarmup(t *testing.T) {
	c := context.TODO()

	t.Run("Database reachable", func(t *testing.T) {
		// given
		productStore := mystore.New[catalog.Product](mystore.NewInMemoryDatabase())
		productStore.Put(c, "p1", catalog.Product{UID: "p1", Code: "racket"})
		router := mux.NewRouter()
		err := NewService(productStore).RegisterEndpoints(c, router)
		assert.NoError(t, err)

		// when
		request := httptest.NewRequest(http.MethodGet, "/_ah/warmup", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.JSONEq(t, `{"Message":"Successfully processed warmup request"}`, response.Body.String())
	})

	t.Run("Database unreachable", func(t *testing.T) {
		// given
		router := mux.NewRouter()
		err := NewService(unreachableStore{}).RegisterEndpoints(c, router)
		assert.NoError(t, err)

		// when
		request := httptest.NewRequest(http.MethodGet, "/_ah/warmup", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 503, response.Code)
		assert.Contains(t, response.Body.String(), "connection refused")
	})
}
