package myhttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/catalogshop/lib/myerrors"
)

type article struct {
	Name  string   `json:"name" form:"name"`
	Price float64  `json:"price" form:"price"`
	Tags  []string `json:"tags" form:"tags"`
	Count *int     `json:"count" form:"count"`
}

func TestDecode(t *testing.T) {

	t.Run("Query keeps defaults", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/product?name=racket", nil)
		a := article{Price: 10}

		err := DecodeQuery(request, &a)

		assert.NoError(t, err)
		assert.Equal(t, "racket", a.Name)
		assert.Equal(t, 10.0, a.Price)
	})

	t.Run("Query with invalid number", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/product?price=cheap", nil)

		err := DecodeQuery(request, &article{})

		assert.Error(t, err)
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
	})

	t.Run("Json body", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`{"name":"racket","price":12.5,"count":3}`))
		request.Header.Set("Content-Type", "application/json; charset=utf-8")
		a := article{}

		err := DecodeBody(request, &a)

		assert.NoError(t, err)
		assert.Equal(t, "racket", a.Name)
		assert.Equal(t, 12.5, a.Price)
		assert.Equal(t, 3, *a.Count)
	})

	t.Run("Form body", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`name=racket&price=12.5&tags=a&tags=b`))
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		a := article{}

		err := DecodeBody(request, &a)

		assert.NoError(t, err)
		assert.Equal(t, "racket", a.Name)
		assert.Equal(t, 12.5, a.Price)
		assert.Equal(t, []string{"a", "b"}, a.Tags)
		assert.Nil(t, a.Count)
	})

	t.Run("Invalid json body", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`{"name":`))
		request.Header.Set("Content-Type", "application/json")

		err := DecodeBody(request, &article{})

		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
	})

	t.Run("Unsupported content-type", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`<name/>`))
		request.Header.Set("Content-Type", "application/xml")

		err := DecodeBody(request, &article{})

		assert.Equal(t, 415, myerrors.GetHTTPStatus(err))
	})
}
