package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/catalogshop/lib/mycontext"
	"github.com/MarcGrol/catalogshop/lib/mypubsub"
	"github.com/MarcGrol/catalogshop/lib/mystore"
)

func TestRouter(t *testing.T) {
	t.Run("Pages", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := context.TODO()

		// given
		pubsub := mypubsub.NewMockPubSub(ctrl)
		pubsub.EXPECT().CreateTopic(c, gomock.Any()).Return(nil).Times(2)

		// when
		router, _, err := createRouter(c, mystore.NewInMemoryDatabase(), pubsub)

		// then
		assert.NoError(t, err)
		for _, path := range []string{"/", "/product/new", "/api/product", "/_ah/warmup"} {
			response := httptest.NewRecorder()
			router.ServeHTTP(response, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, 200, response.Code, path)
		}
	})

	t.Run("Events reach pubsub after forwarding", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := context.TODO()

		// given
		pubsub := mypubsub.NewMockPubSub(ctrl)
		pubsub.EXPECT().CreateTopic(c, gomock.Any()).Return(nil).Times(2)
		router, publisher, err := createRouter(c, mystore.NewInMemoryDatabase(), pubsub)
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPost, "/cart", nil)
		request.Header.Set("Accept", "application/json")
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)
		require.Equal(t, 201, response.Code)

		var published string
		pubsub.EXPECT().Publish(gomock.Any(), "cart", gomock.Any()).DoAndReturn(func(c context.Context, topic string, data string) error {
			published = data
			return nil
		})

		// when
		err = publisher.Forward(c)

		// then
		assert.NoError(t, err)
		assert.Contains(t, published, "cart.created")
	})
}

func TestServeConfigErrors(t *testing.T) {
	for _, name := range []string{"PORT", "DATABASE_URL", "URL_MONGODB", "GOOGLE_CLOUD_PROJECT"} {
		t.Setenv(name, "")
	}

	t.Run("Missing database-url", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{})

		err := cmd.ExecuteContext(context.TODO())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing database-url")
	})

	t.Run("Unsupported database", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--database-url", "postgres://localhost/shop"})

		err := cmd.ExecuteContext(context.TODO())

		assert.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unsupported database-url scheme 'postgres'"))
	})

	t.Run("Project from config file applies to logging and tracing", func(t *testing.T) {
		defer mycontext.SetProjectID("")
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("google_cloud_project: from-file\n"), 0644))

		cmd := newRootCmd()
		cmd.SetArgs([]string{"--config", path, "--database-url", "postgres://localhost/shop"})

		err := cmd.ExecuteContext(context.TODO())

		assert.Error(t, err)
		assert.Equal(t, "from-file", mycontext.ProjectID())
	})
}
