//go:build unit

package restclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/restclient"
)

func TestClient_Get(t *testing.T) {
	t.Parallel()

	t.Run("should decode JSON and send the bearer token", func(t *testing.T) {
		t.Parallel()

		// given
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(map[string]string{"name": "depgate"})
		}))
		t.Cleanup(server.Close)
		client := restclient.NewClient(server.URL+"/", restclient.Bearer("secret"))

		// when
		var out struct {
			Name string `json:"name"`
		}
		err := client.Get(context.Background(), "/thing", &out)

		// then
		require.NoError(t, err)
		assert.Equal(t, "depgate", out.Name)
		assert.Equal(t, "Bearer secret", gotAuth)
	})

	t.Run("should return an error with the body when status is not 2xx", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("no access"))
		}))
		t.Cleanup(server.Close)
		client := restclient.NewClient(server.URL, nil)

		// when
		err := client.Get(context.Background(), "/thing", &struct{}{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
		assert.Contains(t, err.Error(), "no access")
	})
}

func TestClient_Post(t *testing.T) {
	t.Parallel()

	t.Run("should send JSON body with basic PAT auth", func(t *testing.T) {
		t.Parallel()

		// given
		var gotBody map[string]string
		var gotUser, gotPass string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, _ = r.BasicAuth()
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
		}))
		t.Cleanup(server.Close)
		client := restclient.NewClient(server.URL, restclient.BasicPAT("pat"))

		// when
		err := client.Post(context.Background(), "/comments", map[string]string{"content": "hi"})

		// then
		require.NoError(t, err)
		assert.Empty(t, gotUser)
		assert.Equal(t, "pat", gotPass)
		assert.Equal(t, "hi", gotBody["content"])
	})
}

func TestClient_GetWithHeaders(t *testing.T) {
	t.Parallel()

	t.Run("should return the response headers with the decoded body", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Ms-Continuationtoken", "page-2")
			_ = json.NewEncoder(w).Encode(map[string]int{"count": 3})
		}))
		t.Cleanup(server.Close)
		client := restclient.NewClient(server.URL, nil)

		// when
		var out struct {
			Count int `json:"count"`
		}
		header, err := client.GetWithHeaders(context.Background(), "/threads", &out)

		// then
		require.NoError(t, err)
		assert.Equal(t, 3, out.Count)
		assert.Equal(t, "page-2", header.Get("x-ms-continuationtoken"))
	})
}
