package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchToken(t *testing.T) {
	t.Run("Successful Fetch", func(t *testing.T) {
		var gotClientID string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotClientID = r.FormValue("client_id")
			if gotClientID == "" {
				// clientcredentials may send credentials via basic auth instead.
				gotClientID, _, _ = r.BasicAuth()
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"fetched-token","token_type":"bearer"}`))
		}))
		defer server.Close()

		token, err := FetchToken(context.Background(), "cid", "csec", server.URL, server.Client())
		require.NoError(t, err)
		assert.Equal(t, "fetched-token", token)
		assert.Equal(t, "cid", gotClientID)
	})

	t.Run("Server Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_client", http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := FetchToken(context.Background(), "cid", "csec", server.URL, server.Client())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oauth2 token request failed")
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := FetchToken(context.Background(), "", "csec", "https://auth.example.com/token", nil)
		assert.Error(t, err)
	})

	t.Run("Empty Access Token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"","token_type":"bearer"}`))
		}))
		defer server.Close()

		_, err := FetchToken(context.Background(), "cid", "csec", server.URL, server.Client())
		assert.Error(t, err)
	})
}
