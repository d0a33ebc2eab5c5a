package auth

import (
	"context"
	"fmt"
	"net/http"

	"zenrin-geocode/internal/logging"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// FetchToken obtains a bearer token through the OAuth2 client-credentials
// flow. The provided client carries the caller's proxy and TLS settings for
// the token request.
func FetchToken(ctx context.Context, clientID, clientSecret, tokenURL string, client *http.Client) (string, error) {
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return "", fmt.Errorf("oauth2 token fetch requires client id, client secret, and token URL")
	}

	conf := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	if client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	}

	logging.Logf(logging.Debug, "Requesting OAuth2 token from %s", tokenURL)
	token, err := conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("oauth2 token request failed: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("oauth2 token response contained no access token")
	}
	return token.AccessToken, nil
}
