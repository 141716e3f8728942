// Package testutil provides shared test helpers for mock backends, signed
// test tokens, and session fixtures.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/horuslm/horuslm/internal/api"
)

// StaticToken is a fixed api.TokenSource for tests.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// NewAPIClient starts a mock backend around handler and returns a client
// bound to it. The server is torn down with the test.
func NewAPIClient(t *testing.T, tokens api.TokenSource, handler http.HandlerFunc) *api.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, 5*time.Second, tokens)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

// RefuseAllRequests is a handler for cases where no network call may happen.
func RefuseAllRequests(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected %s %s: no network call may happen here", r.Method, r.URL.Path)
	}
}

// SignedToken builds an HS256 token with the given expiry. The signature is
// never verified client-side, only the expiry claim matters.
func SignedToken(t *testing.T, userID string, expiry time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// WriteSessionFile persists token the way the session store does and returns
// the file path.
func WriteSessionFile(t *testing.T, dir, token string) string {
	t.Helper()

	file := filepath.Join(dir, "session.yml")
	require.NoError(t, os.WriteFile(file, []byte("token: "+token+"\n"), 0600))
	return file
}
