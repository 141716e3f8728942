package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestClient_Get(t *testing.T) {
	tests := []struct {
		name              string
		token             staticToken
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantKind    Kind
		wantMessage string
		wantTitle   string
	}{
		{
			name:  "success attaches bearer token and decodes the response",
			token: "token-123",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"title": "My Notebook"}`))
			},
			wantTitle: "My Notebook",
		},
		{
			name:  "empty token sends no authorization header",
			token: "",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{}`))
			},
		},
		{
			name: "401 classifies as auth",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": "invalid token"}`))
			},
			wantKind:    KindAuth,
			wantMessage: "invalid token",
		},
		{
			name: "403 classifies as auth",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantKind: KindAuth,
		},
		{
			name: "404 classifies as not found",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantKind: KindNotFound,
		},
		{
			name: "422 passes the backend message through verbatim",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message": "title is required"}`))
			},
			wantKind:    KindValidation,
			wantMessage: "title is required",
		},
		{
			name: "500 classifies as validation with empty message",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`boom`))
			},
			wantKind: KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second, tt.token)
			defer func() {
				_ = client.Close()
			}()

			var out struct {
				Title string `json:"title"`
			}
			err := client.Get(context.Background(), "/notebooks/1", &out)

			if tt.wantKind == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.wantTitle, out.Title)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestClient_Get_networkFailure(t *testing.T) {
	// A server that is already closed produces a transport-level failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second, nil)
	defer func() {
		_ = client.Close()
	}()

	err := client.Get(context.Background(), "/notebooks", nil)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Contains(t, UserMessage(err), "connection")
}

func TestClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() {
			_ = file.Close()
		}()
		assert.Equal(t, "report.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filePath": "uploads/report.pdf"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, staticToken("token"))
	defer func() {
		_ = client.Close()
	}()

	var out struct {
		FilePath string `json:"filePath"`
	}
	err := client.Upload(context.Background(), "/sources/upload/nb-1/src-1", "file", "report.pdf", strings.NewReader("%PDF-1.4"), &out)
	require.NoError(t, err)
	assert.Equal(t, "uploads/report.pdf", out.FilePath)
}

func TestError_UserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "auth failures read as permission problems",
			err:  &Error{Kind: KindAuth, StatusCode: 403},
			want: "You don't have permission to perform this action.",
		},
		{
			name: "not found",
			err:  &Error{Kind: KindNotFound, StatusCode: 404},
			want: "Resource not found or you don't have permission to access it.",
		},
		{
			name: "network",
			err:  &Error{Kind: KindNetwork},
			want: "Network error. Please check your connection and try again.",
		},
		{
			name: "validation passes the backend message through",
			err:  &Error{Kind: KindValidation, StatusCode: 422, Message: "title is required"},
			want: "title is required",
		},
		{
			name: "validation without a message falls back to a generic notice",
			err:  &Error{Kind: KindValidation, StatusCode: 500},
			want: "The request failed. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.UserMessage())
		})
	}
}
