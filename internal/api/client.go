// Package api is the single configured HTTP client for the HorusLM backend.
// Every request carries the current session's bearer token and every failure
// is normalized into the closed taxonomy in error.go before a caller sees it.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"resty.dev/v3"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request goes out unauthenticated, so clearing
// the source's token deterministically stops attribution to an old session.
type TokenSource interface {
	Token() string
}

type Client struct {
	httpClient *resty.Client
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	client.AddRequestMiddleware(func(c *resty.Client, req *resty.Request) error {
		if tokens != nil {
			if token := tokens.Token(); token != "" {
				req.SetHeader("Authorization", "Bearer "+token)
			}
		}
		return nil
	})

	return &Client{httpClient: client}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// errorBody matches the backend's error payload. Some endpoints use "error",
// others "message"; whichever is present is passed through verbatim.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func classify(res *resty.Response, err error) error {
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	if !res.IsError() {
		return nil
	}

	var body errorBody
	_ = json.Unmarshal(res.Bytes(), &body)
	message := body.Error
	if message == "" {
		message = body.Message
	}

	kind := KindValidation
	switch res.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusNotFound:
		kind = KindNotFound
	}
	return &Error{Kind: kind, StatusCode: res.StatusCode(), Message: message}
}

func (client *Client) execute(ctx context.Context, method, path string, body, out any) error {
	req := client.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	res, err := req.Execute(method, path)
	if classified := classify(res, err); classified != nil {
		return classified
	}
	return nil
}

func (client *Client) Get(ctx context.Context, path string, out any) error {
	return client.execute(ctx, http.MethodGet, path, nil, out)
}

func (client *Client) Post(ctx context.Context, path string, body, out any) error {
	return client.execute(ctx, http.MethodPost, path, body, out)
}

func (client *Client) Put(ctx context.Context, path string, body, out any) error {
	return client.execute(ctx, http.MethodPut, path, body, out)
}

func (client *Client) Delete(ctx context.Context, path string, out any) error {
	return client.execute(ctx, http.MethodDelete, path, nil, out)
}

// Upload posts r as a multipart file field.
func (client *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	req := client.httpClient.R().
		SetContext(ctx).
		SetFileReader(field, filename, r)
	if out != nil {
		req.SetResult(out)
	}

	res, err := req.Post(path)
	if classified := classify(res, err); classified != nil {
		return classified
	}
	return nil
}
