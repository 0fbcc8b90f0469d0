// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package transport performs portal API calls over HTTP and keeps the
// session cookies across process restarts.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	xglog "github.com/ManuGH/cloudportal/internal/log"
)

const maxBodyBytes = 8 << 20

// Request is one API call.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Response is a successful API response.
type Response struct {
	Status int
	Body   []byte
}

// Client issues portal API calls relative to a base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for the portal rooted at baseURL. The HTTP client
// should come from httpx.NewClient.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		return nil, fmt.Errorf("http client is required")
	}
	return &Client{base: u, http: hc}, nil
}

func (c *Client) resolve(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	return u.String()
}

// Do performs req. Non-2xx responses and transport failures are returned as
// *StatusError; the response body is kept so callers can decode the error
// message.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	fail := func(status int, body []byte, err error) (Response, error) {
		return Response{}, &StatusError{Method: req.Method, Path: req.Path, Status: status, Body: body, Err: err}
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return fail(0, nil, fmt.Errorf("encode request body: %w", err))
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return fail(0, nil, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	// Django-style CSRF checks require a same-origin referer over HTTPS.
	if c.base.Scheme == "https" {
		httpReq.Header.Set("Referer", c.base.String()+"/")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fail(0, nil, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(resp.StatusCode, nil, fmt.Errorf("read response body: %w", err))
	}

	logger := xglog.WithComponentFromContext(ctx, "transport")
	logger.Debug().
		Str(xglog.FieldEvent, "transport.response").
		Str(xglog.FieldMethod, req.Method).
		Str(xglog.FieldPath, req.Path).
		Int(xglog.FieldStatus, resp.StatusCode).
		Dur(xglog.FieldDuration, time.Since(start)).
		Msg("portal response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, raw, nil)
	}
	return Response{Status: resp.StatusCode, Body: raw}, nil
}
