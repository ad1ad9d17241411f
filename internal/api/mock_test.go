package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a mock implementation of io.ReadCloser for testing
type MockResponseBody struct {
	data []byte
	pos  int
}

// NewMockResponseBody creates a new mock response body
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	return nil
}

// MockHttpClient is a mock HTTPDoer that returns a canned response
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	mu          sync.Mutex
	Requests    []*fhttp.Request
	LastPayload []byte
}

// Do implements HTTPDoer
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		m.LastPayload, _ = io.ReadAll(req.Body)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// LastRequest returns the most recent request, or nil
func (m *MockHttpClient) LastRequest() *fhttp.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

// jsonResponse builds a canned response with a JSON body
func jsonResponse(status int, body string) *fhttp.Response {
	header := make(fhttp.Header)
	header.Set("Content-Type", "application/json")
	return &fhttp.Response{
		StatusCode: status,
		Body:       NewMockResponseBody([]byte(body)),
		Header:     header,
	}
}

// handlerDoer serves fhttp requests from an in-process net/http handler
type handlerDoer struct {
	handler http.Handler
}

// Do implements HTTPDoer
func (d *handlerDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = req.Body
	}
	in := httptest.NewRequest(req.Method, req.URL.String(), body).WithContext(context.WithoutCancel(ctx))
	for k, vs := range req.Header {
		for _, v := range vs {
			in.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	d.handler.ServeHTTP(rec, in)
	res := rec.Result()

	return &fhttp.Response{
		StatusCode: res.StatusCode,
		Header:     fhttp.Header(res.Header),
		Body:       io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
	}, nil
}
