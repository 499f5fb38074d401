// Package testutil provides testing utilities for the tabquery client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// RowCountHeader mirrors the header the service uses to report row counts.
const RowCountHeader = "row-count"

// MockResponse defines the behavior for one mocked response.
type MockResponse struct {
	StatusCode int
	Body       string
	RowCount   int
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is a request seen by the mock.
type RecordedRequest struct {
	Path   string
	Query  string
	Header http.Header
}

// MockService is a configurable mock of the tabular data service.
// Responses are registered per URL path; a path with a queue of responses
// serves them in order and repeats the last one.
type MockService struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewMockService creates and starts a new mock service.
func NewMockService() *MockService {
	mock := &MockService{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		// Unknown paths behave like an empty result
		writeResponse(w, NewNoDataResponse())
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockService) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockService) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockService) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockService) SetResponse(path string, resp MockResponse) {
	m.SetResponses(path, resp)
}

// SetResponses configures a sequence of responses for a path.
func (m *MockService) SetResponses(path string, resps ...MockResponse) {
	var mu sync.Mutex
	next := 0
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := resps[next]
		if next < len(resps)-1 {
			next++
		}
		mu.Unlock()

		writeResponse(w, resp)
	})
}

// Requests returns a copy of every recorded request.
func (m *MockService) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockService) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set(RowCountHeader, strconv.Itoa(resp.RowCount))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewCSVResponse creates a 200 OK response carrying csv with rows data rows.
func NewCSVResponse(csv string, rows int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       csv,
		RowCount:   rows,
	}
}

// NewNoDataResponse creates the service's empty-result response.
func NewNoDataResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       "-1:No Data Returned",
	}
}

// NewSentinelResponse creates a 200 OK response with an error sentinel body.
func NewSentinelResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
	}
}

// NewBadRequestResponse creates a 400 Bad Request response.
func NewBadRequestResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadRequest,
		Body:       "Bad Request",
	}
}

// NewDroppingHandler creates a handler that closes the connection without a response.
func NewDroppingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		conn.Close()
	}
}
