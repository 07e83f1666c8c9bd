package http

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joshdurbin/hashlink/internal/service/mocks"
)

type recordedRequest struct {
	route  string
	method string
	status int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (o *recordingObserver) ObserveRequest(route, method string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, recordedRequest{route: route, method: method, status: status})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("propagated", func(t *testing.T) {
		upstream := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, upstream)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, upstream, w.Header().Get(RequestIDHeader))
		assert.Equal(t, upstream, seen)
	})

	replaced := []struct {
		name string
		id   string
	}{
		{"not a uuid", "upstream-id"},
		{"oversized", strings.Repeat("a", 4096)},
		{"urn form", "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"unhyphenated", "6ba7b8109dad11d180b400c04fd430c8"},
		{"trailing garbage", "6ba7b810-9dad-11d1-80b4-00c04fd430c8 x"},
	}
	for _, tt := range replaced {
		t.Run("replaced "+tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.id)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			id := w.Header().Get(RequestIDHeader)
			assert.NotEqual(t, tt.id, id)
			assert.Len(t, id, 36)
			_, err := uuid.Parse(id)
			assert.NoError(t, err)
			assert.Equal(t, id, seen)
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	h := NewLoggingMiddleware(logger, true).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid domain format"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader(`{"url_to_shorten":"localhost"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.FilterMessage("request body").Len())
	assert.Equal(t, `{"url_to_shorten":"localhost"}`, logs.FilterMessage("request body").All()[0].ContextMap()["body"])

	access := logs.FilterMessage("http request").All()
	require.Len(t, access, 1)
	fields := access[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/shorten", fields["path"])
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])

	assert.Equal(t, 1, logs.FilterMessage("error response body").Len())
}

func TestLoggingMiddleware_NotVerbose(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	h := NewLoggingMiddleware(zap.New(core), false).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader("{}")))

	assert.Equal(t, 1, logs.FilterMessage("http request").Len())
	assert.Equal(t, 0, logs.FilterMessage("request body").Len())
	assert.Equal(t, 0, logs.FilterMessage("error response body").Len())
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	h := Recovery(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic serving request").Len())
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	svc := &mocks.Shortener{}
	svc.On("Resolve", mock.Anything, "100680ad").Return("https://example.com", nil)
	obs := &recordingObserver{}

	server := NewServer(svc, ServerConfig{Port: "0", BaseURL: "http://localhost:3000"}, nil, obs, nil)
	routes := server.Routes()

	routes.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/100680ad", nil))
	routes.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Len(t, obs.requests, 2)
	assert.Equal(t, recordedRequest{route: "GET /{code}", method: "GET", status: http.StatusPermanentRedirect}, obs.requests[0])
	assert.Equal(t, recordedRequest{route: "GET /ping", method: "GET", status: http.StatusOK}, obs.requests[1])
}

func TestServer_ServeAndShutdown(t *testing.T) {
	svc := &mocks.Shortener{}
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	server := NewServer(svc, ServerConfig{
		Port:         "0",
		BaseURL:      "http://localhost:3000",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}, zap.NewNop(), nil, metricsHandler)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- server.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-done)
	assert.Equal(t, "0", server.Port())
}
