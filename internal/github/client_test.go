package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestClient_ListRepos(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")

		switch r.URL.Path {
		case "/users/octocat/repos":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id":1,"name":"hello","html_url":"https://github.com/octocat/hello","stargazers_count":3,"created_at":"2020-01-01T00:00:00Z"},
				{"id":2,"name":"world","html_url":"https://github.com/octocat/world","forks_count":1,"created_at":"2021-01-01T00:00:00Z"}
			]`))
		case "/users/broken/repos":
			_, _ = w.Write([]byte(`{not json`))
		case "/users/flaky/repos":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Token: "tok", Timeout: time.Second})
	ctx := context.Background()

	repos, err := client.ListRepos(ctx, "octocat")
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "hello", repos[0].Name)
	assert.Equal(t, 3, repos[0].StargazersCount)
	assert.Equal(t, "/users/octocat/repos", gotPath)
	assert.Equal(t, "per_page=5&sort=created:asc", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)

	tests := []struct {
		username string
		kind     models.ErrorKind
		status   int
	}{
		{"ghost", models.KindNotFound, http.StatusNotFound},
		{"broken", models.KindUpstream, http.StatusBadGateway},
		{"flaky", models.KindUpstream, http.StatusBadGateway},
		{"../etc", models.KindNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			_, err := client.ListRepos(ctx, tt.username)
			require.Error(t, err)
			assert.True(t, models.IsKind(err, tt.kind))
			assert.Equal(t, tt.status, models.StatusFor(err))
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(Config{BaseURL: base, Timeout: time.Second}).ListRepos(context.Background(), "octocat")
	assert.True(t, models.IsKind(err, models.KindUpstream))
}

func TestClient_StopsWhenContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}).ListRepos(ctx, "octocat")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindUpstream))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)

	_, err = NewClient(Config{BaseURL: srv.URL}).ListRepos(ctx, "octocat")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_PropagatesTrace(t *testing.T) {
	observability.SetPropagation()

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "inbound")
	defer span.End()

	_, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second}).ListRepos(ctx, "octocat")
	require.NoError(t, err)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}
