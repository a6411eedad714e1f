// Package github lists a user's public repositories from the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/observability"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// RepoLimit is the number of repositories returned per profile.
const RepoLimit = 5

// Repo is the subset of GitHub's repository payload shown on a profile.
type Repo struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	ForksCount      int       `json:"forks_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Config holds the client's endpoint and credentials.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client calls the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

// NewClient returns a client for cfg. An empty BaseURL means api.github.com.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.github.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{baseURL: base, token: cfg.Token, timeout: timeout}
}

func notFound() *models.AppError {
	return models.NewNotFoundError("No GitHub profile found")
}

// ListRepos returns the user's most recent repositories. A missing user maps
// to NotFound; every other failure, including ctx ending first, maps to
// UpstreamUnavailable.
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repo, error) {
	if !usernamePattern.MatchString(username) {
		return nil, notFound()
	}

	ctx, span := observability.StartClientSpan(ctx, "github.ListRepos",
		attribute.String("github.username", username))
	repos, err := c.listRepos(ctx, username)
	observability.EndSpan(span, err)
	return repos, err
}

type response struct {
	status int
	body   []byte
	err    error
}

func (c *Client) listRepos(ctx context.Context, username string) ([]Repo, error) {
	if err := ctx.Err(); err != nil {
		observability.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, models.NewUpstreamError("GitHub is unavailable", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=created:asc",
		c.baseURL, url.PathEscape(username), RepoLimit)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}

	agent := fiber.Get(endpoint).
		Set(fiber.HeaderUserAgent, "devconnect").
		Set(fiber.HeaderAccept, "application/vnd.github+json").
		Timeout(timeout)
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		agent.Set(k, v)
	}

	// The agent has no context support; stop waiting when ctx ends and let
	// the request finish against its own timeout.
	done := make(chan response, 1)
	go func() {
		status, body, errs := agent.Bytes()
		var err error
		if len(errs) > 0 {
			err = errs[0]
		}
		done <- response{status: status, body: body, err: err}
	}()

	var res response
	select {
	case <-ctx.Done():
		observability.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, models.NewUpstreamError("GitHub is unavailable", ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		observability.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, models.NewUpstreamError("GitHub is unavailable", res.err)
	}

	switch {
	case res.status == fiber.StatusNotFound:
		observability.UpstreamRequests.WithLabelValues("not_found").Inc()
		return nil, notFound()
	case res.status != fiber.StatusOK:
		observability.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, models.NewUpstreamError("GitHub is unavailable",
			fmt.Errorf("unexpected status %d", res.status))
	}

	var repos []Repo
	if err := json.Unmarshal(res.body, &repos); err != nil {
		observability.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, models.NewUpstreamError("GitHub is unavailable", err)
	}
	if len(repos) > RepoLimit {
		repos = repos[:RepoLimit]
	}

	observability.UpstreamRequests.WithLabelValues("ok").Inc()
	return repos, nil
}
