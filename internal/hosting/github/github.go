package github

import (
	"context"
	"fmt"
	"net/http"

	gogithub "github.com/google/go-github/v82/github"

	"github.com/randalmurphal/foliosync/internal/hosting"
)

// Compile-time interface check.
var _ hosting.StatsProvider = (*Provider)(nil)

func init() {
	hosting.RegisterProvider(hosting.HostGitHub, newProvider)
}

// Provider implements hosting.StatsProvider using the go-github library.
type Provider struct {
	client *gogithub.Client
}

func newProvider(cfg hosting.Config) (hosting.StatsProvider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Token != "" {
		httpClient.Transport = &authTransport{token: cfg.Token}
	}
	return &Provider{client: gogithub.NewClient(httpClient)}, nil
}

// authTransport adds an Authorization header to every request.
type authTransport struct {
	token string
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.Header.Set("Authorization", "Bearer "+t.token)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req2)
}

// Host returns the host this provider serves.
func (p *Provider) Host() hosting.Host {
	return hosting.HostGitHub
}

// FetchRepoStats fetches star/fork counts, primary language, and the last
// push timestamp for a repository.
func (p *Provider) FetchRepoStats(ctx context.Context, owner, repo string) (*hosting.RepoStats, error) {
	r, resp, err := p.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("get %s/%s (status %d): %w", owner, repo, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("get %s/%s: %w", owner, repo, err)
	}

	stats := &hosting.RepoStats{
		Stars:    r.GetStargazersCount(),
		Forks:    r.GetForksCount(),
		Language: r.GetLanguage(),
	}
	if t := r.GetPushedAt(); !t.IsZero() {
		pushed := t.Time
		stats.LastPushedAt = &pushed
	}
	return stats, nil
}
