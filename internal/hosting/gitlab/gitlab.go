package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gogitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/randalmurphal/foliosync/internal/hosting"
)

// Compile-time interface check.
var _ hosting.StatsProvider = (*Provider)(nil)

func init() {
	hosting.RegisterProvider(hosting.HostGitLab, newProvider)
}

// Provider implements hosting.StatsProvider using the GitLab client-go library.
type Provider struct {
	client *gogitlab.Client
}

func newProvider(cfg hosting.Config) (hosting.StatsProvider, error) {
	client, err := gogitlab.NewClient(cfg.Token,
		gogitlab.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}
	return &Provider{client: client}, nil
}

// Host returns the host this provider serves.
func (p *Provider) Host() hosting.Host {
	return hosting.HostGitLab
}

// FetchRepoStats fetches star/fork counts, the dominant language, and the
// last activity timestamp for a project. Owner may be "group/subgroup".
func (p *Provider) FetchRepoStats(ctx context.Context, owner, repo string) (*hosting.RepoStats, error) {
	pid := owner + "/" + repo

	proj, resp, err := p.client.Projects.GetProject(pid, nil, gogitlab.WithContext(ctx))
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("get project %s (status %d): %w", pid, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("get project %s: %w", pid, err)
	}

	stats := &hosting.RepoStats{
		Stars:        int(proj.StarCount),
		Forks:        int(proj.ForksCount),
		LastPushedAt: proj.LastActivityAt,
	}

	// GitLab has no single primary-language field; take the largest share
	// from the languages breakdown. Best-effort: stats are still useful
	// without it.
	langs, _, err := p.client.Projects.GetProjectLanguages(pid, gogitlab.WithContext(ctx))
	if err != nil {
		slog.Warn("failed to fetch project languages", "project", pid, "error", err)
		return stats, nil
	}
	var best float32
	for name, share := range *langs {
		if share > best {
			best = share
			stats.Language = name
		}
	}
	return stats, nil
}
