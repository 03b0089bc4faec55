// Package hosting provides a unified interface for fetching repository
// statistics from source-control hosts (GitHub, GitLab).
package hosting

import (
	"context"
	"fmt"
	"time"
)

// Host identifies which source-control host a repository lives on.
type Host string

const (
	HostGitHub Host = "github.com"
	HostGitLab Host = "gitlab.com"
)

// RepoStats is the repository metadata merged into a project record.
type RepoStats struct {
	Stars int
	Forks int
	// Language is the primary language, empty when the host reports none.
	Language string
	// LastPushedAt is the last push/activity timestamp, nil when unknown.
	LastPushedAt *time.Time
}

// StatsProvider fetches repository statistics from one host.
// Implementations exist for GitHub (go-github) and GitLab (client-go).
type StatsProvider interface {
	// FetchRepoStats fetches statistics for owner/repo. One attempt per
	// call; the caller decides what a failure means.
	FetchRepoStats(ctx context.Context, owner, repo string) (*RepoStats, error)

	Host() Host
}

// Config holds the settings a provider needs.
type Config struct {
	// Token authenticates API calls. Optional: public repositories resolve
	// without one, subject to the host's anonymous rate limits.
	Token string
	// Timeout applies to the provider's HTTP client.
	Timeout time.Duration
}

// factoryFunc creates a provider from config.
type factoryFunc func(cfg Config) (StatsProvider, error)

var providerFactories = make(map[Host]factoryFunc)

// RegisterProvider registers a provider factory for a host.
// Called from provider package init functions.
func RegisterProvider(host Host, factory factoryFunc) {
	providerFactories[host] = factory
}

// NewProvider creates a provider for the given host.
func NewProvider(host Host, cfg Config) (StatsProvider, error) {
	factory, ok := providerFactories[host]
	if !ok {
		return nil, fmt.Errorf("no stats provider registered for host %q", host)
	}
	return factory(cfg)
}
