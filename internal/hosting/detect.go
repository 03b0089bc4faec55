package hosting

import (
	"net/url"
	"strings"
)

// Ref is a parsed repository reference from a record's repoUrl.
type Ref struct {
	Host  Host
	Owner string
	Repo  string
}

// ParseRepoRef parses a repository web URL into a host/owner/repo reference.
// Returns false for anything that is not a recognizable repository URL on a
// supported host; the caller treats that record as not enrichable.
func ParseRepoRef(rawURL string) (Ref, bool) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return Ref{}, false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Ref{}, false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return Ref{}, false
	}

	host := Host(strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."))
	switch host {
	case HostGitHub, HostGitLab:
	default:
		return Ref{}, false
	}

	path := strings.Trim(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, false
	}

	if host == HostGitLab {
		// GitLab owners can be "group/subgroup"; the repo is the last segment.
		return Ref{
			Host:  host,
			Owner: strings.Join(parts[:len(parts)-1], "/"),
			Repo:  parts[len(parts)-1],
		}, true
	}

	// GitHub URLs are owner/repo; ignore any deeper segments (tree/blob/...).
	return Ref{Host: host, Owner: parts[0], Repo: parts[1]}, true
}
