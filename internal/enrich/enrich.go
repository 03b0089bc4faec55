// Package enrich augments project records with live repository statistics.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/foliosync/internal/hosting"
	"github.com/randalmurphal/foliosync/internal/project"
)

// FetchFunc is the function signature for fetching repository stats.
// Allows injection of test fakes.
type FetchFunc func(ctx context.Context, ref hosting.Ref) (*hosting.RepoStats, error)

// Stats summarizes an enrichment pass.
type Stats struct {
	// Enriched counts records whose stats were refreshed.
	Enriched int
	// Skipped counts records with no parseable repository URL.
	Skipped int
	// Failed counts records whose fetch failed; they keep their prior values.
	Failed int
}

// Enricher refreshes the derived stats fields of project records.
type Enricher struct {
	fetch       FetchFunc
	concurrency int
	logger      *slog.Logger
}

// New creates an Enricher that routes fetches to the per-host providers.
func New(providers map[hosting.Host]hosting.StatsProvider, concurrency int, logger *slog.Logger) *Enricher {
	fetch := func(ctx context.Context, ref hosting.Ref) (*hosting.RepoStats, error) {
		p, ok := providers[ref.Host]
		if !ok {
			return nil, &noProviderError{host: ref.Host}
		}
		return p.FetchRepoStats(ctx, ref.Owner, ref.Repo)
	}
	return NewWithFetch(fetch, concurrency, logger)
}

// NewWithFetch creates an Enricher with a custom fetch function.
func NewWithFetch(fetch FetchFunc, concurrency int, logger *slog.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{fetch: fetch, concurrency: concurrency, logger: logger}
}

// Enrich returns a new record list with refreshed stats. Output order always
// matches input order regardless of fetch completion order.
//
// Per-record contract: an unparseable or missing repoUrl leaves the record
// untouched with no fetch; a failed fetch is logged against the record's
// name-or-slug and leaves the record untouched; a successful fetch
// overwrites every stats field with the fetched value or its default. One
// record's failure never aborts the others.
func (e *Enricher) Enrich(ctx context.Context, records []project.Record) ([]project.Record, Stats) {
	out := make([]project.Record, len(records))
	copy(out, records)

	var stats Stats
	results := make([]int, len(records)) // 0 skipped, 1 enriched, 2 failed

	g := &errgroup.Group{}
	g.SetLimit(e.concurrency)

	for i := range out {
		rec := out[i]
		ref, ok := hosting.ParseRepoRef(rec.RepoURL)
		if !ok {
			continue
		}

		g.Go(func() error {
			fetched, err := e.fetch(ctx, ref)
			if err != nil {
				e.logger.Warn("enrichment fetch failed",
					"project", rec.DisplayName(),
					"repo", ref.Owner+"/"+ref.Repo,
					"error", err)
				results[i] = 2
				return nil
			}
			out[i] = apply(rec, fetched)
			results[i] = 1
			return nil
		})
	}

	// Workers only ever return nil; Wait is just the barrier.
	_ = g.Wait()

	for _, r := range results {
		switch r {
		case 0:
			stats.Skipped++
		case 1:
			stats.Enriched++
		case 2:
			stats.Failed++
		}
	}
	return out, stats
}

// apply overwrites the derived fields with fetched values. Missing upstream
// fields fall back to their defaults, not to the record's previous value.
func apply(r project.Record, fetched *hosting.RepoStats) project.Record {
	r.GitHubStars = fetched.Stars
	r.Forks = fetched.Forks

	if fetched.Language != "" {
		lang := fetched.Language
		r.PrimaryLanguage = &lang
	} else {
		r.PrimaryLanguage = nil
	}

	if fetched.LastPushedAt != nil {
		ts := fetched.LastPushedAt.UTC().Format(time.RFC3339)
		r.LastCommitAt = &ts
	} else {
		r.LastCommitAt = nil
	}
	return r
}

type noProviderError struct {
	host hosting.Host
}

func (e *noProviderError) Error() string {
	return "no stats provider for host " + string(e.host)
}
