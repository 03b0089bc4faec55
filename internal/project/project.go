// Package project defines the local project record and its JSON source file.
//
// The source file is the authoritative listing: an ordered JSON array of
// records, each joined to its remote CMS item by slug. Enrichment rewrites
// the stats fields in memory; nothing here mutates the file unless Save is
// called explicitly.
package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/randalmurphal/foliosync/internal/errors"
	"github.com/randalmurphal/foliosync/internal/util"
)

// Record is one project entry from the source file.
//
// The enrichment fields (GitHubStars, Forks, PrimaryLanguage, LastCommitAt)
// are derived: overwritten on every successful stats fetch, left at their
// last known value otherwise. Pointer fields distinguish "absent" from zero.
type Record struct {
	// Slug is the unique, immutable join key to the remote item.
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Summary string `json:"summary"`

	RepoURL string `json:"repoUrl,omitempty"`
	LiveURL string `json:"liveUrl,omitempty"`

	// Tags are ordered for display; order does not affect identity.
	Tags []string `json:"tags,omitempty"`

	GitHubStars     int     `json:"github_stars"`
	Forks           int     `json:"forks"`
	PrimaryLanguage *string `json:"primary_language"`
	LastCommitAt    *string `json:"last_commit_at"`
}

// DisplayName returns the record's name, falling back to the slug.
// Used for log and error context.
func (r Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Slug
}

// Load reads the ordered record list from a JSON source file.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrSourceInvalid(path, "cannot read the file").WithCause(err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.ErrSourceInvalid(path, "not a valid JSON array of project records").WithCause(err)
	}

	if err := Validate(path, records); err != nil {
		return nil, err
	}

	return records, nil
}

// Validate checks structural invariants of the record list. Duplicate slugs
// fail fast here rather than producing undefined reconciliation behavior.
func Validate(path string, records []Record) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if r.Slug == "" {
			return errors.ErrSourceInvalid(path,
				fmt.Sprintf("record %d (%q) has no slug", i, r.Name))
		}
		if prev, ok := seen[r.Slug]; ok {
			return errors.ErrSourceInvalid(path,
				fmt.Sprintf("slug %q appears at records %d and %d; slugs must be unique", r.Slug, prev, i))
		}
		seen[r.Slug] = i
	}
	return nil
}

// Save writes the record list back to the source file atomically, preserving
// order. Used by the enrich command to persist refreshed stats.
func Save(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project records: %w", err)
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project source: %w", err)
	}
	return nil
}
