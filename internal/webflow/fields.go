package webflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/foliosync/internal/config"
	"github.com/randalmurphal/foliosync/internal/project"
)

// ProjectTypeOptionID is the fixed option id written to the discriminator
// field on every create and update under the slug schema. It marks items as
// automation-owned, distinguishing them from manually authored ones.
const ProjectTypeOptionID = "65f0a3d82c1b4e97d40a6c11"

// discriminatorKey is the discriminator field's remote key (slug schema only).
const discriminatorKey = "project-type-3"

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindTags
	kindTime
)

// fieldSpec binds one synchronized record field to its remote key.
type fieldSpec struct {
	key  string
	kind fieldKind
	get  func(project.Record) any
}

// FieldMap is the bijection between local record fields and remote field
// keys for one schema variant. The same map produces both the comparison
// shape and the write payloads, so what was compared is what gets written.
type FieldMap struct {
	variant config.SchemaVariant
	specs   []fieldSpec
}

// NewFieldMap builds the field map for a schema variant.
func NewFieldMap(variant config.SchemaVariant) FieldMap {
	str := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	strp := func(p *string) any {
		if p == nil {
			return nil
		}
		return *p
	}

	var specs []fieldSpec
	switch variant {
	case config.SchemaSnake:
		specs = []fieldSpec{
			{"name", kindString, func(r project.Record) any { return str(r.Name) }},
			{"slug", kindString, func(r project.Record) any { return str(r.Slug) }},
			{"summary", kindString, func(r project.Record) any { return str(r.Summary) }},
			{"repo_url", kindString, func(r project.Record) any { return str(r.RepoURL) }},
			{"live_url", kindString, func(r project.Record) any { return str(r.LiveURL) }},
			{"tags", kindTags, func(r project.Record) any { return tagsList(r.Tags) }},
			{"github_stars", kindInt, func(r project.Record) any { return r.GitHubStars }},
			{"forks", kindInt, func(r project.Record) any { return r.Forks }},
			{"primary_language", kindString, func(r project.Record) any { return strp(r.PrimaryLanguage) }},
			{"last_commit_at", kindTime, func(r project.Record) any { return strp(r.LastCommitAt) }},
		}
	default: // config.SchemaSlug
		specs = []fieldSpec{
			{"name", kindString, func(r project.Record) any { return str(r.Name) }},
			{"slug", kindString, func(r project.Record) any { return str(r.Slug) }},
			{"project-description", kindString, func(r project.Record) any { return str(r.Summary) }},
			{"repo-url", kindString, func(r project.Record) any { return str(r.RepoURL) }},
			{"live-url", kindString, func(r project.Record) any { return str(r.LiveURL) }},
			{"tags", kindTags, func(r project.Record) any { return tagsJoined(r.Tags) }},
			{"github-stars", kindInt, func(r project.Record) any { return r.GitHubStars }},
			{"forks", kindInt, func(r project.Record) any { return r.Forks }},
			{"primary-language", kindString, func(r project.Record) any { return strp(r.PrimaryLanguage) }},
			{"last-commit-at", kindTime, func(r project.Record) any { return strp(r.LastCommitAt) }},
		}
	}
	return FieldMap{variant: variant, specs: specs}
}

// Payload produces the field data written on create and update. Under the
// slug schema the discriminator is set unconditionally, regardless of the
// record's content.
func (m FieldMap) Payload(r project.Record) map[string]any {
	fd := make(map[string]any, len(m.specs)+1)
	for _, spec := range m.specs {
		fd[spec.key] = spec.get(r)
	}
	if m.variant != config.SchemaSnake {
		fd[discriminatorKey] = ProjectTypeOptionID
	}
	return fd
}

// Normalize translates field data (remote or a local payload) into the
// canonical comparable shape: every synchronized key mapped to a string,
// with absent values coerced to "". Wrong-typed values normalize to a
// sentinel no well-formed payload produces, so they never compare equal and
// force an overwriting update.
func (m FieldMap) Normalize(fieldData map[string]any) map[string]string {
	out := make(map[string]string, len(m.specs)+1)
	for _, spec := range m.specs {
		out[spec.key] = normalizeValue(spec.kind, fieldData[spec.key])
	}
	if m.variant != config.SchemaSnake {
		out[discriminatorKey] = normalizeValue(kindString, fieldData[discriminatorKey])
	}
	return out
}

func normalizeValue(kind fieldKind, v any) string {
	if v == nil {
		return ""
	}

	switch kind {
	case kindString:
		if s, ok := v.(string); ok {
			return s
		}
	case kindInt:
		switch n := v.(type) {
		case int:
			return strconv.Itoa(n)
		case int64:
			return strconv.FormatInt(n, 10)
		case float64:
			return strconv.FormatInt(int64(n), 10)
		}
	case kindTags:
		switch tags := v.(type) {
		case string:
			return canonicalTags(strings.Split(tags, ","))
		case []string:
			return canonicalTags(tags)
		case []any:
			parts := make([]string, 0, len(tags))
			for _, t := range tags {
				s, ok := t.(string)
				if !ok {
					return wrongType(v)
				}
				parts = append(parts, s)
			}
			return canonicalTags(parts)
		}
	case kindTime:
		if s, ok := v.(string); ok {
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts.UTC().Format(time.RFC3339)
			}
			return s
		}
	}
	return wrongType(v)
}

// wrongType marks a malformed remote value. The NUL prefix keeps it from
// colliding with any legitimately normalized string.
func wrongType(v any) string {
	return fmt.Sprintf("\x00wrong-type:%T", v)
}

// canonicalTags joins tags into the canonical comparison form, preserving
// order. "a,b" and "a, b" and ["a","b"] all normalize identically.
func canonicalTags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

// tagsJoined is the written representation under the slug schema.
func tagsJoined(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	return canonicalTags(tags)
}

// tagsList is the written representation under the snake schema.
func tagsList(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	return tags
}
