// Package syncer reconciles the local project listing against the remote CMS
// collection and drives the resulting writes.
package syncer

import (
	"fmt"

	"github.com/randalmurphal/foliosync/internal/project"
	"github.com/randalmurphal/foliosync/internal/webflow"
)

// Update pairs a local record with the remote item it overwrites.
type Update struct {
	ItemID string
	Record project.Record
}

// Plan is the classification of every local record: each appears in exactly
// one bucket, in source-file order. Remote items with no local counterpart
// are deliberately absent; nothing is ever deleted or archived.
type Plan struct {
	Creates []project.Record
	Updates []Update
	Noops   []string // slugs already converged
}

// IsEmpty reports whether the plan requires no writes.
func (p Plan) IsEmpty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0
}

// Reconcile classifies local records against remote items by slug. It is a
// pure function of its inputs: no network, no clock, no ordering dependence
// on the remote listing.
//
// A record with no remote counterpart is a create. A record whose remote
// counterpart differs in any synchronized field is an update carrying the
// full desired field data, not a diff. A record already converged is a no-op.
func Reconcile(records []project.Record, items []webflow.Item, fields webflow.FieldMap) (Plan, error) {
	bySlug := make(map[string]webflow.Item, len(items))
	for _, item := range items {
		slug := item.SlugValue()
		if slug == "" {
			continue
		}
		if prev, ok := bySlug[slug]; ok {
			return Plan{}, fmt.Errorf("remote collection has duplicate slug %q (items %s and %s); the join key must be unique",
				slug, prev.ID, item.ID)
		}
		bySlug[slug] = item
	}

	var plan Plan
	for _, rec := range records {
		item, ok := bySlug[rec.Slug]
		if !ok {
			plan.Creates = append(plan.Creates, rec)
			continue
		}

		if fieldsEqual(fields, rec, item) {
			plan.Noops = append(plan.Noops, rec.Slug)
			continue
		}
		plan.Updates = append(plan.Updates, Update{ItemID: item.ID, Record: rec})
	}
	return plan, nil
}

// fieldsEqual compares the normalized local payload against the normalized
// remote field data over the synchronized keys.
func fieldsEqual(fields webflow.FieldMap, rec project.Record, item webflow.Item) bool {
	local := fields.Normalize(fields.Payload(rec))
	remote := fields.Normalize(item.FieldData)
	for key, want := range local {
		if remote[key] != want {
			return false
		}
	}
	return true
}
