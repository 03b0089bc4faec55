package syncer

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/foliosync/internal/enrich"
	"github.com/randalmurphal/foliosync/internal/errors"
	"github.com/randalmurphal/foliosync/internal/project"
	"github.com/randalmurphal/foliosync/internal/webflow"
)

// CollectionClient is the slice of the Webflow client the syncer needs.
type CollectionClient interface {
	ListItems(ctx context.Context) ([]webflow.Item, error)
	CreateItems(ctx context.Context, payloads []map[string]any) ([]string, error)
	UpdateItems(ctx context.Context, updates []webflow.ItemUpdate) ([]string, error)
	PublishItems(ctx context.Context, ids []string) error
}

// Options controls a single sync run.
type Options struct {
	// DryRun computes and reports the plan without any write or publish call.
	DryRun bool
	// SkipEnrich syncs the source records as-is, without stats fetches.
	SkipEnrich bool
}

// Result summarizes a completed (or planned) run.
type Result struct {
	Created   int
	Updated   int
	Noops     int
	Published int
	Enrich    enrich.Stats
	DryRun    bool
}

// Syncer runs the sync pipeline: enrich, list, reconcile, write, publish.
type Syncer struct {
	client       CollectionClient
	enricher     *enrich.Enricher
	fields       webflow.FieldMap
	collectionID string
	logger       *slog.Logger
}

// New creates a Syncer. The enricher may be nil when enrichment is disabled.
func New(client CollectionClient, enricher *enrich.Enricher, fields webflow.FieldMap, collectionID string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		client:       client,
		enricher:     enricher,
		fields:       fields,
		collectionID: collectionID,
		logger:       logger,
	}
}

// Run executes one sync pass over the given records.
//
// The remote listing must succeed in full before any classification; a
// partial listing would misclassify existing items as creates. Writes happen
// before any publish, and only ids acknowledged by successful writes are
// published, creations first. A failed write aborts the run with nothing
// published; reruns are safe because reconciliation is idempotent.
func (s *Syncer) Run(ctx context.Context, records []project.Record, opts Options) (*Result, error) {
	result := &Result{DryRun: opts.DryRun}

	if s.enricher != nil && !opts.SkipEnrich {
		records, result.Enrich = s.enricher.Enrich(ctx, records)
		s.logger.Info("enrichment complete",
			"enriched", result.Enrich.Enriched,
			"skipped", result.Enrich.Skipped,
			"failed", result.Enrich.Failed)
	}

	items, err := s.client.ListItems(ctx)
	if err != nil {
		return nil, errors.ErrRemoteReadFailed(s.collectionID).WithCause(err)
	}
	s.logger.Debug("listed remote items", "count", len(items))

	plan, err := Reconcile(records, items, s.fields)
	if err != nil {
		return nil, errors.ErrRemoteReadFailed(s.collectionID).WithCause(err)
	}

	result.Created = len(plan.Creates)
	result.Updated = len(plan.Updates)
	result.Noops = len(plan.Noops)
	s.logger.Info("reconciliation plan",
		"creates", result.Created,
		"updates", result.Updated,
		"noops", result.Noops)

	if opts.DryRun || plan.IsEmpty() {
		return result, nil
	}

	var publishIDs []string

	if len(plan.Creates) > 0 {
		payloads := make([]map[string]any, len(plan.Creates))
		for i, rec := range plan.Creates {
			payloads[i] = s.fields.Payload(rec)
		}
		ids, err := s.client.CreateItems(ctx, payloads)
		if err != nil {
			return nil, errors.ErrRemoteWriteFailed("create").WithCause(err)
		}
		publishIDs = append(publishIDs, ids...)
	}

	if len(plan.Updates) > 0 {
		updates := make([]webflow.ItemUpdate, len(plan.Updates))
		for i, u := range plan.Updates {
			updates[i] = webflow.ItemUpdate{ID: u.ItemID, FieldData: s.fields.Payload(u.Record)}
		}
		ids, err := s.client.UpdateItems(ctx, updates)
		if err != nil {
			return nil, errors.ErrRemoteWriteFailed("update").WithCause(err)
		}
		publishIDs = append(publishIDs, ids...)
	}

	if err := s.client.PublishItems(ctx, publishIDs); err != nil {
		return nil, errors.ErrRemoteWriteFailed("publish").WithCause(err)
	}
	result.Published = len(publishIDs)

	s.logger.Info("sync complete",
		"created", result.Created,
		"updated", result.Updated,
		"published", result.Published)
	return result, nil
}
