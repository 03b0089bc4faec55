package syncer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/foliosync/internal/config"
	"github.com/randalmurphal/foliosync/internal/enrich"
	"github.com/randalmurphal/foliosync/internal/errors"
	"github.com/randalmurphal/foliosync/internal/hosting"
	"github.com/randalmurphal/foliosync/internal/project"
	"github.com/randalmurphal/foliosync/internal/webflow"
)

type fakeClient struct {
	items []webflow.Item

	listErr    error
	createErr  error
	updateErr  error
	publishErr error

	created   [][]map[string]any
	updated   [][]webflow.ItemUpdate
	published [][]string
}

func (f *fakeClient) ListItems(ctx context.Context) ([]webflow.Item, error) {
	return f.items, f.listErr
}

func (f *fakeClient) CreateItems(ctx context.Context, payloads []map[string]any) ([]string, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, payloads)
	ids := make([]string, len(payloads))
	for i := range payloads {
		ids[i] = fmt.Sprintf("new-%d", i)
	}
	return ids, nil
}

func (f *fakeClient) UpdateItems(ctx context.Context, updates []webflow.ItemUpdate) ([]string, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = append(f.updated, updates)
	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	return ids, nil
}

func (f *fakeClient) PublishItems(ctx context.Context, ids []string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	if len(ids) > 0 {
		f.published = append(f.published, ids)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSyncer(client *fakeClient, enricher *enrich.Enricher) *Syncer {
	return New(client, enricher, slugFields(), "col1", testLogger())
}

func TestRunCreatesUpdatesAndPublishesInOrder(t *testing.T) {
	fields := slugFields()
	staleB := project.Record{Slug: "gh-b", Name: "B", GitHubStars: 1}
	client := &fakeClient{items: []webflow.Item{remoteItem("it-b", fields, staleB)}}

	records := []project.Record{
		{Slug: "gh-a", Name: "A"},
		{Slug: "gh-b", Name: "B", GitHubStars: 3},
	}

	s := newTestSyncer(client, nil)
	result, err := s.Run(context.Background(), records, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Noops)
	assert.Equal(t, 2, result.Published)

	require.Len(t, client.created, 1)
	assert.Equal(t, "gh-a", client.created[0][0]["slug"])
	require.Len(t, client.updated, 1)
	assert.Equal(t, "it-b", client.updated[0][0].ID)

	// One publish call, created ids ahead of updated ids.
	require.Len(t, client.published, 1)
	assert.Equal(t, []string{"new-0", "it-b"}, client.published[0])
}

func TestRunConvergedStateMakesNoWrites(t *testing.T) {
	fields := slugFields()
	rec := project.Record{Slug: "gh-a", Name: "A", GitHubStars: 5}
	client := &fakeClient{items: []webflow.Item{remoteItem("it-a", fields, rec)}}

	s := newTestSyncer(client, nil)
	result, err := s.Run(context.Background(), []project.Record{rec}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Noops)
	assert.Zero(t, result.Published)
	assert.Empty(t, client.created)
	assert.Empty(t, client.updated)
	assert.Empty(t, client.published)
}

func TestRunDryRunMakesNoWrites(t *testing.T) {
	client := &fakeClient{}
	records := []project.Record{{Slug: "gh-a", Name: "A"}}

	s := newTestSyncer(client, nil)
	result, err := s.Run(context.Background(), records, Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, client.created, "dry run must not create")
	assert.Empty(t, client.published, "dry run must not publish")
}

func TestRunListFailureAbortsBeforeAnyWrite(t *testing.T) {
	client := &fakeClient{listErr: fmt.Errorf("status 401")}

	s := newTestSyncer(client, nil)
	_, err := s.Run(context.Background(), []project.Record{{Slug: "gh-a"}}, Options{})
	require.Error(t, err)

	se := errors.AsSyncError(err)
	require.NotNil(t, se)
	assert.Equal(t, errors.CodeRemoteReadFailed, se.Code)
	assert.Empty(t, client.created)
	assert.Empty(t, client.published)
}

func TestRunCreateFailureAbortsWithoutPublish(t *testing.T) {
	client := &fakeClient{createErr: fmt.Errorf("status 500")}

	s := newTestSyncer(client, nil)
	_, err := s.Run(context.Background(), []project.Record{{Slug: "gh-a"}}, Options{})
	require.Error(t, err)

	se := errors.AsSyncError(err)
	require.NotNil(t, se)
	assert.Equal(t, errors.CodeRemoteWriteFailed, se.Code)
	assert.Empty(t, client.published, "nothing may be published after a failed write")
}

func TestRunUpdateFailureAbortsWithoutPublishingCreates(t *testing.T) {
	fields := slugFields()
	staleB := project.Record{Slug: "gh-b", GitHubStars: 1}
	client := &fakeClient{
		items:     []webflow.Item{remoteItem("it-b", fields, staleB)},
		updateErr: fmt.Errorf("status 500"),
	}

	records := []project.Record{
		{Slug: "gh-a"},
		{Slug: "gh-b", GitHubStars: 3},
	}

	s := newTestSyncer(client, nil)
	_, err := s.Run(context.Background(), records, Options{})
	require.Error(t, err)

	// The create succeeded before the update failed, but its id must not be
	// published by this run.
	require.Len(t, client.created, 1)
	assert.Empty(t, client.published)
}

func TestRunEnrichesBeforeReconciling(t *testing.T) {
	fields := slugFields()

	// Remote already holds the fresh star count; only enriched records
	// reconcile to a no-op.
	fresh := project.Record{Slug: "gh-a", Name: "A", RepoURL: "https://github.com/u/a", GitHubStars: 9}
	client := &fakeClient{items: []webflow.Item{remoteItem("it-a", fields, fresh)}}

	fetch := func(ctx context.Context, ref hosting.Ref) (*hosting.RepoStats, error) {
		return &hosting.RepoStats{Stars: 9}, nil
	}
	enricher := enrich.NewWithFetch(fetch, 1, testLogger())

	records := []project.Record{{Slug: "gh-a", Name: "A", RepoURL: "https://github.com/u/a"}}

	s := newTestSyncer(client, enricher)
	result, err := s.Run(context.Background(), records, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Noops)
	assert.Equal(t, enrich.Stats{Enriched: 1}, result.Enrich)
	assert.Empty(t, client.updated)
}

func TestRunSkipEnrich(t *testing.T) {
	client := &fakeClient{}
	fetch := func(ctx context.Context, ref hosting.Ref) (*hosting.RepoStats, error) {
		t.Error("fetch must not be called with SkipEnrich")
		return nil, nil
	}
	enricher := enrich.NewWithFetch(fetch, 1, testLogger())

	records := []project.Record{{Slug: "gh-a", RepoURL: "https://github.com/u/a"}}

	s := newTestSyncer(client, enricher)
	result, err := s.Run(context.Background(), records, Options{SkipEnrich: true})
	require.NoError(t, err)
	assert.Equal(t, enrich.Stats{}, result.Enrich)
	assert.Equal(t, 1, result.Created)
}

func TestRunSnakeSchemaPayloads(t *testing.T) {
	client := &fakeClient{}
	s := New(client, nil, webflow.NewFieldMap(config.SchemaSnake), "col1", testLogger())

	records := []project.Record{{Slug: "gh-a", Summary: "x"}}
	_, err := s.Run(context.Background(), records, Options{})
	require.NoError(t, err)

	require.Len(t, client.created, 1)
	fd := client.created[0][0]
	assert.Equal(t, "x", fd["summary"])
	_, hasDiscriminator := fd["project-type-3"]
	assert.False(t, hasDiscriminator)
}
