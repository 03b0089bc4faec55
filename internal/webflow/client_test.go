package webflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, pageSize int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		Token:        "tok",
		CollectionID: "col1",
		BaseURL:      srv.URL,
		PageSize:     pageSize,
	})
	require.NoError(t, err)
	return c
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{CollectionID: "col1"})
	assert.Error(t, err, "missing token")

	_, err = NewClient(ClientConfig{Token: "tok"})
	assert.Error(t, err, "missing collection")
}

func TestListItemsPaginates(t *testing.T) {
	// 5 items at page size 2: three requests, the last page short.
	items := make([]Item, 5)
	for i := range items {
		items[i] = Item{
			ID:        fmt.Sprintf("id-%d", i),
			FieldData: map[string]any{"slug": fmt.Sprintf("p-%d", i)},
		}
	}

	var offsets []int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/collections/col1/items", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offsets = append(offsets, offset)
		assert.Equal(t, 2, limit)

		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		json.NewEncoder(w).Encode(listResponse{Items: items[offset:end]})
	})

	c := newTestClient(t, handler, 2)
	got, err := c.ListItems(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2, 4}, offsets)
	require.Len(t, got, 5)
	assert.Equal(t, "p-4", got[4].SlugValue())
}

func TestListItemsExactPageBoundary(t *testing.T) {
	// 4 items at page size 2: the third request returns an empty page.
	items := []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	var requests int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := offset + 2
		if end > len(items) {
			end = len(items)
		}
		if offset > len(items) {
			offset = len(items)
		}
		json.NewEncoder(w).Encode(listResponse{Items: items[offset:end]})
	})

	c := newTestClient(t, handler, 2)
	got, err := c.ListItems(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, requests)
	assert.Len(t, got, 4)
}

func TestCreateItemsSendsLiveItemsAndReturnsIDs(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/col1/items", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req createRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 2)
		for _, item := range req.Items {
			assert.False(t, item.IsDraft)
			assert.False(t, item.IsArchived)
		}
		assert.Equal(t, "gh-a", req.Items[0].FieldData["slug"])

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(writeResponse{Items: []Item{{ID: "new-1"}, {ID: "new-2"}}})
	})

	c := newTestClient(t, handler, 100)
	ids, err := c.CreateItems(context.Background(), []map[string]any{
		{"slug": "gh-a", "name": "A"},
		{"slug": "gh-b", "name": "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"new-1", "new-2"}, ids)
}

func TestCreateItemsEmptyIsNoRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty create batch")
	})

	c := newTestClient(t, handler, 100)
	ids, err := c.CreateItems(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateItemsPatchesAndReturnsAcknowledgedIDs(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/collections/col1/items", r.URL.Path)

		var req updateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, "it-1", req.Items[0].ID)
		assert.Equal(t, float64(5), req.Items[0].FieldData["github-stars"])

		json.NewEncoder(w).Encode(writeResponse{Items: []Item{{ID: "it-1"}}})
	})

	c := newTestClient(t, handler, 100)
	ids, err := c.UpdateItems(context.Background(), []ItemUpdate{
		{ID: "it-1", FieldData: map[string]any{"github-stars": 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"it-1"}, ids)
}

func TestPublishItemsPostsIDs(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/col1/items/publish", r.URL.Path)

		var req publishRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"new-1", "it-1"}, req.ItemIDs)

		w.WriteHeader(http.StatusAccepted)
	})

	c := newTestClient(t, handler, 100)
	require.NoError(t, c.PublishItems(context.Background(), []string{"new-1", "it-1"}))
}

func TestPublishItemsEmptyIsNoRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty publish batch")
	})

	c := newTestClient(t, handler, 100)
	require.NoError(t, c.PublishItems(context.Background(), nil))
}

func TestErrorResponseSurfacesAPIMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"Validation Error: slug already in database"}`)
	})

	c := newTestClient(t, handler, 100)
	_, err := c.CreateItems(context.Background(), []map[string]any{{"slug": "dup"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
	assert.Contains(t, err.Error(), "slug already in database")
}

func TestErrorResponseWithoutBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newTestClient(t, handler, 100)
	_, err := c.ListItems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
