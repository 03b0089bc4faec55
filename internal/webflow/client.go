// Package webflow implements the Webflow CMS collection-item API surface
// foliosync drives: paginated listing, bulk create, bulk update, publish.
package webflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.webflow.com/v2"

// ClientConfig holds the configuration for the Webflow API client.
type ClientConfig struct {
	// Token is the API bearer token.
	Token string
	// CollectionID is the CMS collection to operate on.
	CollectionID string
	// BaseURL overrides the API base URL, mainly for tests.
	BaseURL string
	// PageSize is the item-list page size (API maximum 100).
	PageSize int
	// HTTPClient overrides the transport. The default carries a 30s
	// timeout; there is no retry at this layer.
	HTTPClient *http.Client
}

// Client is a minimal Webflow CMS API v2 client.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	collectionID string
	pageSize     int
}

// NewClient creates a Webflow client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("webflow API token is required")
	}
	if cfg.CollectionID == "" {
		return nil, fmt.Errorf("webflow collection ID is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		token:        cfg.Token,
		collectionID: cfg.CollectionID,
		pageSize:     pageSize,
	}, nil
}

type listResponse struct {
	Items []Item `json:"items"`
}

// ListItems fetches every item in the collection, requesting successive
// offset/limit pages until a short page signals the end of the list. The
// concatenation is the full remote state the reconciler works from.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var all []Item
	offset := 0

	for {
		query := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(c.pageSize)},
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, c.itemsPath(), query, nil, &page); err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}

		all = append(all, page.Items...)
		if len(page.Items) < c.pageSize {
			break
		}
		offset += len(page.Items)
	}

	return all, nil
}

type createRequest struct {
	Items []createItem `json:"items"`
}

type createItem struct {
	IsArchived bool           `json:"isArchived"`
	IsDraft    bool           `json:"isDraft"`
	FieldData  map[string]any `json:"fieldData"`
}

type writeResponse struct {
	Items []Item `json:"items"`
}

// CreateItems bulk-creates items from field-data payloads and returns the
// new item ids in creation order. Items are created live (non-draft,
// non-archived); publishing is a separate call.
func (c *Client) CreateItems(ctx context.Context, payloads []map[string]any) ([]string, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	req := createRequest{Items: make([]createItem, len(payloads))}
	for i, fd := range payloads {
		req.Items[i] = createItem{FieldData: fd}
	}

	var resp writeResponse
	if err := c.do(ctx, http.MethodPost, c.itemsPath(), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("create %d items: %w", len(payloads), err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

type updateRequest struct {
	Items []ItemUpdate `json:"items"`
}

// UpdateItems bulk-updates existing items and returns the ids the API
// acknowledged. Only acknowledged ids are safe to publish.
func (c *Client) UpdateItems(ctx context.Context, updates []ItemUpdate) ([]string, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	var resp writeResponse
	if err := c.do(ctx, http.MethodPatch, c.itemsPath(), nil, updateRequest{Items: updates}, &resp); err != nil {
		return nil, fmt.Errorf("update %d items: %w", len(updates), err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

type publishRequest struct {
	ItemIDs []string `json:"itemIds"`
}

// PublishItems publishes the given item ids in one call. The caller is
// responsible for only passing ids returned by successful write calls.
func (c *Client) PublishItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := c.do(ctx, http.MethodPost, c.itemsPath()+"/publish", nil, publishRequest{ItemIDs: ids}, nil); err != nil {
		return fmt.Errorf("publish %d items: %w", len(ids), err)
	}
	return nil
}

func (c *Client) itemsPath() string {
	return "/collections/" + c.collectionID + "/items"
}

// do performs one request/response exchange. No retries: a failure here is
// a failure of the run.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := apiErrorMessage(respBody); msg != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// apiErrorMessage pulls the human-readable detail out of an API error body
// without committing to one error envelope shape.
func apiErrorMessage(body []byte) string {
	for _, key := range []string{"message", "msg", "error", "code"} {
		if v := gjson.GetBytes(body, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
