package pocketbase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mimirprompt/gallery-crawler/config"
)

// Client is a thin admin-API client for a PocketBase instance. Callers
// must Authenticate before touching collections or records.
type Client struct {
	http    *resty.Client
	baseURL string
}

// Collection mirrors the PocketBase collection resource, trimmed to the
// fields the migration needs.
type Collection struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Schema []SchemaField `json:"schema"`
}

// SchemaField is one column of a PocketBase collection.
type SchemaField struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Required bool           `json:"required"`
	Options  map[string]any `json:"options,omitempty"`
}

// NewClient builds a client for the configured PocketBase URL.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:    resty.New().SetTimeout(30 * time.Second),
		baseURL: strings.TrimRight(cfg.PocketBase.URL, "/"),
	}
}

// Authenticate logs in as an admin and installs the returned token on
// every subsequent request.
func (c *Client) Authenticate(ctx context.Context, email, password string) error {
	var result struct {
		Token string `json:"token"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"identity": email, "password": password}).
		SetResult(&result).
		Post(c.baseURL + "/api/admins/auth-with-password")
	if err != nil {
		return fmt.Errorf("failed to reach PocketBase: %v", err)
	}
	if resp.IsError() {
		return fmt.Errorf("admin authentication failed: HTTP %d", resp.StatusCode())
	}
	if result.Token == "" {
		return fmt.Errorf("admin authentication returned no token")
	}
	c.http.SetHeader("Authorization", result.Token)
	return nil
}

// FindCollection returns the named collection, or nil when it does not
// exist.
func (c *Client) FindCollection(ctx context.Context, name string) (*Collection, error) {
	var result Collection
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(c.baseURL + "/api/collections/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection %s: %v", name, err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch collection %s: HTTP %d", name, resp.StatusCode())
	}
	return &result, nil
}

// DeleteCollection drops a collection. Missing collections are fine.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(c.baseURL + "/api/collections/" + name)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %v", name, err)
	}
	if resp.IsError() && resp.StatusCode() != 404 {
		return fmt.Errorf("failed to delete collection %s: HTTP %d", name, resp.StatusCode())
	}
	return nil
}

// CreateCollection creates a collection and returns it with its
// assigned id.
func (c *Client) CreateCollection(ctx context.Context, collection Collection) (*Collection, error) {
	var result Collection
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(collection).
		SetResult(&result).
		Post(c.baseURL + "/api/collections")
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %v", collection.Name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to create collection %s: HTTP %d", collection.Name, resp.StatusCode())
	}
	return &result, nil
}

// UpdateCollection patches an existing collection, used to add relation
// fields once the target collections have ids.
func (c *Client) UpdateCollection(ctx context.Context, name string, collection Collection) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(collection).
		Patch(c.baseURL + "/api/collections/" + name)
	if err != nil {
		return fmt.Errorf("failed to update collection %s: %v", name, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to update collection %s: HTTP %d", name, resp.StatusCode())
	}
	return nil
}

// CreateRecord inserts one record and returns its id.
func (c *Client) CreateRecord(ctx context.Context, collection string, fields map[string]any) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(fields).
		SetResult(&result).
		Post(c.baseURL + "/api/collections/" + collection + "/records")
	if err != nil {
		return "", fmt.Errorf("failed to create %s record: %v", collection, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to create %s record: HTTP %d", collection, resp.StatusCode())
	}
	return result.ID, nil
}
