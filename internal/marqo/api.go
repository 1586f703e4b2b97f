package marqo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Info is the root endpoint response.
type Info struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// IndexSettings is the body for index creation. Only the fields the
// compatibility cases use are modelled.
type IndexSettings struct {
	Type         string   `json:"type,omitempty"`
	Model        string   `json:"model,omitempty"`
	AllFields    []Field  `json:"allFields,omitempty"`
	TensorFields []string `json:"tensorFields,omitempty"`
}

// Field describes a structured index field.
type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Features []string `json:"features,omitempty"`
}

// Document is a Marqo document; "_id" identifies it.
type Document map[string]any

// AddDocumentsRequest is the body for adding documents.
type AddDocumentsRequest struct {
	Documents    []Document `json:"documents"`
	TensorFields []string   `json:"tensorFields,omitempty"`
}

// ItemResult is the per-document outcome of a write.
type ItemResult struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

// WriteResponse is returned by document writes.
type WriteResponse struct {
	Errors bool         `json:"errors"`
	Items  []ItemResult `json:"items"`
}

// FirstError returns the first failed item, if any.
func (r *WriteResponse) FirstError() error {
	if !r.Errors {
		return nil
	}
	for _, item := range r.Items {
		if item.Error != "" || item.Status >= 300 {
			return fmt.Errorf("document %s: status %d: %s", item.ID, item.Status, item.Error)
		}
	}
	return fmt.Errorf("write reported errors")
}

// SearchRequest is the body for a search.
type SearchRequest struct {
	Q              string         `json:"q,omitempty"`
	Limit          int            `json:"limit,omitempty"`
	SearchMethod   string         `json:"searchMethod,omitempty"`
	Filter         string         `json:"filter,omitempty"`
	ScoreModifiers map[string]any `json:"scoreModifiers,omitempty"`
}

// Hit is one search result.
type Hit map[string]any

// ID returns the document id of the hit.
func (h Hit) ID() string {
	id, _ := h["_id"].(string)
	return id
}

// SearchResponse is the search result set.
type SearchResponse struct {
	Hits []Hit `json:"hits"`
}

// Stats are index statistics.
type Stats struct {
	NumberOfDocuments int `json:"numberOfDocuments"`
	NumberOfVectors   int `json:"numberOfVectors"`
}

type indexList struct {
	Results []struct {
		IndexName string `json:"indexName"`
	} `json:"results"`
}

func indexPath(name string, rest ...string) string {
	p := "/indexes/" + url.PathEscape(name)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// Info returns the server banner, including its version.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.do(ctx, http.MethodGet, "/", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListIndexes returns the names of all indexes.
func (c *Client) ListIndexes(ctx context.Context) ([]string, error) {
	var list indexList
	if err := c.do(ctx, http.MethodGet, "/indexes", nil, &list); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list.Results))
	for _, r := range list.Results {
		names = append(names, r.IndexName)
	}
	return names, nil
}

// CreateIndex creates an index.
func (c *Client) CreateIndex(ctx context.Context, name string, settings IndexSettings) error {
	return c.do(ctx, http.MethodPost, indexPath(name), settings, nil)
}

// DeleteIndex deletes an index.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, indexPath(name), nil, nil)
}

// AddDocuments adds or replaces documents.
func (c *Client) AddDocuments(ctx context.Context, index string, req AddDocumentsRequest) (*WriteResponse, error) {
	var resp WriteResponse
	if err := c.do(ctx, http.MethodPost, indexPath(index, "documents"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, resp.FirstError()
}

// UpdateDocuments partially updates documents.
func (c *Client) UpdateDocuments(ctx context.Context, index string, docs []Document) (*WriteResponse, error) {
	var resp WriteResponse
	body := map[string]any{"documents": docs}
	if err := c.do(ctx, http.MethodPatch, indexPath(index, "documents"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, resp.FirstError()
}

// GetDocument fetches a document by id.
func (c *Client) GetDocument(ctx context.Context, index, id string) (Document, error) {
	var doc Document
	if err := c.do(ctx, http.MethodGet, indexPath(index, "documents", url.PathEscape(id)), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Search runs a search against an index.
func (c *Client) Search(ctx context.Context, index string, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, indexPath(index, "search"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns index statistics.
func (c *Client) Stats(ctx context.Context, index string) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, indexPath(index, "stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
