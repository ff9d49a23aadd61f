package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// decodeList is the single normalization boundary for the two list shapes
// the server emits: a bare JSON array, or an object with one named field
// holding the array (e.g. {"bills": [...]}). wrapKey names that field; when
// it is empty and the body is an object, the first array-valued field wins.
func decodeList[T any](data []byte, wrapKey string) ([]T, error) {
	var direct []T
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("list body is neither array nor object: %w", err)
	}

	if wrapKey != "" {
		raw, ok := wrapped[wrapKey]
		if !ok {
			return nil, fmt.Errorf("list body has no %q field", wrapKey)
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode %q field: %w", wrapKey, err)
		}
		return items, nil
	}

	for _, raw := range wrapped {
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}
	return nil, fmt.Errorf("list body has no array-valued field")
}

// GetList fetches and normalizes a list endpoint.
func GetList[T any](ctx context.Context, c *Client, path string, query url.Values, wrapKey string) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw, wrapKey)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Message: "malformed list body", Err: err}
	}
	return items, nil
}

// Resource is a typed binding to one base resource path, e.g. /api/billing.
// It implements the source contract the view data controller consumes.
type Resource[T any] struct {
	client  *Client
	path    string
	wrapKey string
	query   url.Values
}

// NewResource binds a record type to a resource path. wrapKey names the
// object field carrying the list when the endpoint wraps it; pass "" for
// endpoints returning bare arrays.
func NewResource[T any](c *Client, path, wrapKey string) *Resource[T] {
	return &Resource[T]{client: c, path: path, wrapKey: wrapKey}
}

// WithQuery returns a copy of the resource scoped by server-side query
// parameters, e.g. roles=user,patient or days=30.
func (r *Resource[T]) WithQuery(query url.Values) *Resource[T] {
	clone := *r
	clone.query = query
	return &clone
}

// List fetches the full collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return GetList[T](ctx, r.client, r.path, r.query, r.wrapKey)
}

// Create posts a draft record.
func (r *Resource[T]) Create(ctx context.Context, draft T) error {
	return r.client.Post(ctx, r.path, draft, nil)
}

// Update puts a partial or full record at /{id}.
func (r *Resource[T]) Update(ctx context.Context, id string, patch any) error {
	return r.client.Put(ctx, r.path+"/"+url.PathEscape(id), patch, nil)
}

// Delete removes the record at /{id}.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, r.path+"/"+url.PathEscape(id))
}
