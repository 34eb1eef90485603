package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Resource binds the client to one remote entity collection.
type Resource[T any] struct {
	client *Client
	entity string
}

// NewResource returns a typed view over {base}/{entity}.
func NewResource[T any](client *Client, entity string) *Resource[T] {
	return &Resource[T]{client: client, entity: entity}
}

// Entity returns the remote collection name.
func (r *Resource[T]) Entity() string {
	return r.entity
}

// Page runs a paged search. Any transport or status failure is replaced by the
// entity's bundled fixture; the error return is only used when no fixture exists.
func (r *Resource[T]) Page(ctx context.Context, q PageQuery) (PagedResult[T], Source, error) {
	target := r.client.endpoint(r.entity, "pagingwithsearch") + "?" + q.Values().Encode()
	var result PagedResult[T]
	err := r.client.getJSON(ctx, r.entity, "page", target, &result)
	if err == nil {
		if result.Results == nil {
			result.Results = []T{}
		}
		return result, SourceRemote, nil
	}
	if ctx.Err() != nil {
		return PagedResult[T]{}, SourceRemote, ctx.Err()
	}

	r.client.logger.Warn("gateway paged search failed, serving fixture",
		slog.String("entity", r.entity),
		slog.Int("skip", q.Skip),
		slog.Int("take", q.Take),
		slog.Any("error", err))
	if r.client.recorder != nil {
		r.client.recorder.IncGatewayFallback(r.entity)
	}

	fixture, ferr := r.Fixture()
	if ferr != nil {
		return PagedResult[T]{}, SourceFixture, errors.Join(err, ferr)
	}
	return fixture, SourceFixture, nil
}

// Fixture decodes the bundled fixture for this entity.
func (r *Resource[T]) Fixture() (PagedResult[T], error) {
	raw, err := r.client.fixtures.Raw(r.entity)
	if err != nil {
		return PagedResult[T]{}, err
	}
	var result PagedResult[T]
	if err := json.Unmarshal(raw, &result); err != nil {
		return PagedResult[T]{}, fmt.Errorf("gateway: decode fixture %s: %w", r.entity, err)
	}
	if result.Results == nil {
		result.Results = []T{}
	}
	return result, nil
}

// All fetches the full unfiltered collection. Both a bare array and a paged
// envelope are accepted.
func (r *Resource[T]) All(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := r.client.getJSON(ctx, r.entity, "list", r.client.endpoint(r.entity), &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope PagedResult[T]
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: decode list %s: %v", ErrTransport, r.entity, err)
		}
		return envelope.Results, nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: decode list %s: %v", ErrTransport, r.entity, err)
	}
	return items, nil
}

// Create posts an entity-shaped body and returns the raw response.
func (r *Resource[T]) Create(ctx context.Context, body any) (json.RawMessage, error) {
	return r.client.postJSON(ctx, r.entity, body)
}
