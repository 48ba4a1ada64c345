// Package record implements the generic record-store client every domain
// repository is built on: a named collection of YAML documents, one per
// record, addressed by id.
package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/teamboard/pkg/cerr"
	"github.com/kazz187/teamboard/pkg/storage"
)

// Collection stores records of type T under prefix. It provides the four
// primitives of the record store (select, insert, update, delete) and nothing
// more: there is no isolation between calls and writes are last-write-wins.
type Collection[T any] struct {
	storage storage.Storage
	prefix  string
	target  string
	idOf    func(*T) string
}

// NewCollection creates a collection. target names a single record in error
// messages ("task", "trash entry").
func NewCollection[T any](s storage.Storage, prefix, target string, idOf func(*T) string) *Collection[T] {
	return &Collection[T]{
		storage: s,
		prefix:  prefix,
		target:  target,
		idOf:    idOf,
	}
}

func (c *Collection[T]) path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", c.prefix, id)
}

// Insert writes a new record. It fails with cerr.AlreadyExists when a record
// with the same id is present.
func (c *Collection[T]) Insert(ctx context.Context, v *T) error {
	id := c.idOf(v)
	if id == "" {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("%s id is required", c.target), nil)
	}
	exists, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return cerr.WrapStorageWriteError(c.target, err)
	}
	if exists {
		return cerr.NewAlreadyExistsError(c.target, id)
	}
	return c.write(ctx, id, v)
}

// Get reads a single record; a missing record is cerr.NotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.storage.Read(ctx, c.path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.target, err)
	}
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal %s %s: %w", c.target, id, err))
	}
	return &v, nil
}

// Exists reports whether a record with id is present.
func (c *Collection[T]) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return false, cerr.WrapStorageReadError(c.target, err)
	}
	return ok, nil
}

// Select returns the records accepted by filter (all when nil), ordered by id.
// Records deleted between listing and reading are skipped, as are documents
// that no longer decode.
func (c *Collection[T]) Select(ctx context.Context, filter func(*T) bool) ([]*T, error) {
	paths, err := c.storage.List(ctx, c.prefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.prefix, err)
	}

	out := make([]*T, 0, len(paths))
	for _, p := range paths {
		data, err := c.storage.Read(ctx, p)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, cerr.WrapStorageReadError(c.prefix, err)
		}
		var v T
		if err := yaml.Unmarshal(data, &v); err != nil {
			slog.WarnContext(ctx, "skipping undecodable record", "path", p, "error", err)
			continue
		}
		if filter != nil && !filter(&v) {
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

// Replace overwrites an existing record. A missing record is cerr.NotFound.
func (c *Collection[T]) Replace(ctx context.Context, v *T) error {
	id := c.idOf(v)
	exists, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return cerr.WrapStorageWriteError(c.target, err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, fmt.Sprintf("%s not found", c.target), nil)
	}
	return c.write(ctx, id, v)
}

// Update applies a partial change: the current record is read, passed to
// mutate and written back. The read and the write are not isolated from
// concurrent writers.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (*T, error) {
	v, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(v); err != nil {
		return nil, err
	}
	if c.idOf(v) != id {
		return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("%s id cannot be changed", c.target), nil)
	}
	if err := c.write(ctx, id, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes a record; a missing record is cerr.NotFound.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.storage.Delete(ctx, c.path(id)); err != nil {
		return cerr.WrapStorageDeleteError(c.target, err)
	}
	return nil
}

func (c *Collection[T]) write(ctx context.Context, id string, v *T) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal %s: %w", c.target, err))
	}
	if err := c.storage.Write(ctx, c.path(id), data); err != nil {
		return cerr.WrapStorageWriteError(c.target, err)
	}
	return nil
}
