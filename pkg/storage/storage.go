package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage provides an abstraction over key-value style document storage.
// Writes are last-write-wins; there is no multi-document transaction.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// ChangeOp describes what happened to a document.
type ChangeOp string

const (
	ChangeWrite  ChangeOp = "write"
	ChangeDelete ChangeOp = "delete"
)

// Change is emitted by a Watcher when a document under a watched prefix is
// modified, possibly by another process sharing the same storage.
type Change struct {
	Prefix string
	Path   string
	Op     ChangeOp
	At     time.Time
}

// Watcher is implemented by storages able to report external modifications.
type Watcher interface {
	Watch(ctx context.Context, prefixes []string, fn func(Change)) error
}
