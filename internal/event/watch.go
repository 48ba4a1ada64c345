package event

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/pkg/storage"
)

// StorageRelay republishes document changes made behind the server's back,
// e.g. by another process sharing the data directory, as collection.changed
// events.
type StorageRelay struct {
	watcher  storage.Watcher
	eventBus *eventbus.Bus
	prefixes []string
}

func NewStorageRelay(watcher storage.Watcher, eventBus *eventbus.Bus, prefixes ...string) *StorageRelay {
	return &StorageRelay{watcher: watcher, eventBus: eventBus, prefixes: prefixes}
}

func (r *StorageRelay) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "storage relay started", "prefixes", r.prefixes)
	return r.watcher.Watch(ctx, r.prefixes, r.relay)
}

func (r *StorageRelay) relay(c storage.Change) {
	id := strings.TrimSuffix(path.Base(c.Path), path.Ext(c.Path))
	r.eventBus.PublishNew(eventbus.CollectionChanged, id, "", map[string]string{
		"collection": c.Prefix,
		"op":         string(c.Op),
	})
}
