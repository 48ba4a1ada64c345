package pushnotification

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/teamboard/internal/config"
	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/internal/pushsubscription"
	"github.com/kazz187/teamboard/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/teamboard/pkg/storage"
)

func newVAPIDEnv(t *testing.T) *config.VAPIDEnv {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return &config.VAPIDEnv{VAPIDPublicKey: pub, VAPIDPrivateKey: priv, VAPIDContact: "ops@example.com"}
}

func newSubscription(t *testing.T, id, userID, endpoint string) *pushsubscription.Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return &pushsubscription.Subscription{
		ID:        id,
		UserID:    userID,
		Endpoint:  endpoint,
		P256dhKey: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		AuthKey:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func TestSender_SendTo(t *testing.T) {
	ctx := context.Background()
	var accepted, gone atomic.Int32
	push := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone":
			gone.Add(1)
			w.WriteHeader(http.StatusGone)
		default:
			accepted.Add(1)
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer push.Close()

	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	require.NoError(t, repo.Create(ctx, newSubscription(t, "s1", "ana", push.URL+"/ana")))
	require.NoError(t, repo.Create(ctx, newSubscription(t, "s2", "", push.URL+"/everyone")))
	require.NoError(t, repo.Create(ctx, newSubscription(t, "s3", "ben", push.URL+"/ben")))
	require.NoError(t, repo.Create(ctx, newSubscription(t, "s4", "ana", push.URL+"/gone")))

	sender := NewSender(newVAPIDEnv(t), repo)
	sent := sender.SendTo(ctx, "ana", &NotificationPayload{Title: "hi", Body: "there"})
	assert.Equal(t, 2, sent)
	assert.EqualValues(t, 2, accepted.Load())
	assert.EqualValues(t, 1, gone.Load())

	subs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 3)
}

func TestSender_SkipsWithoutVAPIDKeys(t *testing.T) {
	ctx := context.Background()
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	require.NoError(t, repo.Create(ctx, newSubscription(t, "s1", "", "http://127.0.0.1:1/unused")))

	sender := NewSender(&config.VAPIDEnv{}, repo)
	assert.Zero(t, sender.SendToAll(ctx, &NotificationPayload{Title: "hi"}))
}

func TestDispatcher_PushesCreatedNotifications(t *testing.T) {
	received := make(chan string, 16)
	push := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case received <- r.URL.Path:
		default:
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer push.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	require.NoError(t, repo.Create(ctx, newSubscription(t, "s1", "ben", push.URL+"/ben")))

	bus := eventbus.New()
	d := NewDispatcher(bus, NewSender(newVAPIDEnv(t), repo))
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	require.Eventually(t, func() bool {
		bus.PublishNew(eventbus.NotificationCreated, "n1", "New evaluation received", map[string]string{"user_id": "ben", "message": "4 stars"})
		select {
		case path := <-received:
			return path == "/ben"
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
