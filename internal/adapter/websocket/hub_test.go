package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
)

func actorWith(id string, role domain.RoleName) *domain.Actor {
	r, _ := domain.RoleByName(role)
	return &domain.Actor{ID: id, Role: r.Name, Permissions: r.Permissions}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h, _ := startHub(t)
	a := &Client{hub: h, send: make(chan []byte, 4), actor: actorWith("U001", domain.RoleAgent)}
	b := &Client{hub: h, send: make(chan []byte, 4), actor: actorWith("U002", domain.RoleIntern)}
	h.register <- a
	h.register <- b

	h.Broadcast([]byte(`{"type":"lead.created"}`), domain.PermViewLeads)

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.JSONEq(t, `{"type":"lead.created"}`, string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s got nothing", c.userID())
		}
	}
	assert.Equal(t, 2, h.Count())
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t)
	slow := &Client{hub: h, send: make(chan []byte), actor: actorWith("U003", domain.RoleAgent)}
	h.register <- slow

	h.Broadcast([]byte("x"), "")

	assert.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-slow.send
	assert.False(t, open)
}

func TestHub_UnregisterAndStop(t *testing.T) {
	h, cancel := startHub(t)
	c := &Client{hub: h, send: make(chan []byte, 1), actor: actorWith("U004", domain.RoleAgent)}
	h.register <- c
	h.unregister <- c
	assert.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-h.done:
	case <-time.After(time.Second):
		require.FailNow(t, "hub did not stop")
	}
	// Broadcast after stop must not block.
	h.Broadcast([]byte("late"), "")
}

func TestHub_SkipsClientsWithoutViewPermission(t *testing.T) {
	h, _ := startHub(t)
	admin := &Client{hub: h, send: make(chan []byte, 4), actor: actorWith("U001", domain.RoleAdmin)}
	intern := &Client{hub: h, send: make(chan []byte, 4), actor: actorWith("U002", domain.RoleIntern)}
	h.register <- admin
	h.register <- intern

	h.Broadcast([]byte(`{"type":"user.created","payload":{"email":"paul@agence.fr"}}`), domain.EventUserCreated.ViewPermission())
	h.Broadcast([]byte(`{"type":"task.created"}`), domain.EventTaskCreated.ViewPermission())

	select {
	case msg := <-admin.send:
		assert.Contains(t, string(msg), "user.created")
	case <-time.After(time.Second):
		t.Fatal("admin got nothing")
	}
	select {
	case msg := <-intern.send:
		assert.Contains(t, string(msg), "task.created")
	case <-time.After(time.Second):
		t.Fatal("intern got nothing")
	}
	assert.Empty(t, intern.send)
	assert.Equal(t, 2, h.Count())
}
