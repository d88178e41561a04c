package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachhsetu/internal/model"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	hub := NewHub(zerolog.Nop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := model.Actor{
			UserID: uuid.MustParse(r.URL.Query().Get("uid")),
			Role:   model.Role(r.URL.Query().Get("role")),
		}
		_ = hub.ServeWS(w, r, actor)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, hub *Hub, srv *httptest.Server, uid uuid.UUID, role model.Role) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + uid.String() + "&role=" + string(role)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.IsOnline(uid) }, time.Second, 10*time.Millisecond)
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn, wait time.Duration) (Envelope, error) {
	var env Envelope
	conn.SetReadDeadline(time.Now().Add(wait))
	err := conn.ReadJSON(&env)
	return env, err
}

func TestHub_ToUserReachesOnlyAddressedUser(t *testing.T) {
	hub, srv := startHub(t)
	alice, bob := uuid.New(), uuid.New()
	aliceConn := dial(t, hub, srv, alice, model.RoleUser)
	bobConn := dial(t, hub, srv, bob, model.RoleUser)

	hub.ToUser(alice, EventNotification, map[string]string{"title": "hello"})

	env, err := readEnvelope(t, aliceConn, time.Second)
	require.NoError(t, err)
	assert.Equal(t, EventNotification, env.Event)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "hello", env.Data.(map[string]interface{})["title"])

	_, err = readEnvelope(t, bobConn, 150*time.Millisecond)
	assert.Error(t, err)
}

func TestHub_ToStaffSkipsCitizens(t *testing.T) {
	hub, srv := startHub(t)
	citizen, moderator := uuid.New(), uuid.New()
	citizenConn := dial(t, hub, srv, citizen, model.RoleUser)
	modConn := dial(t, hub, srv, moderator, model.RoleModerator)

	hub.ToStaff(EventNewReport, map[string]string{"id": "r1"})

	env, err := readEnvelope(t, modConn, time.Second)
	require.NoError(t, err)
	assert.Equal(t, EventNewReport, env.Event)

	_, err = readEnvelope(t, citizenConn, 150*time.Millisecond)
	assert.Error(t, err)
}

func TestHub_PreservesOrderPerUser(t *testing.T) {
	hub, srv := startHub(t)
	uid := uuid.New()
	conn := dial(t, hub, srv, uid, model.RoleUser)

	for i := 0; i < 5; i++ {
		hub.ToUser(uid, EventNotification, i)
	}

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		env, err := readEnvelope(t, conn, time.Second)
		require.NoError(t, err)
		assert.Equal(t, float64(i), env.Data)
		assert.False(t, seen[env.ID], "envelope ids must be unique")
		seen[env.ID] = true
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	uid := uuid.New()
	conn := dial(t, hub, srv, uid, model.RoleAdmin)
	assert.Equal(t, 2, hub.Stats().Rooms)

	conn.Close()

	assert.Eventually(t, func() bool { return !hub.IsOnline(uid) }, time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.Stats().Connections)
}

func TestHub_StopsCleanly(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	serveErr := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := model.Actor{UserID: uuid.MustParse(r.URL.Query().Get("uid")), Role: model.RoleUser}
		serveErr <- hub.ServeWS(w, r, actor)
	}))
	defer srv.Close()

	uid := uuid.New()
	conn := dial(t, hub, srv, uid, model.RoleUser)
	require.NoError(t, <-serveErr)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// the server side closes the socket once the hub is gone
	_, err := readEnvelope(t, conn, time.Second)
	assert.Error(t, err)
	assert.False(t, hub.IsOnline(uid))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + uuid.NewString()
	late, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer late.Close()
	select {
	case err := <-serveErr:
		assert.ErrorIs(t, err, ErrHubStopped)
	case <-time.After(time.Second):
		t.Fatal("ServeWS blocked after the hub stopped")
	}
}
