package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rifaque/ZeroLink/internal/auth"
	"github.com/Rifaque/ZeroLink/internal/config"
	"github.com/Rifaque/ZeroLink/internal/domain"
	"github.com/Rifaque/ZeroLink/internal/hub"
	"github.com/Rifaque/ZeroLink/internal/service"
	"github.com/Rifaque/ZeroLink/internal/storage"
)

var testSecret = []byte("handler-test-secret")

// ---- fakes ----

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) UpsertUser(user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.UID]; !ok {
		f.users[user.UID] = user
	}
	return nil
}

func (f *fakeUserRepo) GetUserByUID(uid string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[uid], nil
}

func (f *fakeUserRepo) ListUsers() ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeConvoRepo struct {
	mu    sync.Mutex
	pairs map[string]*domain.Conversation
}

func newFakeConvoRepo() *fakeConvoRepo {
	return &fakeConvoRepo{pairs: make(map[string]*domain.Conversation)}
}

func (f *fakeConvoRepo) key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func (f *fakeConvoRepo) EnsureConversation(a, b string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.key(a, b)
	if _, ok := f.pairs[key]; !ok {
		f.pairs[key] = domain.NewConversation(a, b)
	}
	return nil
}

func (f *fakeConvoRepo) FindByPair(a, b string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairs[f.key(a, b)], nil
}

func (f *fakeConvoRepo) ListByParticipant(uid string) ([]*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Conversation
	for _, c := range f.pairs {
		if c.Peer(uid) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func (f *fakeMessageRepo) seed(from, to, text string) {
	f.messages = append(f.messages, &domain.Message{
		ID:           primitive.NewObjectID(),
		Username:     from,
		Receivername: to,
		Text:         text,
		Delivered:    true,
		Timestamp:    time.Now(),
	})
}

func (f *fakeMessageRepo) match(pred func(*domain.Message) bool) []*domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Message
	for _, m := range f.messages {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeMessageRepo) InsertMessage(ctx context.Context, m *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = primitive.NewObjectID()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) FindGlobalMessages(ctx context.Context) ([]*domain.Message, error) {
	return f.match(func(m *domain.Message) bool { return m.Receivername == domain.GlobalRoomID }), nil
}

func (f *fakeMessageRepo) FindThreadMessages(ctx context.Context, a, b string) ([]*domain.Message, error) {
	return f.match(func(m *domain.Message) bool {
		return (m.Username == a && m.Receivername == b) || (m.Username == b && m.Receivername == a)
	}), nil
}

func (f *fakeMessageRepo) LatestGlobalMessage(ctx context.Context) (*domain.Message, error) {
	msgs, _ := f.FindGlobalMessages(ctx)
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[len(msgs)-1], nil
}

func (f *fakeMessageRepo) LatestThreadMessage(ctx context.Context, a, b string) (*domain.Message, error) {
	msgs, _ := f.FindThreadMessages(ctx, a, b)
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[len(msgs)-1], nil
}

func (f *fakeMessageRepo) CountUndeliveredGlobal(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeMessageRepo) CountUndeliveredFrom(ctx context.Context, from, to string) (int64, error) {
	return 0, nil
}

func (f *fakeMessageRepo) ListAllMessages(ctx context.Context) ([]*domain.Message, error) {
	return f.match(func(*domain.Message) bool { return true }), nil
}

// ---- harness ----

type testEnv struct {
	server    *httptest.Server
	userRepo  *fakeUserRepo
	convoRepo *fakeConvoRepo
	msgRepo   *fakeMessageRepo
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Env:           "test",
		UploadDir:     t.TempDir(),
		VerifyTimeout: 5 * time.Second,
	}

	userRepo := newFakeUserRepo()
	convoRepo := newFakeConvoRepo()
	msgRepo := &fakeMessageRepo{}

	userService := service.NewUserService(userRepo)
	roomService := service.NewRoomService(convoRepo, msgRepo)
	verifier := auth.NewJWTVerifier(testSecret)

	blobs, err := storage.NewDiskStore(cfg.UploadDir)
	require.NoError(t, err)

	h := hub.NewHub(roomService, convoRepo, msgRepo, zerolog.Nop())
	ws := NewWebsocketHandler(h, verifier, userService, cfg, zerolog.Nop())
	rest := NewRestHandler(userService, msgRepo, verifier, blobs, zerolog.Nop())
	router := NewRouter(cfg, zerolog.Nop(), ws, rest)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{
		server:    server,
		userRepo:  userRepo,
		convoRepo: convoRepo,
		msgRepo:   msgRepo,
		uploadDir: cfg.UploadDir,
	}
}

func (e *testEnv) wsURL(query string) string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?" + query
}

func (e *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.wsURL(query), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	return conn
}

func mintToken(t *testing.T, uid, email, name string) string {
	t.Helper()
	token, err := auth.GenerateToken(uid, email, name, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func readEvent(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

// ---- tests ----

func TestHandshakeRejectsMissingCredentials(t *testing.T) {
	env := newTestEnv(t)

	conn := env.dial(t, "userId=alice")
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, CloseInvalidCredentials),
		"expected close %d, got %v", CloseInvalidCredentials, err)
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	conn := env.dial(t, "token=garbage&userId=alice")
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, CloseInvalidCredentials),
		"expected close %d, got %v", CloseInvalidCredentials, err)
}

func TestHandshakeReplaysRoomsAndHistory(t *testing.T) {
	env := newTestEnv(t)
	env.msgRepo.seed("bob", domain.GlobalRoomID, "welcome")

	token := mintToken(t, "uid-alice", "alice@example.com", "Alice")
	conn := env.dial(t, "token="+token+"&userId=alice")

	var rooms domain.RoomsEvent
	readEvent(t, conn, &rooms)
	require.Equal(t, domain.EventRooms, rooms.Type)
	require.NotEmpty(t, rooms.Rooms)
	assert.Equal(t, domain.GlobalRoomID, rooms.Rooms[0].RoomID)

	var history domain.HistoryEvent
	readEvent(t, conn, &history)
	require.Equal(t, domain.EventHistory, history.Type)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "welcome", history.Messages[0].Text)

	// The verified identity was bootstrapped into the directory.
	user, err := env.userRepo.GetUserByUID("uid-alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestSendMessageEchoesToSender(t *testing.T) {
	env := newTestEnv(t)

	token := mintToken(t, "uid-alice", "alice@example.com", "")
	conn := env.dial(t, "token="+token+"&userId=alice&roomId=global")

	var rooms domain.RoomsEvent
	readEvent(t, conn, &rooms)
	var history domain.HistoryEvent
	readEvent(t, conn, &history)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"sendMessage","roomId":"global","text":"hello","username":"alice"}`)))

	var msg domain.MessageEvent
	readEvent(t, conn, &msg)
	require.Equal(t, domain.EventMessage, msg.Type)
	assert.Equal(t, "hello", msg.Message.Text)
	assert.Equal(t, "alice", msg.Message.Username)
	assert.True(t, msg.Message.Delivered)
}

func TestOfflineRecipientGetsMessageOnNextConnect(t *testing.T) {
	env := newTestEnv(t)

	// Alice opens the thread with bob while bob is offline.
	aliceToken := mintToken(t, "uid-alice", "alice@example.com", "")
	aliceConn := env.dial(t, "token="+aliceToken+"&userId=alice&roomId=bob")

	var rooms domain.RoomsEvent
	readEvent(t, aliceConn, &rooms)
	var history domain.HistoryEvent
	readEvent(t, aliceConn, &history)
	assert.Empty(t, history.Messages)

	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"sendMessage","roomId":"bob","text":"hi","receivername":"bob","username":"alice"}`)))

	// The sender's own session receives the mirror.
	var echo domain.MessageEvent
	readEvent(t, aliceConn, &echo)
	assert.Equal(t, "hi", echo.Message.Text)
	aliceConn.Close()

	// Bob connects later and the thread replays.
	bobToken := mintToken(t, "uid-bob", "bob@example.com", "")
	bobConn := env.dial(t, "token="+bobToken+"&userId=bob&roomId=alice")

	var bobRooms domain.RoomsEvent
	readEvent(t, bobConn, &bobRooms)
	roomIDs := make([]string, 0, len(bobRooms.Rooms))
	for _, r := range bobRooms.Rooms {
		roomIDs = append(roomIDs, r.RoomID)
	}
	assert.Contains(t, roomIDs, "alice")

	var bobHistory domain.HistoryEvent
	readEvent(t, bobConn, &bobHistory)
	require.Len(t, bobHistory.Messages, 1)
	assert.Equal(t, "hi", bobHistory.Messages[0].Text)
}
