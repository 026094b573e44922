package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"teamboard/internal/models"
)

type onlineCall struct {
	roomID, userID int
	online         bool
}

// fakeRoomService is an in-memory stand-in for the room layer.
type fakeRoomService struct {
	mu          sync.Mutex
	rooms       map[int]bool
	members     map[[2]int]bool
	onlineCalls []onlineCall
	nextID      int
}

func newFakeRoomService() *fakeRoomService {
	return &fakeRoomService{
		rooms:   make(map[int]bool),
		members: make(map[[2]int]bool),
	}
}

func (f *fakeRoomService) addRoom(roomID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[roomID] = true
}

func (f *fakeRoomService) addMember(roomID, userID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[[2]int{roomID, userID}] = true
}

func (f *fakeRoomService) GetRoom(ctx context.Context, roomID int) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rooms[roomID] {
		return nil, models.ErrNotFound
	}
	return &models.Room{ID: roomID, Name: fmt.Sprintf("room-%d", roomID)}, nil
}

func (f *fakeRoomService) IsMember(ctx context.Context, roomID, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[[2]int{roomID, userID}], nil
}

func (f *fakeRoomService) SetOnline(ctx context.Context, roomID, userID int, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onlineCalls = append(f.onlineCalls, onlineCall{roomID, userID, online})
	return nil
}

func (f *fakeRoomService) PostMessage(ctx context.Context, roomID, senderID int, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if content == "" {
		return nil, models.ErrInvalidContent
	}
	if !f.members[[2]int{roomID, senderID}] {
		return nil, models.ErrNotMember
	}
	f.nextID++
	return &models.Message{
		ID:        f.nextID,
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeRoomService) calls(online bool) []onlineCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []onlineCall
	for _, c := range f.onlineCalls {
		if c.online == online {
			out = append(out, c)
		}
	}
	return out
}

func recvEvent(t *testing.T, c *Client) models.Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return models.Event{}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	time.Sleep(100 * time.Millisecond)
	if n := len(c.send); n != 0 {
		data := <-c.send
		t.Fatalf("expected no events, got %d (first: %s)", n, data)
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestJoinNonMemberForbidden(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(7)
	m := NewManager(svc)
	defer m.Shutdown()

	c := NewClient(m, nil, 2, "bob")
	if err := m.Join(context.Background(), c, 7); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(svc.calls(true)) != 0 {
		t.Fatalf("online flag touched for a forbidden join: %+v", svc.onlineCalls)
	}
	if c.joined(7) {
		t.Fatal("forbidden join must not subscribe the connection")
	}
}

func TestJoinUnknownRoomNotFound(t *testing.T) {
	svc := newFakeRoomService()
	m := NewManager(svc)
	defer m.Shutdown()

	c := NewClient(m, nil, 1, "alice")
	if err := m.Join(context.Background(), c, 99); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPresenceLifecycle(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(7)
	svc.addMember(7, 1)
	m := NewManager(svc)
	defer m.Shutdown()

	// User A's first connection joins.
	a1 := NewClient(m, nil, 1, "alice")
	if err := m.Join(context.Background(), a1, 7); err != nil {
		t.Fatalf("join: %v", err)
	}

	ev := recvEvent(t, a1)
	if ev.Type != models.EventUserJoined || ev.UserID != 1 {
		t.Fatalf("expected user_joined for user 1, got %+v", ev)
	}
	ev = recvEvent(t, a1)
	if ev.Type != models.EventOnlineCount || ev.Count != 1 {
		t.Fatalf("expected online_count 1, got %+v", ev)
	}
	if got := svc.calls(true); len(got) != 1 {
		t.Fatalf("expected one SetOnline(true), got %+v", got)
	}

	// Non-member B is rejected and the count is untouched.
	b := NewClient(m, nil, 2, "bob")
	if err := m.Join(context.Background(), b, 7); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for bob, got %v", err)
	}
	assertNoEvent(t, a1)

	// A sends a message; only A's connection receives the fan-out.
	msg, err := a1.hub(7).Send(1, "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("expected a server-assigned message id")
	}
	ev = recvEvent(t, a1)
	if ev.Type != models.EventMessage || ev.Message == nil || ev.Message.Content != "hi" {
		t.Fatalf("expected message event, got %+v", ev)
	}
	assertNoEvent(t, b)

	// A's second connection: same user, so the count stays at 1 and the
	// online flag is not rewritten.
	a2 := NewClient(m, nil, 1, "alice")
	if err := m.Join(context.Background(), a2, 7); err != nil {
		t.Fatalf("second join: %v", err)
	}
	ev = recvEvent(t, a1)
	if ev.Type != models.EventUserJoined {
		t.Fatalf("expected user_joined, got %+v", ev)
	}
	ev = recvEvent(t, a1)
	if ev.Type != models.EventOnlineCount || ev.Count != 1 {
		t.Fatalf("expected online_count still 1, got %+v", ev)
	}
	recvEvent(t, a2) // user_joined
	recvEvent(t, a2) // online_count
	if got := svc.calls(true); len(got) != 1 {
		t.Fatalf("SetOnline(true) must fire once per (room,user), got %+v", got)
	}

	// First connection drops: the user still has a live connection, so no
	// user_left, no count change, no flag write.
	a1.leaveAll()
	a1.close()
	assertNoEvent(t, a2)
	if got := svc.calls(false); len(got) != 0 {
		t.Fatalf("online flag cleared too early: %+v", got)
	}

	// Last connection drops: the flag is cleared exactly once.
	a2.leaveAll()
	a2.close()
	eventually(t, func() bool { return len(svc.calls(false)) == 1 },
		"expected exactly one SetOnline(false) after the last connection dropped")
	time.Sleep(50 * time.Millisecond)
	if got := svc.calls(false); len(got) != 1 {
		t.Fatalf("SetOnline(false) fired %d times, want 1", len(got))
	}
}

// A connection that joins and drops immediately must still leave exactly once:
// the leave may be queued before the hub has processed the join, and must never
// overtake it.
func TestJoinThenImmediateDisconnect(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(7)
	svc.addMember(7, 1)
	m := NewManager(svc)
	defer m.Shutdown()

	const n = 200
	for i := 0; i < n; i++ {
		c := NewClient(m, nil, 1, "alice")
		if err := m.Join(context.Background(), c, 7); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		c.leaveAll()
		c.close()
	}

	m.mu.Lock()
	hub := m.hubs[7]
	m.mu.Unlock()

	// refs hits zero only once every queued leave has been processed.
	eventually(t, func() bool { return hub.refs.Load() == 0 },
		"hub still referenced after every connection disconnected")

	trues, falses := len(svc.calls(true)), len(svc.calls(false))
	if trues == 0 || trues != falses {
		t.Fatalf("online flag transitions unbalanced: %d set, %d cleared", trues, falses)
	}
}

func TestDuplicateJoinIsNoop(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(3)
	svc.addMember(3, 1)
	m := NewManager(svc)
	defer m.Shutdown()

	c := NewClient(m, nil, 1, "alice")
	if err := m.Join(context.Background(), c, 3); err != nil {
		t.Fatalf("join: %v", err)
	}
	recvEvent(t, c) // user_joined
	recvEvent(t, c) // online_count

	if err := m.Join(context.Background(), c, 3); err != nil {
		t.Fatalf("duplicate join: %v", err)
	}
	assertNoEvent(t, c)
	if got := svc.calls(true); len(got) != 1 {
		t.Fatalf("duplicate join must not re-register, got %+v", got)
	}
}

func TestSendErrorsGoToSenderOnly(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(5)
	svc.addMember(5, 1)
	svc.addMember(5, 2)
	m := NewManager(svc)
	defer m.Shutdown()

	a := NewClient(m, nil, 1, "alice")
	if err := m.Join(context.Background(), a, 5); err != nil {
		t.Fatalf("join: %v", err)
	}
	recvEvent(t, a)
	recvEvent(t, a)

	b := NewClient(m, nil, 2, "bob")
	if err := m.Join(context.Background(), b, 5); err != nil {
		t.Fatalf("join: %v", err)
	}
	recvEvent(t, a) // bob's user_joined
	recvEvent(t, a) // online_count 2
	recvEvent(t, b)
	recvEvent(t, b)

	if _, err := a.hub(5).Send(1, ""); !errors.Is(err, models.ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}
	assertNoEvent(t, a)
	assertNoEvent(t, b)
}

func TestMessageOrderingPerRoom(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(9)
	svc.addMember(9, 1)
	svc.addMember(9, 2)
	m := NewManager(svc)
	defer m.Shutdown()

	a := NewClient(m, nil, 1, "alice")
	b := NewClient(m, nil, 2, "bob")
	for _, c := range []*Client{a, b} {
		if err := m.Join(context.Background(), c, 9); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	// Drain the join/presence events.
	eventually(t, func() bool { return len(a.send) >= 4 && len(b.send) >= 2 }, "join events not delivered")
	for len(a.send) > 0 {
		<-a.send
	}
	for len(b.send) > 0 {
		<-b.send
	}

	const n = 20
	var wg sync.WaitGroup
	hub := a.hub(9)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := 1 + i%2
			if _, err := hub.Send(sender, fmt.Sprintf("msg-%d", i)); err != nil {
				t.Errorf("send: %v", err)
			}
		}(i)
	}
	wg.Wait()

	order := func(c *Client) []int {
		var ids []int
		for i := 0; i < n; i++ {
			ev := recvEvent(t, c)
			if ev.Type != models.EventMessage {
				t.Fatalf("expected message event, got %+v", ev)
			}
			ids = append(ids, ev.Message.ID)
		}
		return ids
	}

	aOrder := order(a)
	bOrder := order(b)
	for i := 1; i < n; i++ {
		if aOrder[i] <= aOrder[i-1] {
			t.Fatalf("delivery order does not match append order: %v", aOrder)
		}
	}
	for i := range aOrder {
		if aOrder[i] != bOrder[i] {
			t.Fatalf("subscribers observed different orders:\n%v\n%v", aOrder, bOrder)
		}
	}
}

func TestRestPostReachesSubscribers(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(4)
	svc.addMember(4, 1)
	svc.addMember(4, 2)
	m := NewManager(svc)
	defer m.Shutdown()

	a := NewClient(m, nil, 1, "alice")
	if err := m.Join(context.Background(), a, 4); err != nil {
		t.Fatalf("join: %v", err)
	}
	recvEvent(t, a)
	recvEvent(t, a)

	// User 2 posts over REST without a connection.
	msg, err := m.Post(context.Background(), 4, 2, "from rest")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("expected a server-assigned id")
	}

	ev := recvEvent(t, a)
	if ev.Type != models.EventMessage || ev.Message.Content != "from rest" {
		t.Fatalf("expected fan-out of the REST message, got %+v", ev)
	}
}

func TestRestPostNonMember(t *testing.T) {
	svc := newFakeRoomService()
	svc.addRoom(4)
	m := NewManager(svc)
	defer m.Shutdown()

	if _, err := m.Post(context.Background(), 4, 2, "hello"); !errors.Is(err, models.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	if _, err := m.Post(context.Background(), 12, 2, "hello"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
