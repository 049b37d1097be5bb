package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/quantro/pkg/attack"
	"github.com/cbodonnell/quantro/pkg/cyclestate"
	"github.com/cbodonnell/quantro/pkg/messages"
	"github.com/cbodonnell/quantro/pkg/network"
	"github.com/cbodonnell/quantro/pkg/repositories"
	"github.com/cbodonnell/quantro/pkg/repositories/models"
	"github.com/cbodonnell/quantro/pkg/workers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRows = 12
	testCols = 6
)

func TestRecipients(t *testing.T) {
	roster := []uint32{4, 7, 9}
	tests := []struct {
		name   string
		target attack.Target
		roster []uint32
		sender uint32
		want   []uint32
	}{
		{name: "incoming", target: attack.TargetIncoming, roster: roster, sender: 7, want: []uint32{7}},
		{name: "next", target: attack.TargetCycleNext, roster: roster, sender: 7, want: []uint32{9}},
		{name: "next wraps", target: attack.TargetCycleNext, roster: roster, sender: 9, want: []uint32{4}},
		{name: "previous", target: attack.TargetCyclePrevious, roster: roster, sender: 7, want: []uint32{4}},
		{name: "previous wraps", target: attack.TargetCyclePrevious, roster: roster, sender: 4, want: []uint32{9}},
		{name: "next alone", target: attack.TargetCycleNext, roster: []uint32{4}, sender: 4, want: nil},
		{name: "all", target: attack.TargetAll, roster: roster, sender: 7, want: []uint32{4, 7, 9}},
		{name: "all divided", target: attack.TargetAllDivided, roster: roster, sender: 7, want: []uint32{4, 7, 9}},
		{name: "all but self", target: attack.TargetAllButSelf, roster: roster, sender: 7, want: []uint32{4, 9}},
		{name: "all but self divided", target: attack.TargetAllButSelfDivided, roster: roster, sender: 4, want: []uint32{7, 9}},
		{name: "unset", target: attack.TargetUnset, roster: roster, sender: 7, want: nil},
		{name: "unknown sender", target: attack.TargetAll, roster: roster, sender: 5, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recipients(tt.target, tt.roster, tt.sender)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

type testRelay struct {
	server    *Server
	http      *httptest.Server
	snapshots chan workers.SnapshotEvent
}

func newTestRelay(t *testing.T, repository repositories.Repository) *testRelay {
	snapshots := make(chan workers.SnapshotEvent, 64)
	s := NewServer(NewServerOptions{
		Rows:         testRows,
		Cols:         testCols,
		Repository:   repository,
		SnapshotChan: snapshots,
	})
	h := httptest.NewServer(s.Handler())
	t.Cleanup(h.Close)
	return &testRelay{server: s, http: h, snapshots: snapshots}
}

func (r *testRelay) createMatch(t *testing.T) MatchInfo {
	resp, err := http.Post(r.http.URL+"/matches", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var info MatchInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	return info
}

func (r *testRelay) getMatch(t *testing.T, id string) (MatchInfo, int) {
	resp, err := http.Get(r.http.URL + "/matches/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	var info MatchInfo
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	}
	return info, resp.StatusCode
}

func (r *testRelay) wsURL(id string) string {
	return "ws" + strings.TrimPrefix(r.http.URL, "http") + "/matches/" + id + "/ws"
}

func readType(t *testing.T, conn *network.Conn, typ messages.MessageType) *messages.Message {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		msg, err := conn.ReadMessage(ctx)
		require.NoError(t, err, "waiting for %s", typ)
		if msg.Type == typ {
			return msg
		}
	}
}

func (r *testRelay) join(t *testing.T, id, name string) (*network.Conn, messages.Welcome) {
	ctx := context.Background()
	conn, err := network.Dial(ctx, r.wsURL(id))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close("done") })

	hello, err := messages.NewJSONMessage(0, messages.MessageTypeHello, messages.Hello{Name: name, Rows: testRows, Cols: testCols})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(ctx, hello))

	var welcome messages.Welcome
	require.NoError(t, messages.DecodeJSON(readType(t, conn, messages.MessageTypeWelcome), messages.MessageTypeWelcome, &welcome))
	return conn, welcome
}

func fullSyncPayload(t *testing.T, score int64) []byte {
	d := cyclestate.New(testRows, testCols)
	d.Counters.Score = score
	u := cyclestate.NewUpdate(testRows, testCols)
	u.Set(nil, d)
	b, err := u.Marshal()
	require.NoError(t, err)
	return b
}

func attackPayload(t *testing.T, setup func(d *attack.Descriptor)) []byte {
	d := attack.New(testRows, testCols)
	setup(d)
	b := make([]byte, d.WriteLength())
	_, err := d.Write(b, 0, len(b))
	require.NoError(t, err)
	return b
}

func TestServer_Matches(t *testing.T) {
	r := newTestRelay(t, nil)

	info := r.createMatch(t)
	_, err := uuid.Parse(info.ID)
	assert.NoError(t, err)
	assert.Equal(t, testRows, info.Rows)
	assert.Equal(t, testCols, info.Cols)
	assert.Empty(t, info.Roster)

	got, status := r.getMatch(t, info.ID)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, info.ID, got.ID)

	_, status = r.getMatch(t, uuid.New().String())
	assert.Equal(t, http.StatusNotFound, status)

	resp, err := http.Post(r.http.URL+"/matches", "application/json", strings.NewReader(`{"rows": 300, "cols": 10}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(r.http.URL+"/matches", "application/json", strings.NewReader(`{"rows": 20, "cols": 10}`))
	require.NoError(t, err)
	var custom MatchInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&custom))
	resp.Body.Close()
	assert.Equal(t, 20, custom.Rows)
}

func TestServer_Routing(t *testing.T) {
	r := newTestRelay(t, nil)
	info := r.createMatch(t)
	ctx := context.Background()

	a, welcomeA := r.join(t, info.ID, "a")
	b, welcomeB := r.join(t, info.ID, "b")
	assert.Equal(t, []uint32{welcomeA.ClientID}, welcomeA.Roster)
	assert.Equal(t, []uint32{welcomeA.ClientID, welcomeB.ClientID}, welcomeB.Roster)
	assert.Equal(t, info.ID, welcomeB.MatchID)

	joined := readType(t, a, messages.MessageTypeHello)
	assert.Equal(t, welcomeB.ClientID, joined.ClientID)

	got, _ := r.getMatch(t, info.ID)
	assert.Equal(t, []uint32{welcomeA.ClientID, welcomeB.ClientID}, got.Roster)

	t.Run("actions go to others with the sender's ID", func(t *testing.T) {
		require.NoError(t, a.WriteMessage(ctx, &messages.Message{ClientID: 99, Type: messages.MessageTypeActions, Payload: []byte{4, 8}}))
		msg := readType(t, b, messages.MessageTypeActions)
		assert.Equal(t, welcomeA.ClientID, msg.ClientID)
		assert.Equal(t, []byte{4, 8}, msg.Payload)
	})

	t.Run("cycle updates go to everyone", func(t *testing.T) {
		payload := fullSyncPayload(t, 1)
		require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeCycleUpdate, Cycle: 3, Payload: payload}))
		for _, conn := range []*network.Conn{a, b} {
			msg := readType(t, conn, messages.MessageTypeCycleUpdate)
			assert.Equal(t, welcomeA.ClientID, msg.ClientID)
			assert.Equal(t, uint32(3), msg.Cycle)
		}
	})

	t.Run("attacks are addressed to their recipient", func(t *testing.T) {
		payload := attackPayload(t, func(d *attack.Descriptor) {
			d.Target = attack.TargetCycleNext
			d.PenaltyRows = 2
		})
		require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeAttack, Payload: payload}))
		for _, conn := range []*network.Conn{a, b} {
			msg := readType(t, conn, messages.MessageTypeAttack)
			assert.Equal(t, welcomeB.ClientID, msg.ClientID)
			d := attack.New(testRows, testCols)
			_, err := d.Read(msg.Payload, 0)
			require.NoError(t, err)
			assert.Equal(t, attack.TargetIncoming, d.Target)
			assert.Equal(t, 2, d.PenaltyRows)
		}
	})

	t.Run("divided attacks are split", func(t *testing.T) {
		payload := attackPayload(t, func(d *attack.Descriptor) {
			d.Target = attack.TargetAllDivided
			d.AccelerateRows = 3
		})
		require.NoError(t, b.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeAttack, Payload: payload}))
		seen := map[uint32]float64{}
		for i := 0; i < 2; i++ {
			msg := readType(t, a, messages.MessageTypeAttack)
			d := attack.New(testRows, testCols)
			_, err := d.Read(msg.Payload, 0)
			require.NoError(t, err)
			seen[msg.ClientID] = d.AccelerateRows
		}
		assert.Equal(t, map[uint32]float64{welcomeA.ClientID: 1.5, welcomeB.ClientID: 1.5}, seen)
	})

	t.Run("ping is answered to the sender", func(t *testing.T) {
		require.NoError(t, b.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypePing, Cycle: 8}))
		msg := readType(t, b, messages.MessageTypePong)
		assert.Equal(t, uint32(8), msg.Cycle)
	})

	t.Run("leaving is announced", func(t *testing.T) {
		require.NoError(t, b.Close("bye"))
		var leave messages.Leave
		require.NoError(t, messages.DecodeJSON(readType(t, a, messages.MessageTypeLeave), messages.MessageTypeLeave, &leave))
		assert.Equal(t, welcomeB.ClientID, leave.ClientID)
	})
}

// updatePayload encodes the update from from to to; a nil from gives a full
// update.
func updatePayload(t *testing.T, from, to *cyclestate.Descriptor) []byte {
	u := cyclestate.NewUpdate(testRows, testCols)
	u.Set(from, to)
	b, err := u.Marshal()
	require.NoError(t, err)
	return b
}

func scoredState(score int64) *cyclestate.Descriptor {
	d := cyclestate.New(testRows, testCols)
	d.Counters.Score = score
	d.Board[0][testRows-1][int(score)%testCols] = byte(score)
	return d
}

// applyPayload applies an encoded update to d.
func applyPayload(t *testing.T, d *cyclestate.Descriptor, payload []byte) {
	u := cyclestate.NewUpdate(testRows, testCols)
	_, err := u.Read(payload, 0)
	require.NoError(t, err)
	u.Apply(d)
}

// readUntil reads until a message of type typ and returns the types of the
// messages read before it.
func readUntil(t *testing.T, conn *network.Conn, typ messages.MessageType) []messages.MessageType {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var seen []messages.MessageType
	for {
		msg, err := conn.ReadMessage(ctx)
		require.NoError(t, err, "waiting for %s", typ)
		if msg.Type == typ {
			return seen
		}
		seen = append(seen, msg.Type)
	}
}

func nextSnapshot(t *testing.T, r *testRelay) workers.SnapshotEvent {
	select {
	case event := <-r.snapshots:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot event")
		return workers.SnapshotEvent{}
	}
}

func TestServer_FullSyncReplay(t *testing.T) {
	r := newTestRelay(t, nil)
	info := r.createMatch(t)
	ctx := context.Background()

	a, welcomeA := r.join(t, info.ID, "a")
	b, _ := r.join(t, info.ID, "b")
	payload := fullSyncPayload(t, 42)
	require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeFullSync, Cycle: 5, Payload: payload}))
	msg := readType(t, b, messages.MessageTypeFullSync)
	assert.Equal(t, welcomeA.ClientID, msg.ClientID)

	event := nextSnapshot(t, r)
	assert.Equal(t, workers.SnapshotEventTypeSave, event.Type)
	assert.Equal(t, info.ID, event.MatchID)
	assert.Equal(t, welcomeA.ClientID, event.FullSync.ClientID)
	assert.Equal(t, uint32(5), event.FullSync.Cycle)
	assert.Equal(t, payload, event.FullSync.Payload)

	// the sender does not get its own full sync back
	require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypePing}))
	assert.NotContains(t, readUntil(t, a, messages.MessageTypePong), messages.MessageTypeFullSync)

	late, _ := r.join(t, info.ID, "late")
	msg = readType(t, late, messages.MessageTypeFullSync)
	assert.Equal(t, welcomeA.ClientID, msg.ClientID)
	assert.Equal(t, uint32(5), msg.Cycle)
	got := cyclestate.New(testRows, testCols)
	applyPayload(t, got, msg.Payload)
	assert.Equal(t, int64(42), got.Counters.Score)
}

func TestServer_JoinMidMatch(t *testing.T) {
	r := newTestRelay(t, nil)
	info := r.createMatch(t)
	ctx := context.Background()

	a, welcomeA := r.join(t, info.ID, "a")
	var prev *cyclestate.Descriptor
	for cycle := 1; cycle <= 3; cycle++ {
		state := scoredState(int64(cycle))
		require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeCycleUpdate, Cycle: uint32(cycle), Payload: updatePayload(t, prev, state)}))
		readType(t, a, messages.MessageTypeCycleUpdate)
		prev = state
	}

	late, _ := r.join(t, info.ID, "late")
	msg := readType(t, late, messages.MessageTypeFullSync)
	assert.Equal(t, welcomeA.ClientID, msg.ClientID)
	assert.Equal(t, uint32(3), msg.Cycle)
	got := cyclestate.New(testRows, testCols)
	applyPayload(t, got, msg.Payload)
	assert.True(t, got.Equal(prev))

	fourth := scoredState(4)
	require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeCycleUpdate, Cycle: 4, Payload: updatePayload(t, prev, fourth)}))
	msg = readType(t, late, messages.MessageTypeCycleUpdate)
	applyPayload(t, got, msg.Payload)
	assert.True(t, got.Equal(fourth))
}

func TestServer_DropsMalformedCycleUpdates(t *testing.T) {
	r := newTestRelay(t, nil)
	info := r.createMatch(t)
	ctx := context.Background()

	a, _ := r.join(t, info.ID, "a")
	delta := updatePayload(t, scoredState(1), scoredState(2))
	require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeCycleUpdate, Payload: delta}))
	require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeFullSync, Payload: delta}))
	require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeCycleUpdate, Payload: []byte{1}}))
	require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypePing}))
	assert.Empty(t, readUntil(t, a, messages.MessageTypePong))

	late, _ := r.join(t, info.ID, "late")
	require.NoError(t, late.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypePing}))
	assert.NotContains(t, readUntil(t, late, messages.MessageTypePong), messages.MessageTypeFullSync)
}

func TestServer_SnapshotInterval(t *testing.T) {
	snapshots := make(chan workers.SnapshotEvent, 64)
	s := NewServer(NewServerOptions{
		Rows:             testRows,
		Cols:             testCols,
		SnapshotChan:     snapshots,
		SnapshotInterval: 2,
	})
	h := httptest.NewServer(s.Handler())
	t.Cleanup(h.Close)
	r := &testRelay{server: s, http: h, snapshots: snapshots}
	info := r.createMatch(t)
	ctx := context.Background()

	a, welcomeA := r.join(t, info.ID, "a")
	var prev *cyclestate.Descriptor
	for cycle := 1; cycle <= 4; cycle++ {
		state := scoredState(int64(cycle))
		require.NoError(t, a.WriteMessage(ctx, &messages.Message{Type: messages.MessageTypeCycleUpdate, Cycle: uint32(cycle), Payload: updatePayload(t, prev, state)}))
		readType(t, a, messages.MessageTypeCycleUpdate)
		prev = state
	}

	for _, cycle := range []uint32{2, 4} {
		event := nextSnapshot(t, r)
		assert.Equal(t, workers.SnapshotEventTypeSave, event.Type)
		assert.Equal(t, welcomeA.ClientID, event.FullSync.ClientID)
		assert.Equal(t, cycle, event.FullSync.Cycle)
		got := cyclestate.New(testRows, testCols)
		applyPayload(t, got, event.FullSync.Payload)
		assert.True(t, got.Equal(scoredState(int64(cycle))))
	}
	select {
	case event := <-snapshots:
		t.Fatalf("unexpected %s event", event.Type)
	default:
	}
}

func TestServer_EndMatch(t *testing.T) {
	r := newTestRelay(t, nil)
	info := r.createMatch(t)

	a, _ := r.join(t, info.ID, "a")
	require.NoError(t, a.Close("bye"))

	select {
	case event := <-r.snapshots:
		assert.Equal(t, workers.SnapshotEventTypeDelete, event.Type)
		assert.Equal(t, info.ID, event.MatchID)
	case <-time.After(2 * time.Second):
		t.Fatal("no delete event")
	}
	_, status := r.getMatch(t, info.ID)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_RejectsMismatchedHello(t *testing.T) {
	r := newTestRelay(t, nil)
	info := r.createMatch(t)
	ctx := context.Background()

	conn, err := network.Dial(ctx, r.wsURL(info.ID))
	require.NoError(t, err)
	defer conn.Close("done")

	hello, err := messages.NewJSONMessage(0, messages.MessageTypeHello, messages.Hello{Name: "big", Rows: testRows + 1, Cols: testCols})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(ctx, hello))

	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = conn.ReadMessage(readCtx)
	assert.Error(t, err)

	got, _ := r.getMatch(t, info.ID)
	assert.Empty(t, got.Roster)
}

func TestServer_RestoresMatch(t *testing.T) {
	ctx := context.Background()
	repository, err := repositories.NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "quantro.db"), "../../migrations/sqlite")
	require.NoError(t, err)
	defer repository.Close(ctx)

	id := uuid.New().String()
	payload := fullSyncPayload(t, 7)
	require.NoError(t, repository.SaveFullSync(ctx, &models.FullSync{MatchID: id, ClientID: 3, Cycle: 9, Payload: payload, Timestamp: 1}))

	r := newTestRelay(t, repository)
	info, status := r.getMatch(t, id)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testRows, info.Rows)
	assert.Equal(t, testCols, info.Cols)

	conn, welcome := r.join(t, id, "back")
	assert.Equal(t, uint32(4), welcome.ClientID)
	msg := readType(t, conn, messages.MessageTypeFullSync)
	assert.Equal(t, uint32(3), msg.ClientID)
	assert.Equal(t, uint32(9), msg.Cycle)

	_, status = r.getMatch(t, "not-a-uuid")
	assert.Equal(t, http.StatusNotFound, status)
}
