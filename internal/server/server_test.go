package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"playlistarr/internal/app"
	"playlistarr/internal/contracts"
	"playlistarr/internal/domain/consts"
	"playlistarr/internal/events"
	"playlistarr/internal/models"

	"github.com/gorilla/websocket"
)

// mockSessionStore is an in-memory contracts.SessionStore for handler tests.
type mockSessionStore struct {
	sessions  map[string]*models.SessionRecord
	items     map[string][]*models.SessionItemRecord
	lastLimit int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{
		sessions: make(map[string]*models.SessionRecord),
		items:    make(map[string][]*models.SessionItemRecord),
	}
}

func (m *mockSessionStore) GetDB() *sql.DB { return nil }

func (m *mockSessionStore) CreateSession(_ context.Context, rec *models.SessionRecord) (int64, error) {
	cp := *rec
	m.sessions[rec.UUID] = &cp
	return int64(len(m.sessions)), nil
}

func (m *mockSessionStore) AddSessionItems(_ context.Context, sessionUUID string, items []models.SessionItemRecord) error {
	for i := range items {
		cp := items[i]
		m.items[sessionUUID] = append(m.items[sessionUUID], &cp)
	}
	return nil
}

func (m *mockSessionStore) UpdateItemStatuses(context.Context, string, []models.StatusUpdate) error {
	return nil
}

func (m *mockSessionStore) FinishSession(_ context.Context, sessionUUID string, status consts.SessionStatus, totals models.SessionTotals, endedAt time.Time) error {
	if rec, ok := m.sessions[sessionUUID]; ok {
		rec.Status = status
		rec.Completed = totals.Completed
		rec.Failed = totals.Failed
		rec.Skipped = totals.Skipped
		rec.EndedAt = endedAt
	}
	return nil
}

func (m *mockSessionStore) GetSession(_ context.Context, sessionUUID string) (*models.SessionRecord, bool, error) {
	rec, ok := m.sessions[sessionUUID]
	return rec, ok, nil
}

func (m *mockSessionStore) GetSessions(_ context.Context, limit int) ([]*models.SessionRecord, error) {
	m.lastLimit = limit
	out := make([]*models.SessionRecord, 0, len(m.sessions))
	for _, rec := range m.sessions {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockSessionStore) GetSessionItems(_ context.Context, sessionUUID string) ([]*models.SessionItemRecord, error) {
	return m.items[sessionUUID], nil
}

// mockStore satisfies contracts.Store around a single session store.
type mockStore struct{ ss *mockSessionStore }

func (m *mockStore) SessionStore() contracts.SessionStore { return m.ss }

// stubLister returns a fixed playlist per source URL.
type stubLister struct{ itemsPerURL int }

func (l *stubLister) ListAll(_ context.Context, sourceURLs []string, _ *models.JobConfig) ([]*models.Playlist, error) {
	playlists := make([]*models.Playlist, 0, len(sourceURLs))
	for _, u := range sourceURLs {
		p := &models.Playlist{SourceURL: u, Title: "playlist"}
		for i := 1; i <= l.itemsPerURL; i++ {
			p.Items = append(p.Items, models.NewPlaylistItem(fmt.Sprintf("item%d", i), u+"/"+fmt.Sprint(i)))
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// stubTransfer completes instantly, or blocks until released when block is set.
type stubTransfer struct {
	block   chan struct{}
	started chan string
}

func (t *stubTransfer) Download(ctx context.Context, item *models.PlaylistItem, job *models.JobConfig, progress func(float64)) (string, error) {
	if t.started != nil {
		t.started <- item.ID
	}
	if t.block != nil {
		select {
		case <-t.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	progress(1.0)
	return job.OutputDir + "/" + item.ID + ".mp4", nil
}

type serverParams struct {
	store    *mockSessionStore
	lister   app.Lister
	transfer app.Transferer
	bus      *events.Bus
}

func testServer(t *testing.T, p serverParams) *Server {
	t.Helper()

	if p.store == nil {
		p.store = newMockSessionStore()
	}
	if p.lister == nil {
		p.lister = &stubLister{itemsPerURL: 1}
	}
	if p.transfer == nil {
		p.transfer = &stubTransfer{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	coord := app.NewCoordinator(p.lister, p.transfer, p.store, p.bus)
	return NewServer(ctx, &mockStore{ss: p.store}, coord, p.bus)
}

func doRequest(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// waitForIdle polls until no session is active anymore.
func waitForIdle(t *testing.T, s *Server) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.coord.ActiveSessions()) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sessions still active after deadline")
}

func TestHandleListRuns(t *testing.T) {
	t.Parallel()

	store := newMockSessionStore()
	store.sessions["run-a"] = &models.SessionRecord{UUID: "run-a", Status: consts.SessionCompleted}
	store.sessions["run-b"] = &models.SessionRecord{UUID: "run-b", Status: consts.SessionFailed}

	s := testServer(t, serverParams{store: store})
	rec := doRequest(t, s, http.MethodGet, "/api/v1/runs?limit=10", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if store.lastLimit != 10 {
		t.Errorf("limit passed to store: got %d, want 10", store.lastLimit)
	}

	var got []*models.SessionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("run count: got %d, want 2", len(got))
	}
}

func TestHandleListRunsDefaultsAndRejectsLimit(t *testing.T) {
	t.Parallel()

	store := newMockSessionStore()
	s := testServer(t, serverParams{store: store})

	if rec := doRequest(t, s, http.MethodGet, "/api/v1/runs", nil); rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if store.lastLimit != defaultHistoryLimit {
		t.Errorf("default limit: got %d, want %d", store.lastLimit, defaultHistoryLimit)
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/v1/runs?limit=abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleGetRun(t *testing.T) {
	t.Parallel()

	store := newMockSessionStore()
	store.sessions["run-a"] = &models.SessionRecord{UUID: "run-a", SourceURL: "https://example.com/pl", Status: consts.SessionCompleted}

	s := testServer(t, serverParams{store: store})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/runs/run-a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var got models.SessionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if got.UUID != "run-a" || got.SourceURL != "https://example.com/pl" {
		t.Errorf("unexpected record: %+v", got)
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/v1/runs/ghost", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing run status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGetRunItems(t *testing.T) {
	t.Parallel()

	store := newMockSessionStore()
	store.sessions["run-a"] = &models.SessionRecord{UUID: "run-a"}
	store.items["run-a"] = []*models.SessionItemRecord{
		{SessionUUID: "run-a", ItemID: "v1", Status: consts.DLStatusCompleted},
		{SessionUUID: "run-a", ItemID: "v2", Status: consts.DLStatusFailed},
	}

	s := testServer(t, serverParams{store: store})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/runs/run-a/items", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var got []*models.SessionItemRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("item count: got %d, want 2", len(got))
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/v1/runs/ghost/items", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing run status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleStartRun(t *testing.T) {
	t.Parallel()

	store := newMockSessionStore()
	s := testServer(t, serverParams{store: store, lister: &stubLister{itemsPerURL: 2}})

	body := fmt.Sprintf(`{"urls": ["https://example.com/pl"], "job": {"output_dir": %q, "archive_enabled": false}}`, t.TempDir())
	rec := doRequest(t, s, http.MethodPost, "/api/v1/runs", []byte(body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var got models.SessionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if got.UUID == "" {
		t.Error("response record has no UUID")
	}
	if got.SourceURL != "https://example.com/pl" {
		t.Errorf("source url: got %q", got.SourceURL)
	}

	waitForIdle(t, s)

	final, ok, _ := store.GetSession(context.Background(), got.UUID)
	if !ok {
		t.Fatal("run missing from history")
	}
	if final.Status != consts.SessionCompleted || final.Completed != 2 {
		t.Errorf("final record: status %s, completed %d, want %s / 2", final.Status, final.Completed, consts.SessionCompleted)
	}
}

func TestHandleStartRunRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed body", body: `{"urls": [`},
		{name: "no urls", body: `{"urls": [], "job": {}}`},
		{name: "bad preset", body: `{"urls": ["https://example.com/pl"], "job": {"preset": "4k-ultra"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := testServer(t, serverParams{})
			rec := doRequest(t, s, http.MethodPost, "/api/v1/runs", []byte(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestHandleCancelRun(t *testing.T) {
	t.Parallel()

	transfer := &stubTransfer{
		block:   make(chan struct{}),
		started: make(chan string, 4),
	}
	s := testServer(t, serverParams{transfer: transfer})

	body := fmt.Sprintf(`{"urls": ["https://example.com/pl"], "job": {"output_dir": %q, "archive_enabled": false}}`, t.TempDir())
	rec := doRequest(t, s, http.MethodPost, "/api/v1/runs", []byte(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status: got %d (%s)", rec.Code, rec.Body.String())
	}

	var started models.SessionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	<-transfer.started

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/runs/"+started.UUID, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("cancel status: got %d, want %d (%s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	waitForIdle(t, s)

	if rec := doRequest(t, s, http.MethodDelete, "/api/v1/runs/"+started.UUID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("cancel finished run status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestEventSocketStreamsUpdates(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	s := testServer(t, serverParams{bus: bus})

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	// The handler subscribes after the handshake, so keep publishing until
	// the first frame proves the subscription is active.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		update := models.StatusUpdate{
			SessionID: "run-a",
			ItemID:    "v1",
			Status:    consts.DLStatusDownloading,
			Progress:  0.5,
		}
		for {
			bus.PublishItemStatus(update)
			select {
			case <-stop:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev wsEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("failed to read websocket frame: %v", err)
	}
	if ev.Type != "item" || ev.Item == nil {
		t.Fatalf("unexpected frame: %+v", ev)
	}
	if ev.Item.ItemID != "v1" || ev.Item.Progress != 0.5 {
		t.Errorf("unexpected item payload: %+v", ev.Item)
	}

	bus.PublishRunState(models.SessionRecord{UUID: "run-a", Status: consts.SessionCompleted})

	// Item frames from the publisher goroutine may still be in flight ahead
	// of the run frame.
	for i := 0; i < 100; i++ {
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("failed to read run frame: %v", err)
		}
		if ev.Type == "run" {
			break
		}
	}
	if ev.Type != "run" || ev.Run == nil || ev.Run.UUID != "run-a" {
		t.Fatalf("unexpected run frame: %+v", ev)
	}
}
