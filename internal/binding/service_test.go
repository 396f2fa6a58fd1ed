package binding

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tapvault/backend/internal/credential"
	"github.com/tapvault/backend/internal/models"
	"github.com/tapvault/backend/internal/notify"
	"github.com/tapvault/backend/internal/polling"
)

// ---------------------------------------------------------------------------
// In-memory store. noopTx satisfies pgx.Tx; only Commit/Rollback are called.
// ---------------------------------------------------------------------------

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

type mockStore struct {
	mu       sync.Mutex
	binds    []*models.AccountBind
	profiles map[string]uuid.UUID                // handle -> profile id
	byUser   map[uuid.UUID][]*models.AccountBind // profile id -> binds keyed by user_id
}

func newMockStore() *mockStore {
	return &mockStore{
		profiles: make(map[string]uuid.UUID),
		byUser:   make(map[uuid.UUID][]*models.AccountBind),
	}
}

func (m *mockStore) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

func (m *mockStore) InsertTx(_ context.Context, _ pgx.Tx, b *models.AccountBind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.Status = models.BindPending
	b.Step = models.BindStepCredentials
	b.DetailsSubmitted = false
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.binds = append(m.binds, &cp)
	return nil
}

func (m *mockStore) UpdateDetailsTx(_ context.Context, _ pgx.Tx, id uuid.UUID, extraInfo json.RawMessage) (*models.AccountBind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.find(id)
	if b == nil {
		return nil, ErrBindNotFound
	}
	if extraInfo != nil {
		b.ExtraInfo = extraInfo
	}
	if b.Step < models.BindStepDetails {
		b.Step = models.BindStepDetails
	}
	b.DetailsSubmitted = true
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*models.AccountBind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.find(id)
	if b == nil {
		return nil, ErrBindNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockStore) LatestByHandle(_ context.Context, handle string) (*models.AccountBind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return latest(m.binds, func(b *models.AccountBind) bool { return b.UserHandle == handle })
}

func (m *mockStore) LatestByProfileID(_ context.Context, profileID uuid.UUID) (*models.AccountBind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return latest(m.byUser[profileID], func(*models.AccountBind) bool { return true })
}

func (m *mockStore) ProfileIDByHandle(_ context.Context, handle string) (uuid.UUID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.profiles[handle]
	return id, ok, nil
}

func (m *mockStore) find(id uuid.UUID) *models.AccountBind {
	for _, b := range m.binds {
		if b.ID == id {
			return b
		}
	}
	for _, list := range m.byUser {
		for _, b := range list {
			if b.ID == id {
				return b
			}
		}
	}
	return nil
}

func latest(list []*models.AccountBind, match func(*models.AccountBind) bool) (*models.AccountBind, error) {
	var best *models.AccountBind
	for _, b := range list {
		if !match(b) {
			continue
		}
		if best == nil || b.CreatedAt.After(best.CreatedAt) || b.CreatedAt.Equal(best.CreatedAt) {
			best = b
		}
	}
	if best == nil {
		return nil, ErrBindNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockStore) setStatus(id uuid.UUID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.find(id).Status = status
}

func noEnqueue(context.Context, pgx.Tx, notify.RecordWaitEventArgs) error { return nil }

func newTestService(store *mockStore) Service {
	return NewService(store, credential.PlaintextPolicy{}, noEnqueue, nil)
}

func fastConfig() polling.Config {
	return polling.Config{Interval: 5 * time.Millisecond, AdvisoryAfter: time.Hour, Timeout: 50 * time.Millisecond}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCreateValidatesFields(t *testing.T) {
	svc := newTestService(newMockStore())
	ctx := context.Background()
	cases := []struct{ handle, username, secret string }{
		{"", "user", "pw"},
		{"alice", "", "pw"},
		{"alice", "user", ""},
		{"  ", "user", "pw"},
	}
	for _, c := range cases {
		if _, err := svc.Create(ctx, c.handle, c.username, c.secret); err != ErrMissingFields {
			t.Errorf("Create(%q,%q,%q): got %v, want ErrMissingFields", c.handle, c.username, c.secret, err)
		}
	}
}

func TestCreateAlwaysInsertsFreshRow(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	ctx := context.Background()

	id1, err := svc.Create(ctx, "alice", "alice_ig", "pw")
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	id2, err := svc.Create(ctx, "alice", "alice_ig", "pw")
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if id1 == id2 {
		t.Error("each attempt must get its own row")
	}
	if len(store.binds) != 2 {
		t.Errorf("rows: got %d, want 2", len(store.binds))
	}
}

func TestCreateSealsCredential(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, credential.BcryptPolicy{}, noEnqueue, nil)
	if _, err := svc.Create(context.Background(), "alice", "alice_ig", "pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := store.binds[0].CredentialMaterial; got == "pw" {
		t.Error("raw secret must not reach storage under the hashing policy")
	}
}

func TestSubmitDetailsTransition(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	ctx := context.Background()

	id, err := svc.Create(ctx, "carol", "carol_ig", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Admin already moved status; submitting details must not touch it.
	store.setStatus(id, models.BindApproved1)

	updated, err := svc.SubmitDetails(ctx, id, json.RawMessage(`{"code":"123456"}`))
	if err != nil {
		t.Fatalf("SubmitDetails: %v", err)
	}
	if updated.Step != models.BindStepDetails {
		t.Errorf("step: got %d, want 2", updated.Step)
	}
	if !updated.DetailsSubmitted {
		t.Error("details_submitted must flip to true")
	}
	if updated.Status != models.BindApproved1 {
		t.Errorf("status: got %q, must be untouched", updated.Status)
	}

	// The flip is irreversible; a second call with no payload changes nothing.
	again, err := svc.SubmitDetails(ctx, id, nil)
	if err != nil {
		t.Fatalf("second SubmitDetails: %v", err)
	}
	if again.Step != models.BindStepDetails || !again.DetailsSubmitted {
		t.Errorf("second call must preserve step=2/details_submitted, got %+v", again)
	}
	if string(again.ExtraInfo) != `{"code":"123456"}` {
		t.Errorf("nil payload must keep the stored extra_info, got %s", again.ExtraInfo)
	}
}

func TestSubmitDetailsUnknownID(t *testing.T) {
	svc := newTestService(newMockStore())
	if _, err := svc.SubmitDetails(context.Background(), uuid.New(), nil); err != ErrBindNotFound {
		t.Errorf("got %v, want ErrBindNotFound", err)
	}
}

func TestIsBoundMatrix(t *testing.T) {
	cases := []struct {
		name   string
		status string
		step   int
		want   bool
	}{
		{"pending step1", models.BindPending, 1, false},
		{"pending step2", models.BindPending, 2, false},
		{"rejected step2", models.BindRejected, 2, false},
		{"approved1 step1", models.BindApproved1, 1, false},
		{"approved1 step2", models.BindApproved1, 2, true},
		{"approved step1", models.BindApproved, 1, true},
		{"approved step2", models.BindApproved, 2, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := newMockStore()
			svc := newTestService(store)
			id, err := svc.Create(context.Background(), "erin", "erin_ig", "pw")
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			store.mu.Lock()
			b := store.find(id)
			b.Status = c.status
			b.Step = c.step
			store.mu.Unlock()

			got, err := svc.IsBound(context.Background(), "erin")
			if err != nil {
				t.Fatalf("IsBound: %v", err)
			}
			if got != c.want {
				t.Errorf("IsBound(%s/step%d): got %v, want %v", c.status, c.step, got, c.want)
			}
		})
	}
}

func TestIsBoundUsesMostRecentRow(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	ctx := context.Background()

	old, _ := svc.Create(ctx, "frank", "frank_ig", "pw")
	store.setStatus(old, models.BindApproved)
	// Separate creation times so ordering is unambiguous.
	store.mu.Lock()
	store.find(old).CreatedAt = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	fresh, _ := svc.Create(ctx, "frank", "frank_ig", "pw2")
	store.setStatus(fresh, models.BindRejected)

	got, err := svc.IsBound(ctx, "frank")
	if err != nil {
		t.Fatalf("IsBound: %v", err)
	}
	if got {
		t.Error("latest row is rejected; an older approval must not win")
	}
}

func TestIsBoundFallsBackToProfileID(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	profileID := uuid.New()
	store.profiles["grace"] = profileID
	store.byUser[profileID] = []*models.AccountBind{{
		ID:        uuid.New(),
		Status:    models.BindApproved,
		Step:      1,
		CreatedAt: time.Now(),
	}}

	got, err := svc.IsBound(context.Background(), "grace")
	if err != nil {
		t.Fatalf("IsBound: %v", err)
	}
	if !got {
		t.Error("rows keyed by profile id must be found via the fallback")
	}
}

func TestAwaitDecisionTerminalStates(t *testing.T) {
	for _, c := range []struct {
		status string
		want   WaitStatus
	}{
		{models.BindRejected, WaitRejected},
		{models.BindApproved1, WaitApproved1},
		{models.BindApproved, WaitUnlocked},
	} {
		store := newMockStore()
		svc := newTestService(store)
		id, _ := svc.Create(context.Background(), "henry", "henry_ig", "pw")

		go func() {
			time.Sleep(10 * time.Millisecond)
			store.setStatus(id, c.status)
		}()

		res, err := svc.AwaitDecision(context.Background(), id, fastConfig(), nil)
		if err != nil {
			t.Fatalf("AwaitDecision(%s): %v", c.status, err)
		}
		if res.Status != c.want {
			t.Errorf("AwaitDecision(%s): got %q, want %q", c.status, res.Status, c.want)
		}
	}
}

func TestAwaitDecisionTimesOutDistinctFromRejected(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	id, _ := svc.Create(context.Background(), "ivy", "ivy_ig", "pw")

	res, err := svc.AwaitDecision(context.Background(), id, fastConfig(), nil)
	if err != nil {
		t.Fatalf("AwaitDecision: %v", err)
	}
	if res.Status != WaitTimedOut {
		t.Errorf("got %q, want %q", res.Status, WaitTimedOut)
	}
	if res.Status == WaitRejected {
		t.Error("a timed-out wait must never read as a rejection")
	}
}

func TestAwaitUnlockIgnoresApproved1Alone(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	id, _ := svc.Create(context.Background(), "judy", "judy_ig", "pw")
	store.setStatus(id, models.BindApproved1)

	res, err := svc.AwaitUnlock(context.Background(), id, fastConfig(), nil)
	if err != nil {
		t.Fatalf("AwaitUnlock: %v", err)
	}
	if res.Status != WaitTimedOut {
		t.Errorf("approved1 alone must not end the unlock wait, got %q", res.Status)
	}
}

func TestAwaitUnlockResolves(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	ctx := context.Background()
	id, _ := svc.Create(ctx, "kate", "kate_ig", "pw")
	if _, err := svc.SubmitDetails(ctx, id, nil); err != nil {
		t.Fatalf("SubmitDetails: %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		store.setStatus(id, models.BindApproved)
	}()

	res, err := svc.AwaitUnlock(ctx, id, fastConfig(), nil)
	if err != nil {
		t.Fatalf("AwaitUnlock: %v", err)
	}
	if res.Status != WaitUnlocked {
		t.Errorf("got %q, want %q", res.Status, WaitUnlocked)
	}
}
