// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"autoblog/internal/auth"
	"autoblog/internal/models"
	"autoblog/internal/recovery"
	"autoblog/internal/secret"
	"autoblog/internal/session"
	"autoblog/internal/store"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var testPool = []string{
	"amber falcon", "quiet river", "copper lantern", "velvet storm",
	"silent orchard", "iron meadow", "paper comet", "hollow pine",
	"crimson tide", "glass harbor", "distant bell", "woven light",
}

// adminStore is an in-memory auth.CredentialStore.
type adminStore struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func (m *adminStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.admins), nil
}

func (m *adminStore) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[username]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *adminStore) Create(_ context.Context, username, hash string, phrases []secret.Sealed) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(username, hash, phrases)
}

func (m *adminStore) CreateFirst(_ context.Context, username, hash string, phrases []secret.Sealed) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.admins) > 0 {
		return nil, store.ErrAdminsExist
	}
	return m.insert(username, hash, phrases)
}

func (m *adminStore) insert(username, hash string, phrases []secret.Sealed) (*models.Admin, error) {
	if _, ok := m.admins[username]; ok {
		return nil, store.ErrUsernameTaken
	}
	a := &models.Admin{ID: uuid.New(), Username: username, PasswordHash: hash, RecoveryPhrases: phrases}
	m.admins[username] = a
	cp := *a
	return &cp, nil
}

func (m *adminStore) byID(id uuid.UUID) *models.Admin {
	for _, a := range m.admins {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (m *adminStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.byID(id)
	if a == nil {
		return store.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (m *adminStore) RotateCredentials(_ context.Context, id uuid.UUID, hash string, prev, next []secret.Sealed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.byID(id)
	if a == nil || !slices.Equal(a.RecoveryPhrases, prev) {
		return store.ErrNotFound
	}
	a.PasswordHash = hash
	a.RecoveryPhrases = next
	return nil
}

func (m *adminStore) DeleteUnlessLast(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.admins) <= 1 {
		return store.ErrLastAdmin
	}
	a := m.byID(id)
	if a == nil {
		return store.ErrNotFound
	}
	delete(m.admins, a.Username)
	return nil
}

func newAuthHandler(t *testing.T) (*Auth, *session.Manager) {
	t.Helper()
	codec, err := secret.NewCodec(testKey)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	gen, err := recovery.NewGenerator(testPool, codec)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	svc, err := auth.NewService(&adminStore{admins: map[string]*models.Admin{}}, gen, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	sessions := session.NewManager("handlers-test-secret", time.Hour, false, session.NewMemoryRevocations())
	return NewAuth(svc, sessions), sessions
}

// scriptedGen returns canned completions in order.
type scriptedGen struct {
	mu      sync.Mutex
	replies []string
	err     error
}

func (g *scriptedGen) Generate(ctx context.Context, system, user string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	out := g.replies[0]
	g.replies = g.replies[1:]
	return out, nil
}

// memSettings is an in-memory SettingsStore.
type memSettings struct {
	mu sync.Mutex
	s  models.Settings
}

func (m *memSettings) Get(context.Context) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.s
	return &cp, nil
}

func (m *memSettings) Update(_ context.Context, p models.SettingsPatch) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&m.s.SiteName, p.SiteName)
	set(&m.s.SiteURL, p.SiteURL)
	set(&m.s.LogoURL, p.LogoURL)
	set(&m.s.AuthorName, p.AuthorName)
	set(&m.s.OrganizationName, p.OrganizationName)
	set(&m.s.GA4ID, p.GA4ID)
	set(&m.s.AdsenseID, p.AdsenseID)
	set(&m.s.BingVerificationID, p.BingVerificationID)
	set(&m.s.CustomHeadCode, p.CustomHeadCode)
	cp := m.s
	return &cp, nil
}

func testSettings() *memSettings {
	return &memSettings{s: models.Settings{SiteName: "Green Wheels", SiteURL: "https://blog.example.com"}}
}

// postStore is an in-memory posts.Store.
type postStore struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.Post
}

func newPostStore() *postStore {
	return &postStore{posts: map[uuid.UUID]*models.Post{}}
}

func (m *postStore) SlugsLike(_ context.Context, base string, excludeID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id, p := range m.posts {
		if id != excludeID && (p.Slug == base || strings.HasPrefix(p.Slug, base+"-")) {
			out = append(out, p.Slug)
		}
	}
	return out, nil
}

func (m *postStore) Create(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *postStore) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *postStore) List(_ context.Context, limit, offset int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, p := range m.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (m *postStore) Update(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *postStore) UpdateContent(_ context.Context, id uuid.UUID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Content = content
	return nil
}

func (m *postStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// do sends a JSON request to h and returns the recorder.
func do(t *testing.T, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// decode unmarshals the response body into a map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if got := decode(t, rec)["error"]; got != msg {
		t.Errorf("error: got %q, want %q", got, msg)
	}
}
