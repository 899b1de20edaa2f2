package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"legacyvault/internal/common"
	"legacyvault/internal/dbx"
	"legacyvault/internal/logging"
	"legacyvault/internal/server/auth"
	"legacyvault/internal/server/blob"
	"legacyvault/internal/server/config"
	"legacyvault/internal/server/models"
	"legacyvault/internal/server/repositories/entries"
	"legacyvault/internal/server/repositories/refreshtokens"
	"legacyvault/internal/server/repositories/repomanager"
	"legacyvault/internal/server/repositories/users"
	"legacyvault/internal/server/services"
)

const testSecret = "test-secret"

// -------- in-memory repositories --------

type memEntriesRepo struct {
	nextID int
	store  map[string]*models.Entry
}

func (f *memEntriesRepo) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	f.nextID++
	entry.ID = fmt.Sprintf("e%d", f.nextID)
	c := *entry
	f.store[entry.ID] = &c
	return entry, nil
}

func (f *memEntriesRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Entry, error) {
	e, ok := f.store[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *memEntriesRepo) SelectByUserAndCategory(ctx context.Context, userID string, category models.Category) ([]*models.Entry, error) {
	var result []*models.Entry
	for _, e := range f.store {
		if e.UserID == userID && e.Category == category {
			c := *e
			result = append(result, &c)
		}
	}
	return result, nil
}

func (f *memEntriesRepo) Update(ctx context.Context, entry *models.Entry) error {
	e, ok := f.store[entry.ID]
	if !ok || e.UserID != entry.UserID {
		return common.ErrorNotFound
	}
	c := *entry
	f.store[entry.ID] = &c
	return nil
}

func (f *memEntriesRepo) Delete(ctx context.Context, id, userID string) error {
	e, ok := f.store[id]
	if !ok || e.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.store, id)
	return nil
}

type memUsersRepo struct {
	nextID  int
	byEmail map[string]*models.User
}

func (f *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	user.ID = fmt.Sprintf("u%d", f.nextID)
	user.CreatedAt = time.Now().UTC()
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memRefreshTokensRepo struct {
	tokens map[string]models.RefreshToken
}

func (f *memRefreshTokensRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	f.tokens[token] = models.RefreshToken{UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (f *memRefreshTokensRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (f *memRefreshTokensRepo) Delete(ctx context.Context, token string) error {
	if _, ok := f.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(f.tokens, token)
	return nil
}

type memRepoManager struct {
	repomanager.RepositoryManager
	e *memEntriesRepo
	u *memUsersRepo
	r *memRefreshTokensRepo
}

func (m *memRepoManager) Entries(db dbx.DBTX) entries.Repository { return m.e }
func (m *memRepoManager) Users(db dbx.DBTX) users.Repository    { return m.u }
func (m *memRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.r
}

// -------- test server --------

type testEnv struct {
	srv     *httptest.Server
	entries *memEntriesRepo
	blobs   *blob.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectCommit()
	t.Cleanup(func() { db.Close() })

	rm := &memRepoManager{
		e: &memEntriesRepo{store: make(map[string]*models.Entry)},
		u: &memUsersRepo{byEmail: make(map[string]*models.User)},
		r: &memRefreshTokensRepo{tokens: make(map[string]models.RefreshToken)},
	}
	blobs := blob.NewMemoryStore()

	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	server := NewServer("", logger, services.NewUserService(db, rm, cfg), services.NewEntryService(db, rm, blobs), testSecret)

	srv := httptest.NewServer(server.routes())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, entries: rm.e, blobs: blobs}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return e.do(t, method, path, token, bytes.NewReader(b), "application/json")
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("writing field %s: %v", k, err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := fw.Write(fileData); err != nil {
			t.Fatalf("writing file data: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func registerAndLogin(t *testing.T, env *testEnv, email string) (string, *models.User) {
	t.Helper()
	resp := env.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{"email": email, "password": "secret99"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	user := decodeBody[*models.User](t, resp)

	resp = env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "secret99"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	pair := decodeBody[services.TokenPair](t, resp)
	return pair.AccessToken, user
}

// -------- tests --------

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/health", "", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{"email": "bad", "password": "secret99"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid email: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{"email": "a@b.c", "password": "short"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	registerAndLogin(t, env, "alice@example.com")

	resp := env.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{"email": "alice@example.com", "password": "secret99"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	registerAndLogin(t, env, "alice@example.com")

	resp := env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/me", "", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/me", "garbage", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAuthExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	expired, err := auth.GenerateToken("u1", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	resp := env.do(t, http.MethodGet, "/api/me", expired, nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] != "token expired" {
		t.Fatalf("expired token must be distinguishable, got %v", body)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token, user := registerAndLogin(t, env, "alice@example.com")

	resp := env.do(t, http.MethodGet, "/api/me", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	got := decodeBody[*models.User](t, resp)
	if got.ID != user.ID || got.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)
	registerAndLogin(t, env, "alice@example.com")

	resp := env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com", "password": "secret99"})
	pair := decodeBody[services.TokenPair](t, resp)

	resp = env.doJSON(t, http.MethodPost, "/api/refresh", "", map[string]string{"refreshToken": pair.RefreshToken})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	next := decodeBody[services.TokenPair](t, resp)
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token must be rotated")
	}

	resp = env.doJSON(t, http.MethodPost, "/api/refresh", "", map[string]string{"refreshToken": pair.RefreshToken})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked token reuse: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateEntry(t *testing.T) {
	env := newTestEnv(t)
	token, user := registerAndLogin(t, env, "alice@example.com")

	body, ct := multipartBody(t, map[string]string{
		"category":    "legal",
		"title":       "Will",
		"description": "Draft",
	}, "will.pdf", []byte("pdf-bytes"))

	resp := env.do(t, http.MethodPost, "/api/entries", token, body, ct)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}
	entry := decodeBody[*models.Entry](t, resp)
	if entry.UserID != user.ID || entry.Title != "Will" || entry.Category != models.CategoryLegal {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if !strings.HasPrefix(entry.FileURL, "mem://entries/"+user.ID+"/") {
		t.Fatalf("unexpected file url: %q", entry.FileURL)
	}
	if data, ok := env.blobs.Get(entry.FileURL); !ok || string(data) != "pdf-bytes" {
		t.Fatalf("blob not stored: ok=%v", ok)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := registerAndLogin(t, env, "alice@example.com")

	body, ct := multipartBody(t, map[string]string{"category": "finances", "title": "x"}, "", nil)
	resp := env.do(t, http.MethodPost, "/api/entries", token, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid category: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	body, ct = multipartBody(t, map[string]string{"category": "legal", "title": "  "}, "", nil)
	resp = env.do(t, http.MethodPost, "/api/entries", token, body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank title: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListEntries(t *testing.T) {
	env := newTestEnv(t)
	token, _ := registerAndLogin(t, env, "alice@example.com")

	resp := env.do(t, http.MethodGet, "/api/entries?category=legal", token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("empty list must serialize as [], got %q", raw)
	}

	body, ct := multipartBody(t, map[string]string{"category": "legal", "title": "Will"}, "", nil)
	resp = env.do(t, http.MethodPost, "/api/entries", token, body, ct)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/entries?category=legal", token, nil, "")
	list := decodeBody[[]*models.Entry](t, resp)
	if len(list) != 1 || list[0].Title != "Will" {
		t.Fatalf("unexpected list: %+v", list)
	}

	resp = env.do(t, http.MethodGet, "/api/entries?category=nope", token, nil, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid category: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateEntry(t *testing.T) {
	env := newTestEnv(t)
	token, _ := registerAndLogin(t, env, "alice@example.com")

	body, ct := multipartBody(t, map[string]string{"category": "legal", "title": "Will", "description": "Draft"}, "", nil)
	resp := env.do(t, http.MethodPost, "/api/entries", token, body, ct)
	created := decodeBody[*models.Entry](t, resp)

	body, ct = multipartBody(t, map[string]string{"title": "Final will"}, "", nil)
	resp = env.do(t, http.MethodPut, "/api/entries/"+created.ID, token, body, ct)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	updated := decodeBody[*models.Entry](t, resp)
	if updated.Title != "Final will" {
		t.Fatalf("title not applied: %q", updated.Title)
	}
	if updated.Description != "Draft" {
		t.Fatalf("omitted field must be untouched: %q", updated.Description)
	}
}

func TestUpdateEntryForeignOwner(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := registerAndLogin(t, env, "alice@example.com")
	bobToken, _ := registerAndLogin(t, env, "bob@example.com")

	body, ct := multipartBody(t, map[string]string{"category": "legal", "title": "Will"}, "", nil)
	resp := env.do(t, http.MethodPost, "/api/entries", aliceToken, body, ct)
	created := decodeBody[*models.Entry](t, resp)

	body, ct = multipartBody(t, map[string]string{"title": "Stolen"}, "", nil)
	resp = env.do(t, http.MethodPut, "/api/entries/"+created.ID, bobToken, body, ct)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	errBody := decodeBody[map[string]string](t, resp)
	if errBody["error"] != common.ErrEntryNotFoundOrUnauthorized.Error() {
		t.Fatalf("missing and foreign must be indistinguishable, got %v", errBody)
	}

	if env.entries.store[created.ID].Title != "Will" {
		t.Fatal("entry mutated by a foreign update")
	}
}

func TestDeleteEntry(t *testing.T) {
	env := newTestEnv(t)
	token, _ := registerAndLogin(t, env, "alice@example.com")

	body, ct := multipartBody(t, map[string]string{"category": "digital", "title": "Accounts"}, "list.txt", []byte("x"))
	resp := env.do(t, http.MethodPost, "/api/entries", token, body, ct)
	created := decodeBody[*models.Entry](t, resp)

	resp = env.do(t, http.MethodDelete, "/api/entries/"+created.ID, token, nil, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
	if _, ok := env.blobs.Get(created.FileURL); ok {
		t.Fatal("blob must be deleted with the entry")
	}

	resp = env.do(t, http.MethodDelete, "/api/entries/"+created.ID, token, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
