package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rainwatch-server/internal/modules/auth/password"
	"rainwatch-server/internal/modules/auth/repository"
	"rainwatch-server/internal/modules/auth/session"
	"rainwatch-server/internal/modules/auth/token"
	"rainwatch-server/internal/modules/auth/types"
	"rainwatch-server/internal/modules/auth/views"
)

type mockUsers struct {
	users     map[string]*types.User
	createErr error
	lookupErr error
	created   []string
}

func (m *mockUsers) GetByUsername(username string) (*types.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.users[username], nil
}

func (m *mockUsers) Create(username, passwordHash string) (*types.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, username)
	return &types.User{ID: int64(len(m.created)), Username: username, PasswordHash: passwordHash}, nil
}

func newTestController(t *testing.T, users *mockUsers) *authControllerImpl {
	t.Helper()
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	hasher := password.NewHasher(bcrypt.MinCost)
	tokens := token.NewService([]byte("controller-test-secret-012345678"), 30*time.Minute)
	return NewAuthController(users, hasher, tokens, false).(*authControllerImpl)
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleLogin_success(t *testing.T) {
	hasher := password.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	users := &mockUsers{users: map[string]*types.User{
		"alice": {ID: 1, Username: "alice", PasswordHash: hash},
	}}
	ctrl := newTestController(t, users)

	rec := httptest.NewRecorder()
	ctrl.handleLogin(rec, postForm("/login", url.Values{"username": {"alice"}, "password": {"secret"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q; want /", loc)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName {
		t.Fatalf("expected one %s cookie, got %v", session.CookieName, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie not HttpOnly")
	}
	if cookies[0].Value == "" {
		t.Error("session cookie empty")
	}
}

func TestHandleLogin_badCredentials(t *testing.T) {
	hasher := password.NewHasher(bcrypt.MinCost)
	hash, _ := hasher.Hash("secret")
	users := &mockUsers{users: map[string]*types.User{
		"alice": {ID: 1, Username: "alice", PasswordHash: hash},
	}}
	ctrl := newTestController(t, users)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "nobody", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctrl.handleLogin(rec, postForm("/login", url.Values{"username": {tt.username}, "password": {tt.password}}))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
			}
			if !strings.Contains(rec.Body.String(), "Invalid username or password") {
				t.Errorf("body does not carry the login error message")
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("no cookie should be set on failed login")
			}
		})
	}
}

func TestHandleLogin_malformedStoredHash(t *testing.T) {
	// A corrupt digest behaves exactly like a wrong password.
	users := &mockUsers{users: map[string]*types.User{
		"alice": {ID: 1, Username: "alice", PasswordHash: "not-a-hash"},
	}}
	ctrl := newTestController(t, users)

	rec := httptest.NewRecorder()
	ctrl.handleLogin(rec, postForm("/login", url.Values{"username": {"alice"}, "password": {"secret"}}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "Invalid username or password") {
		t.Error("malformed hash leaked a different error message")
	}
}

func TestHandleSignup_success(t *testing.T) {
	users := &mockUsers{users: map[string]*types.User{}}
	ctrl := newTestController(t, users)

	rec := httptest.NewRecorder()
	ctrl.handleSignup(rec, postForm("/signup", url.Values{"username": {"bob"}, "password": {"pw"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q; want /login", loc)
	}
	if len(users.created) != 1 || users.created[0] != "bob" {
		t.Errorf("created = %v; want [bob]", users.created)
	}
}

func TestHandleSignup_duplicate(t *testing.T) {
	users := &mockUsers{createErr: repository.ErrDuplicateUsername}
	ctrl := newTestController(t, users)

	rec := httptest.NewRecorder()
	ctrl.handleSignup(rec, postForm("/signup", url.Values{"username": {"bob"}, "password": {"pw"}}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "Username already registered") {
		t.Error("body does not carry the duplicate-username message")
	}
}

func TestHandleSignup_missingFields(t *testing.T) {
	ctrl := newTestController(t, &mockUsers{})

	for _, form := range []url.Values{
		{"username": {""}, "password": {"pw"}},
		{"username": {"bob"}, "password": {""}},
	} {
		rec := httptest.NewRecorder()
		ctrl.handleSignup(rec, postForm("/signup", form))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want %d for form %v", rec.Code, http.StatusBadRequest, form)
		}
	}
}

func TestHandleSignup_storageError(t *testing.T) {
	users := &mockUsers{createErr: errors.New("disk full")}
	ctrl := newTestController(t, users)

	rec := httptest.NewRecorder()
	ctrl.handleSignup(rec, postForm("/signup", url.Values{"username": {"bob"}, "password": {"pw"}}))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestHandleLogout(t *testing.T) {
	ctrl := newTestController(t, &mockUsers{})

	rec := httptest.NewRecorder()
	ctrl.handleLogout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q; want /", loc)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring %s cookie, got %v", session.CookieName, cookies)
	}
}

func TestHandleLoginPage(t *testing.T) {
	ctrl := newTestController(t, &mockUsers{})

	rec := httptest.NewRecorder()
	ctrl.handleLoginPage(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<form") {
		t.Error("login page does not contain a form")
	}
}
