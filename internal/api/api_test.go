package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"classifieds_api/internal/auth"
	"classifieds_api/internal/db"
	"classifieds_api/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testTTL = 48 * time.Hour

// newTestEnv builds a router backed by a per-test in-memory database.
// The shared-cache DSN is keyed by test name so gorm's connection pool
// sees a single database.
func newTestEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRouter(gdb, testTTL), gdb
}

// do runs one request against the router
func do(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decode unmarshals a JSON object response
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

// register creates a user through the endpoint and returns its id
func register(t *testing.T, r *gin.Engine, name, pw string) uint {
	t.Helper()
	w := do(t, r, http.MethodPost, "/user", "", `{"name":"`+name+`","password":"`+pw+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", name, w.Code, w.Body.String())
	}
	return uint(decode(t, w)["id"].(float64))
}

// login authenticates through the endpoint and returns the token
func login(t *testing.T, r *gin.Engine, name, pw string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/login", "", `{"name":"`+name+`","password":"`+pw+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", name, w.Code, w.Body.String())
	}
	return decode(t, w)["token"].(string)
}

// seedAdmin inserts an admin user directly into storage
func seedAdmin(t *testing.T, gdb *gorm.DB, name, pw string) domain.User {
	t.Helper()
	hash, err := auth.HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := domain.User{Name: name, Password: hash, Role: domain.RoleAdmin}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return u
}

func fmtUint(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	r, _ := newTestEnv(t)

	aliceID := register(t, r, "alice", "pw1")
	if aliceID == 0 {
		t.Fatal("register returned zero id")
	}

	token := login(t, r, "alice", "pw1")
	if _, err := uuid.Parse(token); err != nil {
		t.Errorf("login token %q is not a UUID: %v", token, err)
	}

	// Wrong password and unknown name both come back identical
	wrongPw := do(t, r, http.MethodPost, "/login", "", `{"name":"alice","password":"wrong"}`)
	unknown := do(t, r, http.MethodPost, "/login", "", `{"name":"nobody","password":"pw1"}`)
	if wrongPw.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", wrongPw.Code)
	}
	if unknown.Code != http.StatusUnauthorized {
		t.Errorf("unknown name: status %d, want 401", unknown.Code)
	}
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Errorf("login failures differ: %q vs %q", wrongPw.Body.String(), unknown.Body.String())
	}

	// Fetching a user requires no token and never exposes the hash
	w := do(t, r, http.MethodGet, "/user/"+fmtUint(aliceID), "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get user: status %d", w.Code)
	}
	m := decode(t, w)
	if m["name"] != "alice" || m["role"] != "user" {
		t.Errorf("get user = %v, want name=alice role=user", m)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("user response leaks password field: %s", w.Body.String())
	}
}

func TestRegister_Conflict(t *testing.T) {
	r, gdb := newTestEnv(t)

	register(t, r, "alice", "pw1")
	w := do(t, r, http.MethodPost, "/user", "", `{"name":"alice","password":"other"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", w.Code)
	}

	// The original row is unchanged: old credentials still work and
	// exactly one row exists
	login(t, r, "alice", "pw1")
	var count int64
	gdb.Model(&domain.User{}).Where("name = ?", "alice").Count(&count)
	if count != 1 {
		t.Errorf("user rows = %d, want 1", count)
	}
}

func TestRegister_BadInput(t *testing.T) {
	r, _ := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing password", `{"name":"alice"}`},
		{"missing name", `{"password":"pw1"}`},
		{"not json", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/user", "", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400", w.Code)
			}
		})
	}
}

func TestTokenAuth(t *testing.T) {
	r, gdb := newTestEnv(t)
	aliceID := register(t, r, "alice", "pw1")

	// Expired token: issued just past the TTL
	expired := domain.Token{
		Token:     uuid.NewString(),
		CreatedAt: time.Now().Add(-testTTL - time.Minute),
		UserID:    aliceID,
	}
	if err := gdb.Create(&expired).Error; err != nil {
		t.Fatalf("seed expired token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"malformed", "not-a-uuid"},
		{"unknown", uuid.NewString()},
		{"expired", expired.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), tt.token, `{"name":"x"}`)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status %d, want 401", w.Code)
			}
		})
	}

	// A freshly issued token passes
	token := login(t, r, "alice", "pw1")
	w := do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), token, `{"name":"alice2"}`)
	if w.Code != http.StatusOK {
		t.Errorf("fresh token: status %d body %s", w.Code, w.Body.String())
	}
}

func TestUpdateUser_SelfAndOther(t *testing.T) {
	r, _ := newTestEnv(t)
	register(t, r, "alice", "pw1")
	bobID := register(t, r, "bob", "pw2")
	aliceToken := login(t, r, "alice", "pw1")

	// Alice may not touch bob
	w := do(t, r, http.MethodPatch, "/user/"+fmtUint(bobID), aliceToken, `{"name":"hacked"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("patch other user: status %d, want 403", w.Code)
	}

	// Bob is unchanged
	w = do(t, r, http.MethodGet, "/user/"+fmtUint(bobID), "", "")
	if got := decode(t, w)["name"]; got != "bob" {
		t.Errorf("bob name = %v, want bob", got)
	}
}

func TestUpdateUser_PasswordRehash(t *testing.T) {
	r, gdb := newTestEnv(t)
	aliceID := register(t, r, "alice", "pw1")
	token := login(t, r, "alice", "pw1")

	w := do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), token, `{"password":"newpw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch password: status %d body %s", w.Code, w.Body.String())
	}

	// The stored value is a hash, not the raw password
	var u domain.User
	if err := gdb.First(&u, aliceID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.Password == "newpw" {
		t.Error("password stored in the clear")
	}

	// New password logs in, old one does not
	login(t, r, "alice", "newpw")
	old := do(t, r, http.MethodPost, "/login", "", `{"name":"alice","password":"pw1"}`)
	if old.Code != http.StatusUnauthorized {
		t.Errorf("old password: status %d, want 401", old.Code)
	}
}

func TestUpdateUser_RoleRules(t *testing.T) {
	r, gdb := newTestEnv(t)
	aliceID := register(t, r, "alice", "pw1")
	seedAdmin(t, gdb, "root", "rootpw")
	aliceToken := login(t, r, "alice", "pw1")
	adminToken := login(t, r, "root", "rootpw")

	// A non-admin cannot elevate their own role
	w := do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), aliceToken, `{"role":"admin"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("self elevation: status %d, want 422", w.Code)
	}
	var u domain.User
	gdb.First(&u, aliceID)
	if u.Role != domain.RoleUser {
		t.Fatalf("role changed to %s after rejected write", u.Role)
	}

	// Setting the current value is a no-op, not a violation
	w = do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), aliceToken, `{"role":"user"}`)
	if w.Code != http.StatusOK {
		t.Errorf("same-role write: status %d, want 200", w.Code)
	}

	// An unrecognized role is rejected for any actor
	w = do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), adminToken, `{"role":"moderator"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad role value: status %d, want 422", w.Code)
	}

	// An admin may set any recognized role
	w = do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), adminToken, `{"role":"admin"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("admin role change: status %d body %s", w.Code, w.Body.String())
	}
	gdb.First(&u, aliceID)
	if u.Role != domain.RoleAdmin {
		t.Errorf("role = %s, want admin", u.Role)
	}
}

func TestUpdateUser_NameConflict(t *testing.T) {
	r, _ := newTestEnv(t)
	aliceID := register(t, r, "alice", "pw1")
	register(t, r, "bob", "pw2")
	token := login(t, r, "alice", "pw1")

	w := do(t, r, http.MethodPatch, "/user/"+fmtUint(aliceID), token, `{"name":"bob"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("rename onto taken name: status %d, want 409", w.Code)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	r, gdb := newTestEnv(t)
	seedAdmin(t, gdb, "root", "rootpw")
	adminToken := login(t, r, "root", "rootpw")

	w := do(t, r, http.MethodPatch, "/user/99999", adminToken, `{"name":"ghost"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestDeleteUser_Cascade(t *testing.T) {
	r, gdb := newTestEnv(t)
	bobID := register(t, r, "bob", "pw2")
	bobToken := login(t, r, "bob", "pw2")

	// Bob owns an advertisement and a token
	w := do(t, r, http.MethodPost, "/advertisement", bobToken, `{"title":"Bike","description":"red bike","price":50}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create ad: status %d body %s", w.Code, w.Body.String())
	}

	// Bob deletes himself
	w = do(t, r, http.MethodDelete, "/user/"+fmtUint(bobID), bobToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete user: status %d body %s", w.Code, w.Body.String())
	}

	var tokens, ads, users int64
	gdb.Model(&domain.Token{}).Where("user_id = ?", bobID).Count(&tokens)
	gdb.Model(&domain.Advertisement{}).Where("author_id = ?", bobID).Count(&ads)
	gdb.Model(&domain.User{}).Where("id = ?", bobID).Count(&users)
	if tokens != 0 || ads != 0 || users != 0 {
		t.Errorf("after delete: tokens=%d ads=%d users=%d, want all 0", tokens, ads, users)
	}

	// The cascaded token no longer authenticates
	w = do(t, r, http.MethodPost, "/advertisement", bobToken, `{"title":"x","description":"y","price":1}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("deleted user's token: status %d, want 401", w.Code)
	}
}

func TestDeleteUser_Forbidden(t *testing.T) {
	r, _ := newTestEnv(t)
	register(t, r, "alice", "pw1")
	bobID := register(t, r, "bob", "pw2")
	aliceToken := login(t, r, "alice", "pw1")

	w := do(t, r, http.MethodDelete, "/user/"+fmtUint(bobID), aliceToken, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status %d, want 403", w.Code)
	}
}

func TestDeleteUser_AdminOnAnyone(t *testing.T) {
	r, gdb := newTestEnv(t)
	bobID := register(t, r, "bob", "pw2")
	seedAdmin(t, gdb, "root", "rootpw")
	adminToken := login(t, r, "root", "rootpw")

	w := do(t, r, http.MethodDelete, "/user/"+fmtUint(bobID), adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin delete: status %d body %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["deleted_user_id"].(float64); uint(got) != bobID {
		t.Errorf("deleted_user_id = %v, want %d", got, bobID)
	}

	w = do(t, r, http.MethodGet, "/user/"+fmtUint(bobID), "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted user: status %d, want 404", w.Code)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	r, _ := newTestEnv(t)

	w := do(t, r, http.MethodGet, "/user/424242", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}
