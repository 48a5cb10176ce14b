package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/access"
	"room-reservation/internal/audit"
	"room-reservation/internal/auth"
	"room-reservation/internal/booking"
	"room-reservation/internal/config"
	"room-reservation/internal/email"
	app "room-reservation/internal/jwt"
	"room-reservation/internal/nonce"
	"room-reservation/internal/session"
	"room-reservation/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeNotifier struct {
	notices []email.ReservationNotice
	err     error
}

func (n *fakeNotifier) Reservation(ctx context.Context, notice email.ReservationNotice) error {
	n.notices = append(n.notices, notice)
	return n.err
}

type testEnv struct {
	*Env
	store    *storage.SQLProvider
	clock    *fakeClock
	notifier *fakeNotifier
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := storage.NewSQLiteProvider(fmt.Sprintf("file:routes_%s?mode=memory&cache=shared&_foreign_keys=on", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(context.Background(), -1); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	nonces := nonce.NewMemoryStore()
	t.Cleanup(nonces.Close)
	sessions := session.NewMemoryStore()
	t.Cleanup(sessions.Close)

	rbac, err := access.NewRBACFromFile("")
	if err != nil {
		t.Fatalf("rbac: %v", err)
	}

	clock := &fakeClock{t: time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)}
	notifier := &fakeNotifier{}

	env := &Env{
		Config:   &config.Config{Timezone: "UTC"},
		Store:    store,
		Booking:  booking.NewService(store, clock.Now),
		Audit:    audit.NewRecorder(store),
		Auth:     auth.NewAuthenticator(store),
		Tokens:   app.NewIssuer("test-secret", nonces, time.Hour),
		Sessions: session.NewManager(sessions, "test-secret", time.Hour),
		RBAC:     rbac,
		Notifier: notifier,
	}

	router := gin.New()
	if err := Register(router, env); err != nil {
		t.Fatalf("register routes: %v", err)
	}

	return &testEnv{Env: env, store: store, clock: clock, notifier: notifier, router: router}
}

func (e *testEnv) room(t *testing.T, name string, capacity int) *storage.Room {
	t.Helper()
	room := &storage.Room{Name: name, MaxCapacity: capacity, Available: true}
	if err := e.store.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func (e *testEnv) staff(t *testing.T, username, password string, isStaff bool) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	user := &storage.StaffUser{Username: username, PasswordHash: hash, IsStaff: isStaff}
	if err := e.store.CreateStaffUser(context.Background(), user); err != nil {
		t.Fatalf("create staff user: %v", err)
	}
}

func (e *testEnv) accessLog(t *testing.T) []storage.AccessLogEntry {
	t.Helper()
	entries, err := e.store.ListAccessLog(context.Background(), storage.AccessLogFilter{})
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func (e *testEnv) reservations(t *testing.T) []storage.Reservation {
	t.Helper()
	list, err := e.store.ListReservations(context.Background(), storage.ReservationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	return list
}

// client keeps cookies between requests like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, handler: e.router, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	cl.handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) loginStudent(rut, career string) {
	cl.t.Helper()
	w := cl.post("/login-estudiante/", url.Values{"rut": {rut}, "carrera": {career}})
	if w.Code != http.StatusFound {
		cl.t.Fatalf("student login: %d %s", w.Code, w.Body.String())
	}
}

func (cl *client) loginAdmin(username, password string) {
	cl.t.Helper()
	w := cl.post("/login-admin/", url.Values{"username": {username}, "password": {password}})
	if w.Code != http.StatusFound {
		cl.t.Fatalf("admin login: %d %s", w.Code, w.Body.String())
	}
	if _, ok := cl.cookies[AUTH_COOKIE_NAME]; !ok {
		cl.t.Fatal("admin login did not set the auth cookie")
	}
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, path string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302; body: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); !strings.HasSuffix(loc, path) {
		t.Fatalf("Location = %q, want suffix %q", loc, path)
	}
}

func assertContains(t *testing.T, w *httptest.ResponseRecorder, wants ...string) {
	t.Helper()
	body := w.Body.String()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
