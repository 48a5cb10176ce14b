package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/argon2"

	"room-reservation/internal/utils"
)

const COOKIE_NAME = "sessionid"

const contextKey = "session"

// Keys of the student login
const (
	KeyStudent       = "student"
	KeyStudentRUT    = "student_rut"
	KeyStudentCareer = "student_career"
)

// Fixed salt; the key only has to differ from the JWT signing secret.
var keySalt = []byte("room-reservation/session-id")

// Session is the per-request view of stored values.
type Session struct {
	id     string
	Values Values
}

func (s *Session) ID() string {
	return s.id
}

// IsNew reports whether the session has never been saved.
func (s *Session) IsNew() bool {
	return s.id == ""
}

func (s *Session) Set(key string, value any) {
	s.Values[key] = value
}

func (s *Session) Delete(key string) {
	delete(s.Values, key)
}

func (s *Session) GetString(key string) string {
	v, _ := s.Values[key].(string)
	return v
}

func (s *Session) GetBool(key string) bool {
	v, _ := s.Values[key].(bool)
	return v
}

// Student returns the student login held by the session.
func (s *Session) Student() (ok bool, rut string, career string) {
	return s.GetBool(KeyStudent), s.GetString(KeyStudentRUT), s.GetString(KeyStudentCareer)
}

func (s *Session) SetStudent(rut, career string) {
	s.Set(KeyStudent, true)
	s.Set(KeyStudentRUT, rut)
	s.Set(KeyStudentCareer, career)
}

func newSession() *Session {
	return &Session{Values: Values{}}
}

type Manager struct {
	store  Store
	key    []byte
	ttl    time.Duration
	logger *slog.Logger
}

// DeriveKey stretches the application secret into the cookie signing key.
func DeriveKey(secret string) []byte {
	return argon2.IDKey([]byte(secret), keySalt, 1, 19*1024, 2, 32)
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		key:    DeriveKey(secret),
		ttl:    ttl,
		logger: slog.With("component", "session"),
	}
}

// Middleware loads the session named by the cookie into the request context.
// Missing, forged and expired cookies all yield a fresh empty session.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m.load(c))
		c.Next()
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	id, err := c.Cookie(COOKIE_NAME)
	if err != nil || id == "" {
		return newSession()
	}
	if !utils.VerifySignedID(id, m.key) {
		m.logger.Warn("Session cookie with invalid signature", "client_ip", c.ClientIP())
		return newSession()
	}

	values, err := m.store.Load(c.Request.Context(), id)
	if errors.Is(err, ErrSessionNotFound) {
		return newSession()
	} else if err != nil {
		m.logger.Error("Failed to load session", "error", err)
		return newSession()
	}
	return &Session{id: id, Values: values}
}

// Get returns the session of the request. Outside the middleware it is empty.
func Get(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	s := newSession()
	c.Set(contextKey, s)
	return s
}

// Save stores the session and refreshes its cookie. Call it before writing the response.
func (m *Manager) Save(c *gin.Context, s *Session) error {
	if s.IsNew() {
		id, err := utils.GenerateSignedID(m.key)
		if err != nil {
			return err
		}
		s.id = id
	}
	if err := m.store.Save(c.Request.Context(), s.id, s.Values, m.ttl); err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(COOKIE_NAME, s.id, int(m.ttl.Seconds()), "/", "", utils.IsSecure(c), true)
	return nil
}

// Renew drops the stored copy of s and gives it a new id on the next Save.
// Values are kept. Call it whenever the session gains a login.
func (m *Manager) Renew(c *gin.Context, s *Session) error {
	if s.IsNew() {
		return nil
	}
	err := m.store.Delete(c.Request.Context(), s.id)
	s.id = ""
	return err
}

// Destroy deletes the stored session and expires the cookie.
func (m *Manager) Destroy(c *gin.Context, s *Session) error {
	var err error
	if !s.IsNew() {
		err = m.store.Delete(c.Request.Context(), s.id)
	}
	s.id = ""
	s.Values = Values{}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(COOKIE_NAME, "", -1, "/", "", utils.IsSecure(c), true)
	return err
}
