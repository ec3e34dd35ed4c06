package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v5"
)

const sessionName = "yt2mp3_session"

// SessionStore hands out a stable per-browser session ID via a signed
// cookie. The ID is the key the quota tracker counts against.
type SessionStore struct {
	store *sessions.CookieStore
}

func NewSessionStore(secret string) *SessionStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

// ID returns the caller's session ID, minting and setting one when the
// request carries no valid session cookie. Must be called before the
// response body is started so the Set-Cookie header can still go out.
func (s *SessionStore) ID(c *echo.Context) string {
	sess, _ := s.store.Get(c.Request(), sessionName)
	if id, ok := sess.Values["sid"].(string); ok && id != "" {
		return id
	}

	id := uuid.New().String()
	sess.Values["sid"] = id
	_ = sess.Save(c.Request(), c.Response())
	return id
}
